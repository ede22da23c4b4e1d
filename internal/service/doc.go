// Package service provides application-level services for managing users and
// submitted content. Services coordinate the domain model, the persistence
// layer, and the background enrichment pipeline, and define the sentinel
// errors the API layer maps to HTTP status codes.
package service
