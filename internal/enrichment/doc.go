// Package enrichment provides interfaces and implementations for interacting
// with external AI/LLM services for content analysis. It abstracts the details
// of LLM API integration (Gemini), allowing the application to derive a
// summary and sentiment for user-submitted content without coupling to
// specific external services.
package enrichment
