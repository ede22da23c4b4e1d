// Package domain defines the core business entities of the Insight API:
// users and the content records they submit for LLM enrichment.
package domain
