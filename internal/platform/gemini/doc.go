// Package gemini implements the enrichment.Enricher interface using Google's
// Gemini API. It sends submitted content to the model with a structured
// response schema and maps the result to a summary and sentiment, retrying
// transient failures with exponential backoff.
package gemini
