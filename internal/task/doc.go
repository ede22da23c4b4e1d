// Package task implements the background processing system: a durable task
// journal, a worker pool fed by an in-memory queue, and the content
// enrichment task that calls the LLM and records its result.
package task
