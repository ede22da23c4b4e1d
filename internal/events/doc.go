// Package events provides a lightweight in-process event system used to
// decouple request-handling services from the background task runner.
// Services emit task request events; a handler wired at startup turns them
// into persisted, queued tasks.
package events
