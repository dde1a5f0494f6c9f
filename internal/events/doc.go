// Package events decouples submission from task scheduling. A service that
// accepts work emits a TaskRequestEvent; a registered handler turns the
// event into a concrete background task. Dispatch is synchronous so the
// emitter learns immediately whether scheduling happened.
package events
