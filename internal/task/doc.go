// Package task contains the background processing subsystem: the task
// abstraction, the buffered queue, the worker-pool runner, and the deck
// generation task that drives one job through the extract, summarize and
// render stages. Each task is the single writer of its job's record; the
// runner guarantees that a failing or panicking task never crashes the
// process and is never retried.
package task
