// Package store defines the persistence interfaces for job records. The
// application core programs against these interfaces so the backing store
// (currently an in-memory table, see internal/platform/memstore) can change
// without touching business logic.
package store
