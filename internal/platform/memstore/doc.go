// Package memstore provides the in-memory implementation of the store
// interfaces. State is volatile by design: the job table lives for the
// process lifetime only, which is the documented scope of this service.
package memstore
