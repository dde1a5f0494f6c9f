// Package domain holds the core entities of the document-to-deck pipeline:
// the Job record, its lifecycle states and processing stages, and the
// transition rules that keep terminal jobs immutable. It depends on no
// infrastructure or delivery mechanism.
package domain
