// Package api contains the HTTP handlers for the document-to-deck service:
// document submission, job status queries, and result retrieval. Handlers
// translate between HTTP and the service layer and never touch storage or
// the pipeline directly.
package api
