// Package service implements the application's business logic, coordinating
// between the HTTP layer, the job store, upload storage, and the background
// task pipeline.
package service
