// Package errs defines the error types returned to API clients.
//
// Every error that leaves the HTTP layer is shaped as an HTTPError so
// clients always receive the same JSON structure, optionally carrying
// field-level validation errors.
package errs
