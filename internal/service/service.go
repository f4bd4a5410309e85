// Package service holds the business operations on customers. It sits
// between the HTTP handlers and the repositories and reports failures as
// errs.HTTPError values.
package service
