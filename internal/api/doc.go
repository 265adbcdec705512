// Package api defines the HTTP endpoints of the service: the request and
// response models, the handlers that implement each operation, and the
// route table binding handlers to their capability requirements. Handlers
// contain no transport plumbing; they receive an already matched and
// guarded request and return plain data or an error, and the pipeline
// renders the terminal response.
package api
