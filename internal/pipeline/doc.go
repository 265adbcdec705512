// Package pipeline implements the request-processing pipeline that sits
// between the HTTP server and the route handlers. It owns route
// registration and matching, the per-route guard chain (rate limiting,
// authentication, schema validation), the response envelope, and the
// mapping of error kinds onto HTTP status codes.
//
// Routes declare their requirements at registration time; the dispatcher
// compiles them into guard chains once, then executes the chain in
// declaration order for every matched request. The first guard failure
// short-circuits the request with a terminal error response.
package pipeline
