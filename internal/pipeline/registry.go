package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Registration errors.
var (
	// ErrDuplicateRoute is returned when a route's method and pattern
	// shape collide with an already registered route. Patterns that
	// differ only in parameter names count as duplicates.
	ErrDuplicateRoute = errors.New("duplicate route")

	// ErrInvalidPattern is returned when a pattern cannot be parsed.
	ErrInvalidPattern = errors.New("invalid route pattern")
)

// Handler processes a matched request and returns the payload for the
// success envelope, or an error for the error handler. Returning a Result
// lets the handler pick a non-200 success status.
type Handler func(ctx context.Context, req *Request) (any, error)

// Result wraps a handler payload with an explicit success status code.
type Result struct {
	Status int
	Data   any
}

// segment is one path element of a parsed pattern. Exactly one of the two
// fields is set.
type segment struct {
	literal string
	param   string
}

// Route is a registered method, pattern, requirement list, and handler.
type Route struct {
	Method       string
	Pattern      string
	Requirements []Requirement
	Handler      Handler

	segments []segment
}

// Registry holds the route table. Registration happens at startup and must
// finish before the dispatcher is built; after that the registry is
// read-only and safe for concurrent matching.
type Registry struct {
	routes map[string][]*Route // keyed by method
}

// NewRegistry creates an empty route registry.
func NewRegistry() *Registry {
	return &Registry{routes: make(map[string][]*Route)}
}

// Handle registers a handler for the method and pattern with the given
// requirements. Patterns are absolute paths whose segments are either
// literals or {name} parameters, e.g. "/users/{id}".
//
// Returns ErrInvalidPattern for malformed patterns and ErrDuplicateRoute
// when the method and pattern shape are already registered.
func (reg *Registry) Handle(method, pattern string, handler Handler, requirements ...Requirement) error {
	if handler == nil {
		return fmt.Errorf("%w: %s %s: nil handler", ErrInvalidPattern, method, pattern)
	}

	method = strings.ToUpper(method)
	segments, err := parsePattern(pattern)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrInvalidPattern, method, pattern, err)
	}

	for _, existing := range reg.routes[method] {
		if sameShape(existing.segments, segments) {
			return fmt.Errorf("%w: %s %s conflicts with %s", ErrDuplicateRoute, method, pattern, existing.Pattern)
		}
	}

	reg.routes[method] = append(reg.routes[method], &Route{
		Method:       method,
		Pattern:      pattern,
		Requirements: requirements,
		Handler:      handler,
		segments:     segments,
	})
	return nil
}

// Match finds the route for a method and path and extracts its named
// parameters. When several routes match, the one with more literal
// segments wins, so "/users/search" is chosen over "/users/{id}" for a
// request to /users/search. Equal counts are decided by the leftmost
// position where the candidates diverge, literal before parameter.
func (reg *Registry) Match(method, path string) (*Route, map[string]string, bool) {
	parts := splitPath(path)

	var (
		best       *Route
		bestParams map[string]string
	)
	for _, route := range reg.routes[strings.ToUpper(method)] {
		params, ok := matchSegments(route.segments, parts)
		if !ok {
			continue
		}
		if best == nil || moreSpecific(route.segments, best.segments) {
			best = route
			bestParams = params
		}
	}

	if best == nil {
		return nil, nil, false
	}
	return best, bestParams, true
}

// Routes returns all registered routes. The dispatcher uses it to compile
// guard chains.
func (reg *Registry) Routes() []*Route {
	var all []*Route
	for _, rs := range reg.routes {
		all = append(all, rs...)
	}
	return all
}

func parsePattern(pattern string) ([]segment, error) {
	if pattern == "" || pattern[0] != '/' {
		return nil, errors.New("pattern must start with '/'")
	}

	parts := splitPath(pattern)
	segments := make([]segment, 0, len(parts))
	seen := make(map[string]bool)

	for _, part := range parts {
		if part == "" {
			return nil, errors.New("pattern contains an empty segment")
		}
		if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
			name := part[1 : len(part)-1]
			if name == "" {
				return nil, errors.New("parameter segment has no name")
			}
			if seen[name] {
				return nil, fmt.Errorf("parameter %q appears twice", name)
			}
			seen[name] = true
			segments = append(segments, segment{param: name})
			continue
		}
		if strings.ContainsAny(part, "{}") {
			return nil, fmt.Errorf("segment %q mixes literal and parameter syntax", part)
		}
		segments = append(segments, segment{literal: part})
	}

	return segments, nil
}

// splitPath breaks a path into segments, ignoring a trailing slash so that
// "/users" and "/users/" refer to the same route.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// sameShape reports whether two patterns collide: equal length and, at
// every position, both literal with the same value or both parameters.
func sameShape(a, b []segment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		aParam := a[i].param != ""
		bParam := b[i].param != ""
		if aParam != bParam {
			return false
		}
		if !aParam && a[i].literal != b[i].literal {
			return false
		}
	}
	return true
}

// matchSegments matches concrete path parts against a parsed pattern and
// captures parameter values.
func matchSegments(segments []segment, parts []string) (map[string]string, bool) {
	if len(segments) != len(parts) {
		return nil, false
	}

	var params map[string]string
	for i, seg := range segments {
		if seg.param != "" {
			if params == nil {
				params = make(map[string]string, len(segments))
			}
			params[seg.param] = parts[i]
			continue
		}
		if seg.literal != parts[i] {
			return nil, false
		}
	}
	return params, true
}

// moreSpecific reports whether a beats b: more literal segments rank
// higher, and equal counts fall back to the leftmost position where one
// side keeps a literal and the other a parameter. Both patterns are
// assumed to match the same path, so their shapes cannot be identical.
func moreSpecific(a, b []segment) bool {
	if na, nb := literalCount(a), literalCount(b); na != nb {
		return na > nb
	}
	for i := range a {
		aLiteral := a[i].param == ""
		bLiteral := b[i].param == ""
		if aLiteral != bLiteral {
			return aLiteral
		}
	}
	return false
}

func literalCount(segments []segment) int {
	n := 0
	for _, seg := range segments {
		if seg.param == "" {
			n++
		}
	}
	return n
}
