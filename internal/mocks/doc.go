// Package mocks provides hand-written test doubles for the service's
// collaborator interfaces. Each mock carries optional function fields to
// override individual methods and a map-backed default implementation
// that behaves like a tiny in-memory version of the real thing.
package mocks
