// Package domain holds the entities the API serves and the rules they
// enforce on themselves, independent of storage and transport.
package domain
