// Package store declares the persistence contracts the request pipeline
// depends on, together with the error sentinels every backend maps its
// failures onto. Backends live under internal/platform; handlers only ever
// see these interfaces.
package store
