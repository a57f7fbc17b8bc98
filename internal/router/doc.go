// Package router dispatches requests to statically declared
// operations.
//
// A Route binds one compiled request spec to one type-erased operation
// handler. A Router holds a fixed, ordered collection of routes
// assembled once through a Builder and read-only thereafter; it is
// safe to share across any number of concurrent requests without
// locking.
//
// Dispatch evaluates specs in registration order and hands the request
// to the first full match, so registration order is the precedence
// rule when several specs could match. A request whose path and query
// match some route but whose method matches none yields 405; a request
// matching no path at all yields 404.
package router
