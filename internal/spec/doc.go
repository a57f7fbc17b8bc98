// Package spec implements the URI pattern language used to declare
// operation routes.
//
// A pattern combines a path template with optional query string
// constraints:
//
//	/resource/{id}/files/{path+}?archived=true
//
// Path segments are literals, labels ({name}, exactly one non-empty
// segment) or greedy labels ({name+}, one or more trailing segments).
// Query constraints require a key to be present (`key`) or to carry an
// exact value (`key=value`).
//
// Patterns are parsed once at build time into a PathAndQuerySpec and
// compiled into a RequestSpec, which evaluates incoming requests to a
// tri-state Match verdict. RequestSpec values are immutable after
// construction and safe for concurrent use.
package spec
