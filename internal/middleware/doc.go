// Package middleware provides HTTP middleware for the dispatch
// service: request IDs, panic recovery, request logging, and rate
// limiting.
package middleware
