// Package operation defines the uniform calling convention that every
// routed operation is adapted to.
//
// A Handler is callable with a raw request and always produces a raw
// Response; it is the type-erasure boundary that lets heterogeneous,
// strongly-typed operations share one routing table. NewHandler adapts
// a typed operation function together with its input extractor and
// output converters into a Handler. Extraction failures become
// Rejection responses, operation errors are converted to responses the
// same way successful outputs are, and "no response" is never a legal
// outcome.
package operation
