package spec

type segmentKind int

const (
	segmentLiteral segmentKind = iota
	segmentLabel
	segmentGreedy
)

// PathSegment is one element of a path template: a literal, a label
// matching exactly one non-empty path component, or a greedy label
// matching one or more trailing components.
type PathSegment struct {
	kind    segmentKind
	literal string
}

// Literal returns a path segment that matches the exact text.
func Literal(text string) PathSegment {
	return PathSegment{kind: segmentLiteral, literal: text}
}

// Label returns a path segment that matches exactly one non-empty
// path component.
func Label() PathSegment {
	return PathSegment{kind: segmentLabel}
}

// Greedy returns a path segment that matches one or more trailing path
// components as a single unit, including embedded slashes.
func Greedy() PathSegment {
	return PathSegment{kind: segmentGreedy}
}

// IsLiteral reports whether the segment is a literal.
func (s PathSegment) IsLiteral() bool { return s.kind == segmentLiteral }

// IsLabel reports whether the segment is a label.
func (s PathSegment) IsLabel() bool { return s.kind == segmentLabel }

// IsGreedy reports whether the segment is a greedy label.
func (s PathSegment) IsGreedy() bool { return s.kind == segmentGreedy }

// LiteralText returns the literal text of a literal segment. It is
// empty for labels and greedy labels.
func (s PathSegment) LiteralText() string { return s.literal }

// QuerySegment is one query string constraint. A key constraint
// requires the key to be present with any value; a key-value
// constraint requires the key to be present with exactly that value.
type QuerySegment struct {
	key      string
	value    string
	hasValue bool
}

// Key returns a query constraint requiring the named key to be
// present, regardless of its value.
func Key(name string) QuerySegment {
	return QuerySegment{key: name}
}

// KeyValue returns a query constraint requiring the named key to be
// present with exactly the given value.
func KeyValue(name, value string) QuerySegment {
	return QuerySegment{key: name, value: value, hasValue: true}
}

// Name returns the constrained query key.
func (q QuerySegment) Name() string { return q.key }

// Value returns the required value and whether one is required.
func (q QuerySegment) Value() (value string, required bool) {
	return q.value, q.hasValue
}

// PathSpec is the ordered sequence of path segments of a pattern.
type PathSpec []PathSegment

// QuerySpec is the set of query constraints of a pattern. All
// constraints must hold for a request to match; order is not
// significant.
type QuerySpec []QuerySegment

// PathAndQuerySpec combines a path template with its query
// constraints.
type PathAndQuerySpec struct {
	Path  PathSpec
	Query QuerySpec
}

type hostSegmentKind int

const (
	hostSegmentLiteral hostSegmentKind = iota
	hostSegmentLabel
)

// HostPrefixSegment is one element of a declared host prefix
// constraint. Host prefixes are carried in the data model for
// completeness but are not evaluated during matching; host-based
// routing is not implemented.
type HostPrefixSegment struct {
	kind    hostSegmentKind
	literal string
}

// HostLiteral returns a host prefix segment matching the exact text.
func HostLiteral(text string) HostPrefixSegment {
	return HostPrefixSegment{kind: hostSegmentLiteral, literal: text}
}

// HostLabel returns a host prefix segment matching one host component.
func HostLabel() HostPrefixSegment {
	return HostPrefixSegment{kind: hostSegmentLabel}
}

// UriSpec combines an optional host prefix constraint with a path and
// query spec.
type UriSpec struct {
	HostPrefix   []HostPrefixSegment
	PathAndQuery PathAndQuerySpec
}
