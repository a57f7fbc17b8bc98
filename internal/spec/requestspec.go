package spec

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// Match is the verdict of evaluating one RequestSpec against a
// request.
type Match int

const (
	// MatchNo means the request does not match the spec. A router
	// should keep evaluating other routes and fall back to 404 Not
	// Found.
	MatchNo Match = iota

	// MatchMethodNotAllowed means the path and query match the spec
	// but the wrong HTTP method was used. A router with no full match
	// should respond 405 Method Not Allowed.
	MatchMethodNotAllowed

	// MatchYes means the request fully matches the spec.
	MatchYes
)

// String returns the verdict name.
func (m Match) String() string {
	switch m {
	case MatchYes:
		return "yes"
	case MatchMethodNotAllowed:
		return "method_not_allowed"
	default:
		return "no"
	}
}

// RequestSpec combines an HTTP method with a URI spec and the path
// matcher compiled from it. It is immutable after construction and
// safe for concurrent use by any number of requests.
type RequestSpec struct {
	method string
	uri    UriSpec
	pathRE *regexp.Regexp
}

// NewRequestSpec builds a RequestSpec from a method and a URI spec,
// compiling the path matcher exactly once. The compiled matcher is
// reused unmodified for every subsequent request.
func NewRequestSpec(method string, uri UriSpec) *RequestSpec {
	return &RequestSpec{
		method: strings.ToUpper(method),
		uri:    uri,
		pathRE: compilePathRegex(uri.PathAndQuery.Path),
	}
}

// ParseRequestSpec parses a textual URI pattern and builds a
// RequestSpec from it. Pattern errors are build-time errors; they are
// never surfaced during request handling.
func ParseRequestSpec(method, pattern string) (*RequestSpec, error) {
	pq, err := ParsePathAndQuery(pattern)
	if err != nil {
		return nil, err
	}
	return NewRequestSpec(method, UriSpec{PathAndQuery: pq}), nil
}

// AlwaysGet returns a spec that fully matches any GET request,
// useful for fallback routes.
func AlwaysGet() *RequestSpec {
	return &RequestSpec{
		method: http.MethodGet,
		pathRE: regexp.MustCompile(".*"),
	}
}

// Method returns the declared HTTP method.
func (s *RequestSpec) Method() string {
	return s.method
}

// UriSpec returns the declared URI spec.
func (s *RequestSpec) UriSpec() UriSpec {
	return s.uri
}

// compilePathRegex compiles a path spec into a single anchored
// whole-path pattern: literals match their exact text, labels one or
// more non-slash characters, greedy labels any remaining characters.
// Segments are joined by a separator tolerant of duplicate slashes and
// the pattern is anchored at the end of the path. Compilation happens
// once per spec; matching is a single pass over the path string.
func compilePathRegex(path PathSpec) *regexp.Regexp {
	var b strings.Builder
	for _, seg := range path {
		b.WriteString("/+")
		switch {
		case seg.IsLabel():
			b.WriteString("[^/]+")
		case seg.IsGreedy():
			b.WriteString(".*")
		default:
			b.WriteString(regexp.QuoteMeta(seg.LiteralText()))
		}
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}

// Matches evaluates the spec against a request. The path is the
// primary discriminator: if it does not match, the method and query
// are never inspected. With a matching path (and matching query
// constraints, if any are declared), a method mismatch yields
// MatchMethodNotAllowed so a router can distinguish "no such resource"
// from "wrong verb".
func (s *RequestSpec) Matches(req *http.Request) Match {
	// Host prefix constraints are declared in the data model but not
	// evaluated; host-based routing is not implemented.

	if !s.pathRE.MatchString(req.URL.Path) {
		return MatchNo
	}

	constraints := s.uri.PathAndQuery.Query
	if len(constraints) == 0 {
		return s.matchMethod(req.Method)
	}

	if req.URL.RawQuery == "" {
		return MatchNo
	}
	values, err := url.ParseQuery(req.URL.RawQuery)
	if err != nil {
		// A query string this route cannot decode is a soft failure:
		// the route simply does not match.
		return MatchNo
	}

	for _, q := range constraints {
		if !matchQuerySegment(q, values) {
			return MatchNo
		}
	}

	return s.matchMethod(req.Method)
}

// matchMethod resolves the final verdict once path and query
// constraints hold.
func (s *RequestSpec) matchMethod(method string) Match {
	if method == s.method {
		return MatchYes
	}
	return MatchMethodNotAllowed
}

// matchQuerySegment evaluates one query constraint against the parsed
// request query.
func matchQuerySegment(q QuerySegment, values url.Values) bool {
	if !values.Has(q.Name()) {
		return false
	}
	if want, required := q.Value(); required {
		return values.Get(q.Name()) == want
	}
	return true
}
