package spec

import (
	"net/url"
	"strings"
)

// ParsePathAndQuery parses a textual URI pattern into a
// PathAndQuerySpec. The grammar is
//
//	pattern = "/" (segment "/")* [segment] ["?" querystring]
//
// Each validation rule maps to one sentinel error; the returned error
// is always a *PatternError wrapping the violated rule.
func ParsePathAndQuery(pattern string) (PathAndQuerySpec, error) {
	fail := func(segment string, rule error) (PathAndQuerySpec, error) {
		return PathAndQuerySpec{}, &PatternError{Pattern: pattern, Segment: segment, Err: rule}
	}

	if !strings.HasPrefix(pattern, "/") {
		return fail("", ErrDoesNotStartWithForwardSlash)
	}
	if strings.HasSuffix(pattern, "?") {
		return fail("", ErrEndsWithQuestionMark)
	}
	if strings.Contains(pattern, "#") {
		return fail("", ErrContainsFragment)
	}
	if strings.Contains(pattern, ".") {
		return fail("", ErrContainsDotSegment)
	}

	path, query, hasQuery := strings.Cut(pattern, "?")

	var pathSpec PathSpec
	if path != "/" {
		// The leading slash is guaranteed above, so the first split
		// element is always empty and skipped.
		parts := strings.Split(path, "/")[1:]
		pathSpec = make(PathSpec, 0, len(parts))

		greedySeen := false
		for _, part := range parts {
			seg, rule := classifySegment(part)
			if rule != nil {
				return fail(part, rule)
			}
			if greedySeen && seg.IsGreedy() {
				return fail(part, ErrMultipleGreedyLabels)
			}
			if greedySeen && seg.IsLabel() {
				return fail(part, ErrSegmentAfterGreedyLabel)
			}
			if seg.IsGreedy() {
				greedySeen = true
			}
			pathSpec = append(pathSpec, seg)
		}
	}

	out := PathAndQuerySpec{Path: pathSpec}
	if hasQuery {
		out.Query = parseQuerySpec(query)
	}
	return out, nil
}

// classifySegment classifies one path segment. The exact form {name}
// is a label, {name+} a greedy label, anything else a literal. A
// segment that opens a brace without closing it (or vice versa) is
// invalid.
func classifySegment(segment string) (PathSegment, error) {
	if segment == "" {
		return PathSegment{}, ErrContainsEmptyPathSegment
	}

	opens := segment[0] == '{'
	closes := segment[len(segment)-1] == '}' && len(segment) > 1

	switch {
	case opens && closes:
		if len(segment) > 2 && segment[len(segment)-2] == '+' {
			return Greedy(), nil
		}
		return Label(), nil
	case opens:
		return PathSegment{}, ErrUnclosedLabel
	case segment[len(segment)-1] == '}':
		return PathSegment{}, ErrUnopenedLabel
	default:
		return Literal(segment), nil
	}
}

// parseQuerySpec parses the query string part of a pattern into
// constraints. A key without a value (or with an empty value) requires
// presence only; a key with a value requires exact equality. Keys and
// values are form-decoded so constraints compare against the decoded
// request query, not its wire encoding.
func parseQuerySpec(query string) QuerySpec {
	parts := strings.Split(query, "&")
	out := make(QuerySpec, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		if value == "" {
			out = append(out, Key(unescapeQueryComponent(key)))
		} else {
			out = append(out, KeyValue(unescapeQueryComponent(key), unescapeQueryComponent(value)))
		}
	}
	return out
}

// unescapeQueryComponent form-decodes a query key or value, falling
// back to the raw text when the escape sequence is malformed.
func unescapeQueryComponent(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}
