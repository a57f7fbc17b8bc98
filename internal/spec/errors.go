package spec

import (
	"errors"
	"fmt"
)

// Sentinel errors for the pattern validation rules. Callers check them
// with errors.Is; ParsePathAndQuery wraps them in a *PatternError that
// names the offending pattern.
var (
	ErrDoesNotStartWithForwardSlash = errors.New(`uri pattern must start with "/"`)
	ErrEndsWithQuestionMark         = errors.New(`uri pattern must not end with "?"`)
	ErrContainsFragment             = errors.New(`uri pattern must not contain a "#" fragment`)
	ErrContainsDotSegment           = errors.New("uri pattern must not contain dot segments")
	ErrContainsEmptyPathSegment     = errors.New("uri pattern must not contain empty path segments (a trailing forward slash creates an empty path segment)")
	ErrUnclosedLabel                = errors.New(`label is missing its closing "}"`)
	ErrUnopenedLabel                = errors.New(`label is missing its opening "{"`)
	ErrMultipleGreedyLabels         = errors.New("uri pattern must contain at most one greedy label")
	ErrSegmentAfterGreedyLabel      = errors.New("only literal segments may follow a greedy label")
)

// PatternError reports that a URI pattern failed validation. It names
// the pattern and, for segment-level rules, the offending segment.
type PatternError struct {
	Pattern string
	Segment string
	Err     error
}

// Error implements the error interface.
func (e *PatternError) Error() string {
	if e.Segment != "" {
		return fmt.Sprintf("invalid uri pattern %q: segment %q: %v", e.Pattern, e.Segment, e.Err)
	}
	return fmt.Sprintf("invalid uri pattern %q: %v", e.Pattern, e.Err)
}

// Unwrap returns the violated rule.
func (e *PatternError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target.
func (e *PatternError) Is(target error) bool {
	_, ok := target.(*PatternError)
	return ok || errors.Is(e.Err, target)
}
