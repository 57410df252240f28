package embedding

import "fmt"

// ResourceError reports an embedding or corpus file that could not be opened
// or read. It wraps the underlying I/O error.
type ResourceError struct {
	Path string
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// ParseError reports a vector component that is not a float literal.
// Column is the 1-based token index on the line, the word being token 1.
type ParseError struct {
	Line   int
	Word   string
	Column int
	Token  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: word %q: token %d %q is not a number", e.Line, e.Word, e.Column, e.Token)
}

func (e *ParseError) Unwrap() error { return e.Err }

// DimensionError reports a vector whose length differs from the first one.
// Only raised when strict dimension checking is on.
type DimensionError struct {
	Line int
	Word string
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("line %d: word %q has %d components, expected %d", e.Line, e.Word, e.Got, e.Want)
}
