package sse

import "fmt"

// ParseError reports a malformed JSON payload on a data line. It is
// fatal to the current stream; the decoder yields no further events.
type ParseError struct {
	Cause error
	Line  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("sse: failed to parse event: %v (line %q)", e.Cause, e.Line)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// TransportError reports a connection fault that occurred mid-stream.
// It is fatal to the current stream; the caller may retry the whole
// request.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("sse: connection error during streaming: %v", e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}
