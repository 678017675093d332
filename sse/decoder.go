package sse

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// maxLineSize bounds a single SSE line. Tool outputs can carry whole
// table previews, so the default bufio limit of 64KiB is too small.
const maxLineSize = 4 * 1024 * 1024

// doneMarker is the OpenAI-style stream terminator. It is a no-op for
// this protocol: termination is signaled by the transport closing.
const doneMarker = "[DONE]"

// Decoder reads Server-Sent Events from a line-oriented byte stream and
// yields normalized Events one at a time. It is a strictly sequential
// pull: each Next call suspends on the next line from the transport.
//
// Lines that are empty or start with ":" are comments and are skipped.
// "event:", "id:" and "retry:" fields are recognized and intentionally
// ignored; dispatch is always driven by the JSON payload's "type" field.
type Decoder struct {
	scanner *bufio.Scanner
	err     error
}

// NewDecoder creates a Decoder over r. The Decoder does not close r;
// the caller owns the underlying transport resource.
func NewDecoder(r io.Reader) *Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Decoder{scanner: scanner}
}

// Next returns the next normalized event. It returns io.EOF when the
// underlying stream closes between records (normal termination), a
// *ParseError for a malformed data payload, and a *TransportError for a
// mid-stream connection fault. Any non-EOF error is sticky: the stream
// is dead and subsequent calls return the same error.
func (d *Decoder) Next() (Event, error) {
	if d.err != nil {
		return nil, d.err
	}

	for d.scanner.Scan() {
		line := strings.TrimSuffix(d.scanner.Text(), "\r")

		// Skip blank lines (record separators) and comments.
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}

		if payload, ok := strings.CutPrefix(line, "data:"); ok {
			payload = strings.TrimPrefix(payload, " ")
			trimmed := strings.TrimSpace(payload)
			if trimmed == "" || trimmed == doneMarker {
				continue
			}

			var data map[string]any
			if err := json.Unmarshal([]byte(payload), &data); err != nil {
				d.err = &ParseError{Line: line, Cause: err}
				return nil, d.err
			}
			return ParseEvent(data), nil
		}

		// Other SSE fields carry no payload we dispatch on.
		// "id:" could drive resumption one day; "retry:" is a hint for
		// auto-reconnecting clients, which this decoder is not.
	}

	if err := d.scanner.Err(); err != nil {
		d.err = &TransportError{Cause: err}
		return nil, d.err
	}

	d.err = io.EOF
	return nil, d.err
}

// Events drains the decoder, returning every remaining event. A clean
// end of stream is not an error; parse and transport faults are.
func (d *Decoder) Events() ([]Event, error) {
	var events []Event
	for {
		evt, err := d.Next()
		if err == io.EOF {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		events = append(events, evt)
	}
}
