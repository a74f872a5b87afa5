package extractor

import (
	"errors"
	"fmt"
)

// Kind classifies why an extraction attempt failed.
type Kind string

const (
	// KindTransport covers API errors, timeouts, cancellation and an open
	// circuit breaker.
	KindTransport Kind = "transport"
	// KindMalformedJSON means the reply was not parseable JSON.
	KindMalformedJSON Kind = "malformed_json"
	// KindSchema means the reply parsed but did not match the document
	// schema.
	KindSchema Kind = "schema"
)

// Error is the tagged failure returned by TryExtract.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extraction %s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
