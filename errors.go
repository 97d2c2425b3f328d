package sentrypipe

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrymomot/sentrypipe/pkg/severity"
)

var (
	// ErrMalformedInput is returned when an input line is not a valid JSON
	// object. Under PolicyTolerant the line is dropped and the error never
	// surfaces; under PolicyStrict it terminates the stream.
	ErrMalformedInput = errors.New("sentrypipe: malformed input line")

	// ErrStreamRead is returned when the underlying input source fails.
	// It is fatal to the stream.
	ErrStreamRead = errors.New("sentrypipe: input stream read failed")

	// ErrMissingDSN is returned by New when WithRequireDSN(true) is set and
	// no DSN is configured or present in the environment.
	ErrMissingDSN = errors.New("sentrypipe: missing Sentry DSN")
)

// ConfigError reports an invalid configuration option value. It is returned
// by New before any record is processed.
type ConfigError struct {
	Option  string
	Value   string
	Allowed []string
}

func (e *ConfigError) Error() string {
	if len(e.Allowed) > 0 {
		return fmt.Sprintf("sentrypipe: invalid %s %q, allowed: %s",
			e.Option, e.Value, strings.Join(e.Allowed, ", "))
	}
	return fmt.Sprintf("sentrypipe: invalid %s %q", e.Option, e.Value)
}

// DispatchError reports a failed capture call for a single record. The
// default policy is skip-and-continue: the error is handed to the configured
// dispatch-error callback and the stream keeps going.
type DispatchError struct {
	Severity severity.Level
	Message  string
	Err      error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("sentrypipe: dispatch %s record: %v", e.Severity, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// RecordError is the error value synthesized for records routed as
// exceptions. It carries the source record's message and stack trace
// verbatim; it does not capture a Go stack because the failure happened in
// the process that emitted the log line, not here.
type RecordError struct {
	Message string
	Stack   string
}

func (e *RecordError) Error() string {
	return e.Message
}
