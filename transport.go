package sentrypipe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/sentrypipe/pkg/logger"
	"github.com/dmitrymomot/sentrypipe/pkg/severity"
)

// Transport streams newline-delimited JSON log records into Sentry. Records
// below the severity threshold are filtered; the rest are captured as
// exceptions or messages depending on the configured exception levels.
//
// A Transport is immutable after New. Records are processed strictly
// serially within one Transport: record N's capture call is issued before
// record N+1 is looked at, which is what preserves input order and lets an
// upstream pipe throttle on Write.
type Transport struct {
	cfg        config
	client     CaptureClient
	logger     *slog.Logger
	streamID   string
	ownsClient bool

	// mu serializes Write/Close callers and guards the partial-line buffer.
	mu  sync.Mutex
	buf bytes.Buffer
}

// New creates a transport with the given options. Configuration problems are
// reported here, before any record is processed: an unknown level name or an
// out-of-range sample rate returns a ConfigError, and a missing DSN returns
// ErrMissingDSN only under WithRequireDSN — by default it is a startup
// warning and the transport runs with a no-op client.
func New(opts ...Option) (*Transport, error) {
	cfg := config{
		sampleRate:     1.0,
		threshold:      severity.Debug,
		messageKey:     defaultMessageKey,
		stackKey:       defaultStackKey,
		extraKeys:      []string{defaultExtraKey},
		maxValueLength: defaultMaxValueLength,
		maxBreadcrumbs: defaultMaxBreadcrumbs,
		flushTimeout:   defaultFlushTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.levelName != "" {
		lvl, err := severity.Parse(cfg.levelName)
		if err != nil {
			return nil, &ConfigError{Option: "level", Value: cfg.levelName, Allowed: severity.Names()}
		}
		cfg.threshold = lvl
	}
	if cfg.sampleRate < 0 || cfg.sampleRate > 1 {
		return nil, &ConfigError{
			Option: "sampleRate",
			Value:  strconv.FormatFloat(cfg.sampleRate, 'f', -1, 64),
		}
	}
	if cfg.exceptionLevels == nil {
		cfg.exceptionLevels = map[severity.Level]bool{
			severity.Error: true,
			severity.Fatal: true,
		}
	}
	if cfg.dsn == "" {
		cfg.dsn = os.Getenv("SENTRY_DSN")
	}

	// Diagnostics default to stderr so the missing-DSN warning and dispatch
	// failures stay observable; silencing them takes an explicit
	// WithLogger(logger.NewNope()).
	log := cfg.logger
	if log == nil {
		log = logger.New(cfg.debug)
	}

	if cfg.dsn == "" && cfg.client == nil {
		if cfg.requireDSN {
			return nil, ErrMissingDSN
		}
		log.Warn("no Sentry DSN configured, outbound events will be discarded")
	}

	t := &Transport{
		cfg:      cfg,
		client:   cfg.client,
		logger:   log,
		streamID: uuid.NewString(),
	}
	if t.client == nil {
		client, err := newSentryClient(&cfg)
		if err != nil {
			return nil, err
		}
		t.client = client
		t.ownsClient = true
	}
	if t.cfg.onDispatchError == nil {
		t.cfg.onDispatchError = func(derr *DispatchError) {
			t.logger.Warn("dispatch failed",
				slog.String("severity", string(derr.Severity)),
				slog.String("message", derr.Message),
				slog.String("error", derr.Err.Error()))
		}
	}
	return t, nil
}

// StreamID returns the identifier tagged onto every event this transport
// emits, for correlating events from one process run.
func (t *Transport) StreamID() string {
	return t.streamID
}

// Run consumes r until EOF, dispatching records in input order. Capture
// failures go through the dispatch-error callback and do not stop the
// stream; malformed lines stop it only under PolicyStrict. A read failure
// terminates the stream wrapping ErrStreamRead.
func (t *Transport) Run(ctx context.Context, r io.Reader) error {
	lines := newLineReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, n, err := lines.next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := t.consumeLine(line, n); err != nil {
			return err
		}
	}
}

// Write implements io.Writer so the transport can terminate a host logging
// pipeline, e.g. io.MultiWriter(os.Stdout, transport). Complete lines are
// dispatched synchronously before Write returns; a trailing partial line is
// buffered until the next Write or Close. Write is safe for concurrent use,
// though records are still dispatched one at a time.
func (t *Transport) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf.Write(p)
	for {
		raw := t.buf.Bytes()
		i := bytes.IndexByte(raw, '\n')
		if i < 0 {
			return len(p), nil
		}
		line := bytes.Clone(raw[:i])
		t.buf.Next(i + 1)
		if err := t.consumeLine(bytes.TrimSpace(line), 0); err != nil {
			return len(p), err
		}
	}
}

// Close flushes a buffered unterminated final fragment as one record and,
// when the transport owns its Sentry client, waits up to the flush timeout
// for buffered events to leave the process.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var err error
	if t.buf.Len() > 0 {
		err = t.consumeLine(bytes.TrimSpace(t.buf.Bytes()), 0)
		t.buf.Reset()
	}
	if t.ownsClient {
		t.client.Flush(t.cfg.flushTimeout)
	}
	return err
}

// consumeLine decodes one framed line and routes the record. Malformed lines
// are dropped under PolicyTolerant and fatal under PolicyStrict. A zero line
// number means the caller does not track positions (Write path).
func (t *Transport) consumeLine(line []byte, n int) error {
	if len(line) == 0 {
		return nil
	}
	rec, ok := decodeLine(line)
	if !ok {
		if t.cfg.policy == PolicyStrict {
			if n > 0 {
				return fmt.Errorf("%w: line %d", ErrMalformedInput, n)
			}
			return ErrMalformedInput
		}
		t.logger.Debug("dropping malformed line", slog.Int("line", n))
		return nil
	}
	if derr := t.dispatch(rec); derr != nil {
		t.cfg.onDispatchError(derr)
	}
	return nil
}

// dispatch routes one record: filtered below threshold, otherwise captured
// as an exception or a message. Threshold and exception classification are
// independent decisions. Returning nil means the record reached a terminal
// state — filtered, or the capture call was issued.
func (t *Transport) dispatch(rec Record) *DispatchError {
	level := severity.Normalize(rec.Fields[fieldLevel])
	if !level.Meets(t.cfg.threshold) {
		t.logger.Debug("record below threshold", slog.String("severity", string(level)))
		return nil
	}

	ex := extractFields(rec, &t.cfg)
	scope := buildScope(rec, ex, level, &t.cfg)
	scope.SetTag(tagStreamID, t.streamID)

	var err error
	if t.cfg.exceptionLevels[level] {
		err = t.client.CaptureException(&RecordError{Message: ex.message, Stack: ex.stack}, scope)
	} else {
		err = t.client.CaptureMessage(ex.message, scope)
	}
	if err != nil {
		return &DispatchError{Severity: level, Message: ex.message, Err: err}
	}
	return nil
}
