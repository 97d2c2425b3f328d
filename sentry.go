package sentrypipe

import (
	"errors"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// CaptureClient is the narrow surface of the error-tracking collaborator the
// transport depends on. Batching, retry, and delivery confirmation are the
// client's concern; the transport's contract ends once a capture call has
// been issued. Tests substitute a recording fake via WithClient.
type CaptureClient interface {
	CaptureException(err error, scope *Scope) error
	CaptureMessage(message string, scope *Scope) error
	Flush(timeout time.Duration) bool
}

// sentryClient adapts a dedicated sentry-go hub to the CaptureClient
// surface. Using an own hub instead of the ambient global keeps the
// transport independent from any sentry state the host process carries.
type sentryClient struct {
	hub            *sentry.Hub
	maxBreadcrumbs int
}

func newSentryClient(cfg *config) (*sentryClient, error) {
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:            cfg.dsn,
		Environment:    cfg.environment,
		ServerName:     cfg.serverName,
		Release:        cfg.release,
		Dist:           cfg.dist,
		Debug:          cfg.debug,
		SampleRate:     cfg.sampleRate,
		MaxBreadcrumbs: cfg.maxBreadcrumbs,
	})
	if err != nil {
		return nil, fmt.Errorf("init sentry client: %w", err)
	}
	return &sentryClient{
		hub:            sentry.NewHub(client, sentry.NewScope()),
		maxBreadcrumbs: cfg.maxBreadcrumbs,
	}, nil
}

func (c *sentryClient) CaptureException(err error, scope *Scope) error {
	c.hub.WithScope(func(sc *sentry.Scope) {
		scope.applyTo(sc, c.maxBreadcrumbs)
		// The source stack is opaque text from another process, not a Go
		// stacktrace the SDK can parse, so it travels as extra data.
		var recErr *RecordError
		if errors.As(err, &recErr) && recErr.Stack != "" {
			sc.SetExtra("stack", recErr.Stack)
		}
		c.hub.CaptureException(err)
	})
	return nil
}

func (c *sentryClient) CaptureMessage(message string, scope *Scope) error {
	c.hub.WithScope(func(sc *sentry.Scope) {
		scope.applyTo(sc, c.maxBreadcrumbs)
		c.hub.CaptureMessage(message)
	})
	return nil
}

func (c *sentryClient) Flush(timeout time.Duration) bool {
	return c.hub.Flush(timeout)
}
