package sentrypipe

import (
	"context"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// eventRecorder stands in for the SDK's HTTP transport and keeps every event
// the client would have sent.
type eventRecorder struct {
	events []*sentry.Event
}

func (r *eventRecorder) Configure(sentry.ClientOptions)        {}
func (r *eventRecorder) SendEvent(event *sentry.Event)         { r.events = append(r.events, event) }
func (r *eventRecorder) Flush(time.Duration) bool              { return true }
func (r *eventRecorder) FlushWithContext(context.Context) bool { return true }
func (r *eventRecorder) Close()                                {}

func newRecordedClient(t *testing.T) (*sentryClient, *eventRecorder) {
	t.Helper()
	rec := &eventRecorder{}
	client, err := sentry.NewClient(sentry.ClientOptions{Transport: rec})
	require.NoError(t, err)
	return &sentryClient{
		hub:            sentry.NewHub(client, sentry.NewScope()),
		maxBreadcrumbs: defaultMaxBreadcrumbs,
	}, rec
}

func TestSentryClient_ExceptionEventCarriesStack(t *testing.T) {
	t.Parallel()

	client, rec := newRecordedClient(t)

	scope := newScope()
	scope.SetLevel(sentry.LevelError)
	scope.SetTag("region", "eu")
	scope.SetExtra("attempt", 3)

	err := client.CaptureException(&RecordError{
		Message: "db timeout",
		Stack:   "at db.go:17\nat main.go:4",
	}, scope)
	require.NoError(t, err)

	require.Len(t, rec.events, 1)
	event := rec.events[0]

	require.NotEmpty(t, event.Exception)
	assert.Equal(t, "db timeout", event.Exception[0].Value)
	assert.Equal(t, "at db.go:17\nat main.go:4", event.Extra["stack"])
	assert.Equal(t, 3, event.Extra["attempt"])
	assert.Equal(t, "eu", event.Tags["region"])
	assert.Equal(t, sentry.LevelError, event.Level)
}

func TestSentryClient_NoStackExtraWithoutStack(t *testing.T) {
	t.Parallel()

	client, rec := newRecordedClient(t)

	err := client.CaptureException(&RecordError{Message: "boom"}, newScope())
	require.NoError(t, err)

	require.Len(t, rec.events, 1)
	_, present := rec.events[0].Extra["stack"]
	assert.False(t, present)
}

func TestSentryClient_MessageEvent(t *testing.T) {
	t.Parallel()

	client, rec := newRecordedClient(t)

	scope := newScope()
	scope.SetLevel(sentry.LevelInfo)
	scope.AddBreadcrumb(sentry.Breadcrumb{Category: "http", Message: "GET /a"})

	require.NoError(t, client.CaptureMessage("all good", scope))

	require.Len(t, rec.events, 1)
	event := rec.events[0]
	assert.Equal(t, "all good", event.Message)
	assert.Equal(t, sentry.LevelInfo, event.Level)
	require.Len(t, event.Breadcrumbs, 1)
	assert.Equal(t, "GET /a", event.Breadcrumbs[0].Message)
}
