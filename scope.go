package sentrypipe

import (
	"github.com/getsentry/sentry-go"

	"github.com/dmitrymomot/sentrypipe/pkg/severity"
)

// Scope is the per-record bundle of contextual metadata attached to one
// outbound capture call. A Scope is owned by exactly one in-flight record,
// never shared across records, and discarded once the capture call has been
// issued.
type Scope struct {
	level       sentry.Level
	tags        map[string]string
	extra       map[string]any
	breadcrumbs []sentry.Breadcrumb
}

func newScope() *Scope {
	return &Scope{
		tags:  make(map[string]string),
		extra: make(map[string]any),
	}
}

// SetLevel sets the severity level reported with the record.
func (s *Scope) SetLevel(level sentry.Level) {
	s.level = level
}

// SetTag sets a single tag key/value pair.
func (s *Scope) SetTag(key, value string) {
	s.tags[key] = value
}

// SetExtra sets a single extra-data key/value pair.
func (s *Scope) SetExtra(key string, value any) {
	s.extra[key] = value
}

// AddBreadcrumb appends a breadcrumb; insertion order is preserved.
func (s *Scope) AddBreadcrumb(crumb sentry.Breadcrumb) {
	s.breadcrumbs = append(s.breadcrumbs, crumb)
}

// Level returns the scope's severity level.
func (s *Scope) Level() sentry.Level { return s.level }

// Tags returns the scope's tag set. The returned map is the scope's own;
// treat it as read-only.
func (s *Scope) Tags() map[string]string { return s.tags }

// Extra returns the scope's extra-data set. Treat it as read-only.
func (s *Scope) Extra() map[string]any { return s.extra }

// Breadcrumbs returns the scope's breadcrumbs in insertion order.
func (s *Scope) Breadcrumbs() []sentry.Breadcrumb { return s.breadcrumbs }

// ScopeDecorator customizes the scope for one record. It runs before system
// defaults are layered on, so later defaults win only for the keys they
// write; everything else the hook sets survives.
type ScopeDecorator func(rec Record, scope *Scope)

// buildScope assembles the reporting scope for one record: decoration hook
// first, then level, tags, extra data, and breadcrumbs in source order.
func buildScope(rec Record, ex extracted, level severity.Level, cfg *config) *Scope {
	scope := newScope()
	if cfg.decorateScope != nil {
		cfg.decorateScope(rec, scope)
	}
	scope.SetLevel(toSentryLevel(level))
	for k, v := range ex.tags {
		scope.SetTag(k, v)
	}
	for k, v := range ex.extra {
		scope.SetExtra(k, v)
	}
	for _, crumb := range ex.breadcrumbs {
		scope.AddBreadcrumb(crumb)
	}
	return scope
}

// toSentryLevel folds the internal seven-level ordering onto the five levels
// the Sentry protocol accepts.
func toSentryLevel(l severity.Level) sentry.Level {
	switch l {
	case severity.Debug, severity.Log:
		return sentry.LevelDebug
	case severity.Info:
		return sentry.LevelInfo
	case severity.Warning:
		return sentry.LevelWarning
	case severity.Error:
		return sentry.LevelError
	case severity.Fatal, severity.Critical:
		return sentry.LevelFatal
	}
	return sentry.LevelInfo
}

// applyTo copies the scope onto a sentry-go scope for one capture call.
func (s *Scope) applyTo(sc *sentry.Scope, maxBreadcrumbs int) {
	sc.SetLevel(s.level)
	if len(s.tags) > 0 {
		sc.SetTags(s.tags)
	}
	if len(s.extra) > 0 {
		sc.SetExtras(s.extra)
	}
	for _, crumb := range s.breadcrumbs {
		sc.AddBreadcrumb(&crumb, maxBreadcrumbs)
	}
}
