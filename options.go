package sentrypipe

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/sentrypipe/pkg/severity"
)

// Defaults for the attribute-key mapping and client behavior.
const (
	defaultMessageKey     = "msg"
	defaultStackKey       = "stack"
	defaultExtraKey       = "extra"
	defaultMaxValueLength = 250
	defaultMaxBreadcrumbs = 100
	defaultFlushTimeout   = 2 * time.Second
)

// config is immutable after New returns; the transport never mutates it once
// the first record is processed.
type config struct {
	dsn         string
	environment string
	serverName  string
	release     string
	dist        string
	debug       bool
	sampleRate  float64

	levelName       string
	threshold       severity.Level
	messageKey      string
	stackKey        string
	extraKeys       []string
	maxValueLength  int
	maxBreadcrumbs  int
	exceptionLevels map[severity.Level]bool
	decorateScope   ScopeDecorator

	policy          Policy
	requireDSN      bool
	flushTimeout    time.Duration
	onDispatchError func(*DispatchError)
	client          CaptureClient
	logger          *slog.Logger
}

// Option configures the transport.
type Option func(*config)

// WithDSN sets the Sentry DSN. If empty, the SENTRY_DSN environment variable
// is used; with neither present the transport still works but discards
// outbound events (see WithRequireDSN).
func WithDSN(dsn string) Option {
	return func(c *config) {
		c.dsn = dsn
	}
}

// WithEnvironment sets the deploy environment reported with every event.
func WithEnvironment(env string) Option {
	return func(c *config) {
		c.environment = env
	}
}

// WithServerName sets the server name reported with every event.
func WithServerName(name string) Option {
	return func(c *config) {
		c.serverName = name
	}
}

// WithRelease sets the release identifier reported with every event.
func WithRelease(release string) Option {
	return func(c *config) {
		c.release = release
	}
}

// WithDist sets the distribution identifier reported with every event.
func WithDist(dist string) Option {
	return func(c *config) {
		c.dist = dist
	}
}

// WithDebug enables debug diagnostics, both in the Sentry client and in the
// transport's own logger when none is supplied.
func WithDebug(debug bool) Option {
	return func(c *config) {
		c.debug = debug
	}
}

// WithSampleRate sets the event sample rate. Must be between 0.0 and 1.0;
// defaults to 1.0.
func WithSampleRate(rate float64) Option {
	return func(c *config) {
		c.sampleRate = rate
	}
}

// WithMaxBreadcrumbs caps the number of breadcrumbs attached per event.
// Defaults to 100.
func WithMaxBreadcrumbs(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxBreadcrumbs = n
		}
	}
}

// WithLevel sets the minimum severity name at or above which records are
// forwarded. The name is validated by New against the closed severity set;
// an unknown name makes New return a ConfigError naming the allowed values.
// Defaults to "debug" (forward everything).
func WithLevel(name string) Option {
	return func(c *config) {
		c.levelName = name
	}
}

// WithMessageAttributeKey sets the record key resolved as the message.
// Dotted paths walk nested objects. Defaults to "msg".
func WithMessageAttributeKey(key string) Option {
	return func(c *config) {
		if key != "" {
			c.messageKey = key
		}
	}
}

// WithStackAttributeKey sets the record key resolved as the stack trace.
// Dotted paths walk nested objects. Defaults to "stack".
func WithStackAttributeKey(key string) Option {
	return func(c *config) {
		if key != "" {
			c.stackKey = key
		}
	}
}

// WithExtraAttributeKeys sets the record keys copied into the event's extra
// data. Dotted paths walk nested objects; keys absent from a record are
// omitted. Defaults to ["extra"].
func WithExtraAttributeKeys(keys ...string) Option {
	return func(c *config) {
		if len(keys) > 0 {
			c.extraKeys = keys
		}
	}
}

// WithMaxValueLength caps extracted message, stack, and tag values at the
// given byte length. Defaults to 250.
func WithMaxValueLength(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxValueLength = n
		}
	}
}

// WithExceptionLevels sets the severities captured as exceptions rather than
// messages. The set is evaluated independently of the threshold. Defaults to
// error and fatal.
func WithExceptionLevels(levels ...severity.Level) Option {
	return func(c *config) {
		if len(levels) == 0 {
			return
		}
		c.exceptionLevels = make(map[severity.Level]bool, len(levels))
		for _, l := range levels {
			c.exceptionLevels[l] = true
		}
	}
}

// WithDecorateScope sets a hook that customizes the scope per record before
// system defaults are layered on.
func WithDecorateScope(hook ScopeDecorator) Option {
	return func(c *config) {
		c.decorateScope = hook
	}
}

// WithPolicy sets the malformed-line policy. Defaults to PolicyTolerant.
func WithPolicy(p Policy) Option {
	return func(c *config) {
		c.policy = p
	}
}

// WithRequireDSN upgrades a missing DSN from a startup warning to a hard
// configuration error.
func WithRequireDSN(require bool) Option {
	return func(c *config) {
		c.requireDSN = require
	}
}

// WithFlushTimeout bounds how long Close waits for the Sentry client to
// drain buffered events. Defaults to 2 seconds.
func WithFlushTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.flushTimeout = d
		}
	}
}

// WithOnDispatchError sets the callback invoked when a capture call fails.
// The stream continues regardless; the callback only makes the failure
// observable. Defaults to a warning through the transport's logger.
func WithOnDispatchError(fn func(*DispatchError)) Option {
	return func(c *config) {
		c.onDispatchError = fn
	}
}

// WithClient injects a capture client, replacing the transport-owned Sentry
// hub. Intended for tests and for hosts that manage their own client.
func WithClient(client CaptureClient) Option {
	return func(c *config) {
		if client != nil {
			c.client = client
		}
	}
}

// WithLogger sets the diagnostics logger. Defaults to a stderr JSON logger
// (debug-level when WithDebug is on); pass logger.NewNope() to silence
// diagnostics entirely.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
