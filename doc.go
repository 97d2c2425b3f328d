// Package sentrypipe forwards newline-delimited JSON log records to Sentry.
//
// It is the bridge between a JSON logging pipeline (pino-style records with
// numeric or string levels) and Sentry: each line is decoded, its severity
// normalized and checked against a threshold, its scope enriched with tags,
// extra data, and breadcrumbs from the record, and the result captured as
// either an exception or a message.
//
// # Quick Start
//
// Create a transport with options and feed it a stream:
//
//	transport, err := sentrypipe.New(
//	    sentrypipe.WithDSN(os.Getenv("SENTRY_DSN")),
//	    sentrypipe.WithEnvironment("production"),
//	    sentrypipe.WithLevel("warning"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer transport.Close()
//
//	if err := transport.Run(ctx, os.Stdin); err != nil {
//	    log.Fatal(err)
//	}
//
// # Embedding in a logging pipeline
//
// Transport implements io.Writer, so it drops into any pipeline that writes
// newline-delimited JSON:
//
//	out := io.MultiWriter(os.Stdout, transport)
//	logger := slog.New(slog.NewJSONHandler(out, nil))
//
// Partial lines are buffered across Write calls; Close flushes a trailing
// unterminated fragment as a final record.
//
// # Routing
//
// Severities map onto a fixed ordered set (debug < log < info < warning <
// error < fatal < critical). Records below the configured threshold produce
// no outbound call. Records at a configured exception level (error and fatal
// by default) are captured as exceptions carrying the record's message and
// stack text; everything else above the threshold is captured as a message.
//
// # Malformed input
//
// Under the default tolerant policy a line that is not a valid JSON object
// is dropped and the stream continues; PolicyStrict fails the stream on the
// first such line instead. Capture failures never stop the stream: they are
// surfaced through WithOnDispatchError and the next line proceeds.
//
// # Scope decoration
//
// WithDecorateScope registers a hook that runs before system defaults are
// layered onto the per-record scope:
//
//	sentrypipe.WithDecorateScope(func(rec sentrypipe.Record, scope *sentrypipe.Scope) {
//	    scope.SetTag("team", rec.Get("ctx.team").String())
//	})
package sentrypipe
