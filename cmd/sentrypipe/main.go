package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/sentrypipe"
)

// options mirrors the transport configuration surface. Precedence, lowest to
// highest: built-in defaults, YAML config file, environment, flags.
type options struct {
	DSN            string   `short:"d" long:"dsn" env:"SENTRY_DSN" yaml:"dsn" description:"Sentry DSN"`
	Environment    string   `short:"e" long:"environment" env:"SENTRY_ENVIRONMENT" yaml:"environment" description:"deploy environment reported to Sentry"`
	ServerName     string   `short:"n" long:"server-name" yaml:"serverName" description:"server name reported to Sentry"`
	Release        string   `long:"release" yaml:"release" description:"release reported to Sentry"`
	Dist           string   `long:"dist" yaml:"dist" description:"distribution reported to Sentry"`
	Debug          bool     `long:"debug" yaml:"debug" description:"enable debug diagnostics on stderr"`
	SampleRate     *float64 `long:"sample-rate" yaml:"sampleRate" description:"event sample rate (0.0-1.0)"`
	MaxBreadcrumbs int      `long:"max-breadcrumbs" yaml:"maxBreadcrumbs" description:"maximum breadcrumbs attached per event"`
	MaxValueLength int      `long:"max-value-length" yaml:"maxValueLength" description:"maximum length for extracted values"`
	Level          string   `short:"l" long:"level" yaml:"level" description:"minimum severity to forward"`
	MessageKey     string   `long:"message-attribute-key" yaml:"messageAttributeKey" description:"record key resolved as the message"`
	StackKey       string   `long:"stack-attribute-key" yaml:"stackAttributeKey" description:"record key resolved as the stack trace"`
	ExtraKeys      []string `long:"extra-attribute-key" yaml:"extraAttributeKeys" description:"record keys copied into extra data (repeatable)"`
	Strict         bool     `long:"strict" yaml:"strict" description:"fail on the first malformed line instead of dropping it"`
	RequireDSN     bool     `long:"require-dsn" yaml:"requireDSN" description:"treat a missing DSN as a configuration error"`
	Config         string   `short:"c" long:"config" description:"YAML config file; flags override file values"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "sentrypipe:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			fmt.Println(ferr.Message)
			return nil
		}
		return err
	}

	transport, err := sentrypipe.New(transportOptions(opts)...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Echo stdin to stdout while feeding the pipeline, so the process stays a
	// transparent member of a shell pipe.
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return transport.Run(ctx, io.TeeReader(os.Stdin, os.Stdout))
	})
	g.Go(func() error {
		// Unblock the pending stdin read once the run loop or a signal ends
		// the stream.
		<-ctx.Done()
		_ = os.Stdin.SetReadDeadline(time.Now())
		return nil
	})

	err = g.Wait()
	if closeErr := transport.Close(); err == nil {
		err = closeErr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, os.ErrDeadlineExceeded) {
		return nil
	}
	return err
}

// parseOptions applies flags over an optional YAML config file. The file
// path itself can only come from the command line, so flags are parsed
// twice when a config file is involved.
func parseOptions(args []string) (options, error) {
	opts := options{}
	if _, err := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash).ParseArgs(args); err != nil {
		return options{}, err
	}
	if opts.Config == "" {
		return opts, nil
	}

	raw, err := os.ReadFile(opts.Config)
	if err != nil {
		return options{}, fmt.Errorf("read config file: %w", err)
	}
	merged := options{}
	if err := yaml.Unmarshal(raw, &merged); err != nil {
		return options{}, fmt.Errorf("parse config file %s: %w", opts.Config, err)
	}
	// Second pass: command-line values overwrite file values.
	if _, err := flags.NewParser(&merged, flags.HelpFlag|flags.PassDoubleDash).ParseArgs(args); err != nil {
		return options{}, err
	}
	return merged, nil
}

func transportOptions(opts options) []sentrypipe.Option {
	out := []sentrypipe.Option{
		sentrypipe.WithDSN(opts.DSN),
		sentrypipe.WithEnvironment(opts.Environment),
		sentrypipe.WithServerName(opts.ServerName),
		sentrypipe.WithRelease(opts.Release),
		sentrypipe.WithDist(opts.Dist),
		sentrypipe.WithDebug(opts.Debug),
		sentrypipe.WithRequireDSN(opts.RequireDSN),
		sentrypipe.WithMessageAttributeKey(opts.MessageKey),
		sentrypipe.WithStackAttributeKey(opts.StackKey),
		sentrypipe.WithExtraAttributeKeys(opts.ExtraKeys...),
		sentrypipe.WithMaxValueLength(opts.MaxValueLength),
		sentrypipe.WithMaxBreadcrumbs(opts.MaxBreadcrumbs),
	}
	if opts.SampleRate != nil {
		out = append(out, sentrypipe.WithSampleRate(*opts.SampleRate))
	}
	if opts.Level != "" {
		out = append(out, sentrypipe.WithLevel(opts.Level))
	}
	if opts.Strict {
		out = append(out, sentrypipe.WithPolicy(sentrypipe.PolicyStrict))
	}
	return out
}
