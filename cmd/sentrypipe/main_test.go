package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptions_FlagsOnly(t *testing.T) {
	opts, err := parseOptions([]string{
		"-d", "https://key@sentry.example/1",
		"-e", "staging",
		"-l", "warning",
		"--extra-attribute-key", "extra",
		"--extra-attribute-key", "ctx.user",
		"--strict",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://key@sentry.example/1", opts.DSN)
	assert.Equal(t, "staging", opts.Environment)
	assert.Equal(t, "warning", opts.Level)
	assert.Equal(t, []string{"extra", "ctx.user"}, opts.ExtraKeys)
	assert.True(t, opts.Strict)
}

func TestParseOptions_FlagsOverrideConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sentrypipe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"dsn: https://file@sentry.example/2\n"+
			"environment: production\n"+
			"level: error\n"+
			"maxValueLength: 100\n"), 0o600))

	opts, err := parseOptions([]string{"-c", path, "-l", "fatal"})
	require.NoError(t, err)

	// File values apply where no flag was given; flags win otherwise.
	assert.Equal(t, "https://file@sentry.example/2", opts.DSN)
	assert.Equal(t, "production", opts.Environment)
	assert.Equal(t, 100, opts.MaxValueLength)
	assert.Equal(t, "fatal", opts.Level)
}

func TestParseOptions_ExplicitZeroSampleRate(t *testing.T) {
	opts, err := parseOptions([]string{"--sample-rate", "0"})
	require.NoError(t, err)
	require.NotNil(t, opts.SampleRate)
	assert.Equal(t, 0.0, *opts.SampleRate)

	// Unset stays nil so the transport default (1.0) applies.
	opts, err = parseOptions(nil)
	require.NoError(t, err)
	assert.Nil(t, opts.SampleRate)
}

func TestParseOptions_MissingConfigFile(t *testing.T) {
	_, err := parseOptions([]string{"-c", filepath.Join(t.TempDir(), "nope.yaml")})
	require.Error(t, err)
}
