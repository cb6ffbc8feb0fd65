package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tatianab/text-adventure/internal/config"
	"github.com/tatianab/text-adventure/internal/gemini"
)

func TestNewCompleter(t *testing.T) {
	rest := newCompleter(config.ProviderConfig{Transport: config.TransportREST, Model: "m", Timeout: time.Second})
	assert.IsType(t, &gemini.Client{}, rest)

	sdk := newCompleter(config.ProviderConfig{Transport: config.TransportSDK, Model: "m", Timeout: time.Second})
	assert.Equal(t, gemini.NewSDKClient("m", time.Second), sdk)
}

func TestRunReturnsConfigError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provider:\n  transport: carrier-pigeon\n"), 0o644))
	t.Setenv("CONFIG_PATH", path)

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config")
}
