package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		var out bytes.Buffer
		app := newApp()
		app.Writer = &out
		require.NoError(t, app.Run([]string{"tickhost", "check-config"}))
		assert.Contains(t, out.String(), "slots=512")
		assert.Contains(t, out.String(), "tick=10ms")
	})

	t.Run("File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tickhost.yaml")
		require.NoError(t, os.WriteFile(path, []byte("wheel:\n  slots: 128\nloop:\n  frame: 16ms\n"), 0o644))

		var out bytes.Buffer
		app := newApp()
		app.Writer = &out
		require.NoError(t, app.Run([]string{"tickhost", "check-config", "--config", path}))
		assert.Contains(t, out.String(), "slots=128")
		assert.Contains(t, out.String(), "frame=16ms")
	})

	t.Run("Invalid", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tickhost.yaml")
		require.NoError(t, os.WriteFile(path, []byte("wheel:\n  slots: 100\n"), 0o644))

		app := newApp()
		app.Writer = &bytes.Buffer{}
		err := app.Run([]string{"tickhost", "check-config", "-c", path})
		assert.ErrorContains(t, err, "power of two")
	})
}

func TestRun(t *testing.T) {
	app := newApp()
	app.Writer = &bytes.Buffer{}
	assert.NoError(t, app.Run([]string{"tickhost", "run", "--duration", "200ms", "--listen", "127.0.0.1:0"}))
}
