package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lonng/tickwheel/clock"
	"github.com/lonng/tickwheel/internal/env"
	"github.com/lonng/tickwheel/wheel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseDuration 测试时长解析
func TestParseDuration(t *testing.T) {
	d, err := ParseDuration("a", " 15ms ")
	assert.NoError(t, err)
	assert.Equal(t, 15*time.Millisecond, d)

	d, err = ParseDuration("a", "")
	assert.NoError(t, err)
	assert.Equal(t, time.Duration(0), d)

	_, err = ParseDuration("a.b", "soon")
	assert.ErrorContains(t, err, "a.b: invalid duration")

	_, err = ParseDuration("a", "-1s")
	assert.ErrorContains(t, err, "must be >= 0")

	d, err = ParseDurationOrDefault("a", "0s", time.Second)
	assert.NoError(t, err)
	assert.Equal(t, time.Second, d)
}

// TestParse 测试配置解析
func TestParse(t *testing.T) {
	t.Run("Empty uses defaults", func(t *testing.T) {
		cfg, err := Parse(nil)
		require.NoError(t, err)
		assert.Equal(t, env.SlotCount, cfg.Wheel.Slots)
		assert.Equal(t, env.TickDuration, cfg.Tick())
		assert.Equal(t, env.TickDuration, cfg.Frame())
		assert.Equal(t, time.Second, cfg.Interval())
		assert.Empty(t, cfg.Monitor.Listen)
	})

	t.Run("Full", func(t *testing.T) {
		cfg, err := Parse([]byte(`
wheel:
  name: game
  slots: 256
  tick: 20ms
  max_pooled: 100
log:
  level: error
  format: json
loop:
  frame: 33ms
monitor:
  listen: 127.0.0.1:9090
  interval: 250ms
faults:
  per_second: 2
  burst: 4
`))
		require.NoError(t, err)
		assert.Equal(t, "game", cfg.Wheel.Name)
		assert.Equal(t, 256, cfg.Wheel.Slots)
		assert.Equal(t, 20*time.Millisecond, cfg.Tick())
		assert.Equal(t, 33*time.Millisecond, cfg.Frame())
		assert.Equal(t, 250*time.Millisecond, cfg.Interval())
		assert.Equal(t, "127.0.0.1:9090", cfg.Monitor.Listen)
		assert.Equal(t, 4, cfg.Faults.Burst)

		w := wheel.New(clock.NewManual(0), cfg.WheelOptions()...)
		assert.Equal(t, "game", w.Name())
		assert.Equal(t, 256, w.Slots())
		assert.Equal(t, 20*time.Millisecond, w.Tick())
		assert.Equal(t, 100, w.Stats().MaxPooled)
	})

	t.Run("Frame defaults to tick", func(t *testing.T) {
		cfg, err := Parse([]byte("wheel:\n  tick: 50ms\nloop:\n  frame: \"\"\n"))
		require.NoError(t, err)
		assert.Equal(t, 50*time.Millisecond, cfg.Frame())
	})

	t.Run("Invalid", func(t *testing.T) {
		cases := map[string]string{
			"wheel.slots":       "wheel:\n  slots: 100\n",
			"wheel.max_pooled":  "wheel:\n  max_pooled: -1\n",
			"wheel.tick":        "wheel:\n  tick: fast\n",
			"loop.frame":        "loop:\n  frame: -5ms\n",
			"log.format":        "log:\n  format: xml\n",
			"faults.per_second": "faults:\n  per_second: -1\n",
			"faults.burst":      "faults:\n  per_second: 1\n  burst: 0\n",
			"field bogus":       "wheel:\n  bogus: 1\n",
			"yaml unmarshal":    "wheel: [",
		}
		for want, text := range cases {
			_, err := Parse([]byte(text))
			assert.ErrorContains(t, err, want, text)
		}
	})
}

// TestLoad 测试读取文件
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tickhost.yaml")
	require.NoError(t, os.WriteFile(path, []byte("wheel:\n  slots: 64\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Wheel.Slots)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "read config")
}

// TestApply 测试日志和调试开关
func TestApply(t *testing.T) {
	debug := env.Debug
	defer func() { env.Debug = debug }()

	cfg, err := Parse([]byte("log:\n  debug: true\n"))
	require.NoError(t, err)
	cfg.Apply()
	assert.True(t, env.Debug)
}
