package config

import (
	"bytes"
	"io"
	"os"
	"strings"
	"time"

	"github.com/lonng/tickwheel/internal/env"
	"github.com/lonng/tickwheel/internal/log"
	"github.com/lonng/tickwheel/wheel"
	"github.com/pingcap/errors"
	yaml "go.yaml.in/yaml/v3"
	"golang.org/x/time/rate"
)

// Config 宿主配置文件
type Config struct {
	Wheel   WheelConfig   `yaml:"wheel"`
	Log     LogConfig     `yaml:"log"`
	Loop    LoopConfig    `yaml:"loop"`
	Monitor MonitorConfig `yaml:"monitor"`
	Faults  FaultsConfig  `yaml:"faults"`

	// 以下字段由 Validate 解析
	tick     time.Duration
	frame    time.Duration
	interval time.Duration
}

// WheelConfig 时间轮配置
type WheelConfig struct {
	Name      string `yaml:"name"`
	Slots     int    `yaml:"slots"`
	Tick      string `yaml:"tick"`
	MaxPooled int    `yaml:"max_pooled"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console 或 json
	Debug  bool   `yaml:"debug"`
}

// LoopConfig 帧循环配置
type LoopConfig struct {
	Frame string `yaml:"frame"`
}

// MonitorConfig 监控服务配置, Listen 为空时不启动
type MonitorConfig struct {
	Listen   string `yaml:"listen"`
	Interval string `yaml:"interval"`
}

// FaultsConfig 回调异常日志限流, PerSecond 为 0 时不限流
type FaultsConfig struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Wheel: WheelConfig{
			Name:      "default",
			Slots:     env.SlotCount,
			Tick:      env.TickDuration.String(),
			MaxPooled: env.MaxPooled,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Loop: LoopConfig{
			Frame: env.TickDuration.String(),
		},
		Monitor: MonitorConfig{
			Interval: "1s",
		},
		Faults: FaultsConfig{
			PerSecond: env.FaultLogRate,
			Burst:     env.FaultBurst,
		},
	}
}

// Load 读取并校验配置文件, 文件中缺省的字段使用默认值
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Annotatef(err, "read config %v", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Annotatef(err, "config %v", path)
	}
	return cfg, nil
}

// Parse 解析并校验配置内容, 不认识的字段视为错误
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Annotate(err, "yaml unmarshal")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置并解析时长字段
func (c *Config) Validate() error {
	var err error
	if c.Wheel.Slots <= 0 || c.Wheel.Slots&(c.Wheel.Slots-1) != 0 {
		return errors.Errorf("wheel.slots: %v is not a power of two", c.Wheel.Slots)
	}
	if c.Wheel.MaxPooled < 0 {
		return errors.Errorf("wheel.max_pooled: must be >= 0")
	}
	if c.tick, err = ParseDurationOrDefault("wheel.tick", c.Wheel.Tick, env.TickDuration); err != nil {
		return err
	}
	if c.frame, err = ParseDurationOrDefault("loop.frame", c.Loop.Frame, c.tick); err != nil {
		return err
	}
	if c.interval, err = ParseDurationOrDefault("monitor.interval", c.Monitor.Interval, time.Second); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "console", "json":
	default:
		return errors.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	if c.Faults.PerSecond < 0 {
		return errors.Errorf("faults.per_second: must be >= 0")
	}
	if c.Faults.PerSecond > 0 && c.Faults.Burst <= 0 {
		return errors.Errorf("faults.burst: must be > 0 when faults.per_second is set")
	}
	return nil
}

// Tick 每个槽位代表的时长
func (c *Config) Tick() time.Duration {
	return c.tick
}

// Frame 帧间隔
func (c *Config) Frame() time.Duration {
	return c.frame
}

// Interval 监控推送间隔
func (c *Config) Interval() time.Duration {
	return c.interval
}

// WheelOptions 转换为时间轮构造选项
func (c *Config) WheelOptions() []wheel.Option {
	var limiter *rate.Limiter
	if c.Faults.PerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(c.Faults.PerSecond), c.Faults.Burst)
	}
	return []wheel.Option{
		wheel.WithName(c.Wheel.Name),
		wheel.WithSlots(c.Wheel.Slots),
		wheel.WithTick(c.tick),
		wheel.WithMaxPooled(c.Wheel.MaxPooled),
		wheel.WithFaultLimiter(limiter),
	}
}

// Apply 应用日志和调试开关
func (c *Config) Apply() {
	env.Debug = c.Log.Debug
	level := log.ParseLevel(c.Log.Level, log.LevelInfo)
	if c.Log.Debug && level > log.LevelDebug {
		level = log.LevelDebug
	}
	log.SetLevel(level)
	if strings.EqualFold(c.Log.Format, "json") {
		log.SetLogger(log.NewJSONLogger(os.Stdout, level))
	} else {
		log.SetLogger(log.NewZeroLogger(os.Stdout, level))
	}
}
