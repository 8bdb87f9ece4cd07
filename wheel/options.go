package wheel

import (
	"time"

	"github.com/lonng/tickwheel/internal/env"
	"golang.org/x/time/rate"
)

// Option 时间轮构造选项, 构造后不可再修改
type Option func(*options)

type options struct {
	name      string
	slots     int
	tick      time.Duration
	maxPooled int
	limiter   *rate.Limiter
}

func defaultOptions() options {
	return options{
		name:      "default",
		slots:     env.SlotCount,
		tick:      env.TickDuration,
		maxPooled: env.MaxPooled,
		limiter:   rate.NewLimiter(rate.Limit(env.FaultLogRate), env.FaultBurst),
	}
}

// WithName 设置名称, 用于日志和统计
func WithName(name string) Option {
	return func(opt *options) {
		opt.name = name
	}
}

// WithSlots 设置槽位数量, 必须是 2 的幂
func WithSlots(n int) Option {
	return func(opt *options) {
		opt.slots = n
	}
}

// WithTick 设置每个槽位代表的时长
func WithTick(tick time.Duration) Option {
	return func(opt *options) {
		opt.tick = tick
	}
}

// WithMaxPooled 设置实例池容量, 0 表示不复用
func WithMaxPooled(n int) Option {
	return func(opt *options) {
		opt.maxPooled = n
	}
}

// WithFaultLimiter 设置回调异常日志的限流器, nil 表示不限流
func WithFaultLimiter(limiter *rate.Limiter) Option {
	return func(opt *options) {
		opt.limiter = limiter
	}
}
