package wheelapi

import "time"

// Clock 宿主提供的时钟, 返回自宿主纪元起单调不减的时间
type Clock interface {
	// Now 返回当前时间
	Now() time.Duration
}

// ClockFunc 函数形式的 Clock
type ClockFunc func() time.Duration

// Now 返回当前时间
func (f ClockFunc) Now() time.Duration {
	return f()
}
