package clock

import (
	"sync/atomic"
	"time"

	"github.com/lonng/tickwheel/wheel/wheelapi"
)

var _ wheelapi.Clock = (*Manual)(nil)

// Manual 由宿主推进的时钟, 用于帧循环和测试
type Manual struct {
	now atomic.Int64
}

// NewManual 构造函数, start 为初始时间
func NewManual(start time.Duration) *Manual {
	c := &Manual{}
	c.now.Store(int64(start))
	return c
}

// Now 返回当前时间
func (c *Manual) Now() time.Duration {
	return time.Duration(c.now.Load())
}

// Set 设置当前时间, 时间不能倒退, 早于当前时间时忽略
func (c *Manual) Set(now time.Duration) {
	for {
		old := c.now.Load()
		if int64(now) <= old {
			return
		}
		if c.now.CompareAndSwap(old, int64(now)) {
			return
		}
	}
}

// Advance 时间前进 delta, 返回新的时间; 负数视为 0
func (c *Manual) Advance(delta time.Duration) time.Duration {
	if delta < 0 {
		delta = 0
	}
	return time.Duration(c.now.Add(int64(delta)))
}
