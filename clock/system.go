package clock

import (
	"time"

	"github.com/andres-erbsen/clock"
	"github.com/lonng/tickwheel/wheel/wheelapi"
)

var _ wheelapi.Clock = (*System)(nil)

// System 基于真实时间的时钟, 返回构造以来流逝的时间. 底层时钟可以替换为 clock.Mock.
type System struct {
	clk   clock.Clock
	start time.Time
}

// NewSystem 构造函数, clk 为空时使用系统时钟
func NewSystem(clk clock.Clock) *System {
	if clk == nil {
		clk = clock.New()
	}
	return &System{clk: clk, start: clk.Now()}
}

// Now 返回构造以来流逝的时间
func (c *System) Now() time.Duration {
	return c.clk.Now().Sub(c.start)
}

// Underlying 返回底层时钟
func (c *System) Underlying() clock.Clock {
	return c.clk
}
