package loop

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func restore() {
	Replace(New("default", nil, 10*time.Millisecond))
}

// TestDefault 默认帧循环使用系统时钟驱动
func TestDefault(t *testing.T) {
	Start()
	defer restore()

	assert.NotNil(t, Default())
	assert.Equal(t, StateRunning, Default().State())

	var fired atomic.Int32
	Once(20*time.Millisecond, func() { fired.Add(1) })
	Repeat(10*time.Millisecond, 3, func() { fired.Add(10) })
	NextTick(func() { fired.Add(100) })
	assert.Eventually(t, func() bool { return fired.Load() == 131 }, 5*time.Second, 5*time.Millisecond)

	var executed atomic.Bool
	assert.True(t, Execute(func() { executed.Store(true) }))
	assert.Eventually(t, executed.Load, time.Second, time.Millisecond)
}

// TestReplace 替换后原帧循环被关闭
func TestReplace(t *testing.T) {
	defer restore()

	orig := Default()
	l, _ := newMockLoop()
	Replace(l)
	assert.Same(t, l, Default())
	assert.Equal(t, StateRunning, l.State())
	assert.Equal(t, StateClosed, orig.State())

	Replace(nil)
	assert.Same(t, l, Default(), "传 nil 时不应替换")
}

// TestClose_Idempotent 重复关闭不会 panic
func TestClose_Idempotent(t *testing.T) {
	defer restore()

	assert.NotPanics(t, func() {
		Close()
		Close()
	})
	assert.False(t, Execute(func() {}))
}
