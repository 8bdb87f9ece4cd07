package lifecycle

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lonng/tickwheel/clock"
	"github.com/lonng/tickwheel/wheel"
	"github.com/lonng/tickwheel/wheel/wheelapi"
	"github.com/stretchr/testify/assert"
)

// TestHook 测试一次性事件
func TestHook(t *testing.T) {
	t.Run("Fire in subscription order", func(t *testing.T) {
		h := &Hook{}
		var got []int
		h.Subscribe(func() { got = append(got, 1) })
		h.Subscribe(func() { got = append(got, 2) })
		h.Subscribe(func() { got = append(got, 3) })
		assert.Equal(t, 3, h.Len())

		assert.True(t, h.Fire())
		assert.Equal(t, []int{1, 2, 3}, got)
		assert.Equal(t, 0, h.Len())
		assert.False(t, h.Fire(), "只触发一次")
		assert.True(t, h.Fired())
	})

	t.Run("Unsubscribe", func(t *testing.T) {
		h := &Hook{}
		var n atomic.Int32
		token := h.Subscribe(func() { n.Add(1) })
		h.Subscribe(func() { n.Add(10) })
		h.Unsubscribe(token)
		h.Unsubscribe(12345)
		h.Fire()
		assert.Equal(t, int32(10), n.Load())
	})

	t.Run("Unsubscribe another handler while firing", func(t *testing.T) {
		h := &Hook{}
		var n atomic.Int32
		var second wheelapi.Token
		h.Subscribe(func() { h.Unsubscribe(second) })
		second = h.Subscribe(func() { n.Add(1) })
		h.Fire()
		assert.Equal(t, int32(0), n.Load())
	})

	t.Run("Subscribe after fire", func(t *testing.T) {
		h := &Hook{}
		h.Fire()
		done := make(chan struct{})
		assert.Equal(t, wheelapi.Token(0), h.Subscribe(func() { close(done) }))
		assert.Eventually(t, func() bool {
			select {
			case <-done:
				return true
			default:
				return false
			}
		}, time.Second, time.Millisecond)
	})

	t.Run("Nil handler", func(t *testing.T) {
		h := &Hook{}
		assert.Equal(t, wheelapi.Token(0), h.Subscribe(nil))
		assert.Equal(t, 0, h.Len())
	})
}

// TestOwner 测试归属对象与时间轮配合
func TestOwner(t *testing.T) {
	t.Run("Identity", func(t *testing.T) {
		a := NewOwner("quests", "1.2.0")
		b := NewOwner("quests", "1.2.0")
		assert.Equal(t, "quests v1.2.0", a.String())
		assert.Equal(t, "quests", a.Name())
		assert.Equal(t, "1.2.0", a.Version())
		assert.NotEqual(t, a.ID(), b.ID())
	})

	t.Run("Remove cancels timers", func(t *testing.T) {
		c := clock.NewManual(0)
		w := wheel.New(c, wheel.WithTick(10*time.Millisecond))
		o := NewOwner("arena", "0.1")
		var n atomic.Int32
		h1 := w.Repeat(10*time.Millisecond, 0, func() { n.Add(1) }, o)
		h2 := w.Once(time.Second, func() { n.Add(100) }, o)
		assert.Equal(t, 2, o.OnRemoved().Len())

		c.Set(20 * time.Millisecond)
		w.Update(20 * time.Millisecond)
		assert.Equal(t, int32(1), n.Load())

		assert.True(t, o.Remove())
		assert.True(t, o.Removed())
		assert.True(t, h1.Destroyed())
		assert.True(t, h2.Destroyed())

		c.Set(2 * time.Second)
		w.Update(2 * time.Second)
		assert.Equal(t, int32(1), n.Load())
		assert.Equal(t, 0, w.Count())
	})

	t.Run("Timer added after removal is destroyed", func(t *testing.T) {
		c := clock.NewManual(0)
		w := wheel.New(c)
		o := NewOwner("late", "1")
		o.Remove()
		h := w.Once(time.Second, func() {}, o)
		assert.Eventually(t, h.Destroyed, time.Second, time.Millisecond)
	})

	t.Run("Destroy unsubscribes", func(t *testing.T) {
		w := wheel.New(clock.NewManual(0))
		o := NewOwner("shop", "2")
		h := w.Once(time.Second, func() {}, o)
		h.Destroy()
		assert.Equal(t, 0, o.OnRemoved().Len())
	})

	t.Run("Tracking", func(t *testing.T) {
		c := clock.NewManual(0)
		w := wheel.New(c)
		o := NewOwner("stats", "1")
		w.Repeat(10*time.Millisecond, 3, func() { time.Sleep(time.Millisecond) }, o)
		for i := 1; i <= 10; i++ {
			c.Set(time.Duration(i) * 10 * time.Millisecond)
			w.Update(10 * time.Millisecond)
		}
		assert.Equal(t, int64(3), o.Calls())
		assert.GreaterOrEqual(t, o.Elapsed(), 3*time.Millisecond)
		assert.Equal(t, "timer", o.LastKind())
	})

	t.Run("Shared by two wheels", func(t *testing.T) {
		o := NewOwner("shared", "1")
		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c := clock.NewManual(0)
				w := wheel.New(c)
				w.Repeat(10*time.Millisecond, 50, func() {}, o)
				for j := 1; j <= 60; j++ {
					c.Set(time.Duration(j) * 10 * time.Millisecond)
					w.Update(10 * time.Millisecond)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int64(100), o.Calls())
		assert.GreaterOrEqual(t, o.Elapsed(), time.Duration(0))
	})
}
