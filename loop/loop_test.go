package loop

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/andres-erbsen/clock"
	"github.com/stretchr/testify/assert"
)

func newMockLoop() (*Loop, *clock.Mock) {
	mock := clock.NewMock()
	l := New("test-loop", mock, 10*time.Millisecond)
	return l, mock
}

// TestLoop 测试帧循环
func TestLoop(t *testing.T) {
	t.Run("New Loop", func(t *testing.T) {
		l, _ := newMockLoop()
		assert.Equal(t, "test-loop", l.Name())
		assert.Equal(t, "test-loop", l.Wheel().Name())
		assert.Equal(t, StateCreated, l.State())
		assert.Panics(t, func() { New("bad", nil, 0) })

		l.Start()
		defer l.Close()
		assert.Equal(t, StateRunning, l.State())
	})

	t.Run("Frames drive the wheel", func(t *testing.T) {
		l, mock := newMockLoop()
		l.Start()
		defer l.Close()

		var fired atomic.Int32
		l.Wheel().Once(50*time.Millisecond, func() { fired.Add(1) })
		assert.Eventually(t, func() bool {
			mock.Add(10 * time.Millisecond)
			return fired.Load() == 1
		}, 5*time.Second, time.Millisecond)
		assert.Greater(t, l.Frames(), int64(0))
		assert.GreaterOrEqual(t, l.Now(), 50*time.Millisecond)
		assert.LessOrEqual(t, l.Now(), mock.Now().Sub(time.Unix(0, 0)))
	})

	t.Run("Execute Task", func(t *testing.T) {
		l, _ := newMockLoop()
		l.Start()
		defer l.Close()

		var executed atomic.Bool
		assert.True(t, l.Execute(func() { executed.Store(true) }))
		assert.Eventually(t, executed.Load, time.Second, time.Millisecond)
	})

	t.Run("Execute Panic Task", func(t *testing.T) {
		l, _ := newMockLoop()
		l.Start()
		defer l.Close()

		l.Execute(nil)
		l.Execute(func() { panic("test panic") })

		var after atomic.Bool
		l.Execute(func() { after.Store(true) })
		assert.Eventually(t, after.Load, time.Second, time.Millisecond)
	})

	t.Run("Task schedules timer", func(t *testing.T) {
		l, mock := newMockLoop()
		l.Start()
		defer l.Close()

		var fired atomic.Int32
		l.Execute(func() {
			l.Wheel().Repeat(20*time.Millisecond, 3, func() { fired.Add(1) })
		})
		assert.Eventually(t, func() bool {
			mock.Add(10 * time.Millisecond)
			return fired.Load() == 3
		}, 5*time.Second, time.Millisecond)
		assert.Equal(t, 0, l.Wheel().Count())
	})

	t.Run("Close", func(t *testing.T) {
		l, _ := newMockLoop()
		l.Start()
		l.Close()
		l.Close()
		assert.Equal(t, StateClosed, l.State())
		assert.Eventually(t, func() bool {
			select {
			case <-l.Done():
				return true
			default:
				return false
			}
		}, time.Second, time.Millisecond)
		assert.False(t, l.Execute(func() {}))
	})

	t.Run("Execute after close never accepts", func(t *testing.T) {
		l, _ := newMockLoop()
		l.Start()
		l.Close()
		var ran atomic.Int32
		for i := 0; i < 100; i++ {
			assert.False(t, l.Execute(func() { ran.Add(1) }))
		}
		<-l.Done()
		assert.Equal(t, int32(0), ran.Load())
	})

	t.Run("Close before start", func(t *testing.T) {
		l, _ := newMockLoop()
		l.Close()
		l.Start()
		assert.Equal(t, StateClosed, l.State())
		<-l.Done()
	})
}
