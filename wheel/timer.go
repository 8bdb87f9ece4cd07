package wheel

import (
	"time"

	"github.com/lonng/tickwheel/wheel/wheelapi"
)

// Timer 定时器句柄. 实例被释放到实例池后句柄失效, 之后的操作都是空操作.
type Timer struct {
	w    *Wheel
	inst *instance
	gen  uint32
}

// lock 加锁并返回实例; 句柄无效时返回 nil 且不持有锁
func (t Timer) lock() *instance {
	if t.w == nil || t.inst == nil {
		return nil
	}
	t.w.mu.Lock()
	if t.inst.gen != t.gen {
		t.w.mu.Unlock()
		return nil
	}
	return t.inst
}

// Valid 句柄是否仍然指向自己的实例
func (t Timer) Valid() bool {
	inst := t.lock()
	if inst == nil {
		return false
	}
	t.w.mu.Unlock()
	return true
}

// ID 返回定时器 ID, 句柄无效时返回 0
func (t Timer) ID() int64 {
	inst := t.lock()
	if inst == nil {
		return 0
	}
	defer t.w.mu.Unlock()
	return inst.id
}

// Destroyed 是否已销毁, 无效句柄视为已销毁
func (t Timer) Destroyed() bool {
	inst := t.lock()
	if inst == nil {
		return true
	}
	defer t.w.mu.Unlock()
	return inst.destroyed
}

// Repetitions 返回剩余次数, 非正数表示永久运行
func (t Timer) Repetitions() int {
	inst := t.lock()
	if inst == nil {
		return 0
	}
	defer t.w.mu.Unlock()
	return inst.repetitions
}

// Delay 返回触发间隔
func (t Timer) Delay() time.Duration {
	inst := t.lock()
	if inst == nil {
		return 0
	}
	defer t.w.mu.Unlock()
	return inst.delay
}

// ExpiresAt 返回下一次到期的绝对时间
func (t Timer) ExpiresAt() time.Duration {
	inst := t.lock()
	if inst == nil {
		return 0
	}
	defer t.w.mu.Unlock()
	return inst.expiresAt
}

// Owner 返回归属对象
func (t Timer) Owner() wheelapi.Owner {
	inst := t.lock()
	if inst == nil {
		return nil
	}
	defer t.w.mu.Unlock()
	return inst.owner
}

// Reset 从现在起重新计时. delay 为负数(KeepDelay)时沿用原来的间隔.
// 已销毁的定时器会被复活, 并重新订阅归属对象.
func (t Timer) Reset(delay time.Duration, repetitions int) {
	inst := t.lock()
	if inst == nil {
		return
	}
	defer t.w.mu.Unlock()

	if delay < 0 {
		delay = inst.delay
	} else {
		inst.delay = delay
	}
	inst.repetitions = repetitions
	now := t.w.clock.Now()
	inst.expiresAt = now + delay
	if inst.destroyed {
		inst.destroyed = false
		t.w.subscribe(inst)
	} else {
		t.w.unlink(inst)
	}
	t.w.insert(inst, inst.expiresAt <= now)
}

// ResetDelay 沿用原来的间隔, 从现在起重新计时
func (t Timer) ResetDelay(repetitions int) {
	t.Reset(wheelapi.KeepDelay, repetitions)
}

// Restart 沿用原来的间隔, 重新执行 1 次
func (t Timer) Restart() {
	t.Reset(wheelapi.KeepDelay, 1)
}

// Destroy 销毁定时器, 返回后回调保证不会再执行. 已销毁时返回 false.
// 回调正在其他协程执行时, 等待回调结束.
func (t Timer) Destroy() bool {
	inst := t.lock()
	if inst == nil {
		return false
	}
	defer t.w.mu.Unlock()
	if !t.w.destroy(inst) {
		return false
	}
	t.w.waitFiring(inst)
	return true
}

// DestroyToPool 销毁定时器并把实例放回实例池, 之后该句柄失效. 已销毁时返回 false.
func (t Timer) DestroyToPool() bool {
	inst := t.lock()
	if inst == nil {
		return false
	}
	defer t.w.mu.Unlock()
	if !t.w.release(inst) {
		return false
	}
	t.w.waitFiring(inst)
	return true
}
