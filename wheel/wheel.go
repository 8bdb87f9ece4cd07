package wheel

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lonng/tickwheel/internal/env"
	"github.com/lonng/tickwheel/internal/log"
	"github.com/lonng/tickwheel/wheel/wheelapi"
	"github.com/timandy/routine"
)

// Wheel 时间轮调度器. 没有内部协程, 宿主每帧调用一次 Update 驱动到期回调.
// AddTimer/Reset/Destroy 可以在任意协程调用, 包括在回调内部.
type Wheel struct {
	name      string
	clock     wheelapi.Clock
	tick      time.Duration
	mask      int64
	maxPooled int

	mu       sync.Mutex    // 保护槽位, 实例链表和实例池
	slots    []slot        // 槽位数组
	current  int64         // 当前槽位下标
	deadline time.Duration // 当前槽位的截止时间, 超过后推进到下一个槽位
	pool     pool          // 实例池
	live     int           // 槽位中的定时器总数
	seq      int64         // 定时器 ID 自增计数器

	updateMu sync.Mutex // 串行化 Update
	expired  []entry    // 到期队列, 只在 Update 中使用
	updater  uint64     // 正在执行 Update 的协程 ID
	firing   *instance  // 正在执行回调的实例
	idle     *sync.Cond // firing 清空时广播

	faults    faultReporter
	fired     atomic.Int64
	updates   atomic.Int64
	lastDelta atomic.Int64
}

// New 构造时间轮, 槽位数必须是 2 的幂, tick 必须为正
func New(clock wheelapi.Clock, opts ...Option) *Wheel {
	if clock == nil {
		panic("tickwheel: nil clock")
	}
	opt := defaultOptions()
	for _, o := range opts {
		o(&opt)
	}
	if opt.slots <= 0 || opt.slots&(opt.slots-1) != 0 {
		panic("tickwheel: slot count must be a power of two")
	}
	if opt.tick <= 0 {
		panic("tickwheel: non-positive tick duration")
	}
	if opt.maxPooled < 0 {
		opt.maxPooled = 0
	}

	// 游标对齐到时钟, 保证槽位下标和绝对时间一致
	now := clock.Now()
	ticks := floorDiv(now, opt.tick)
	w := &Wheel{
		name:      opt.name,
		clock:     clock,
		tick:      opt.tick,
		mask:      int64(opt.slots - 1),
		maxPooled: opt.maxPooled,
		slots:     make([]slot, opt.slots),
		deadline:  time.Duration(ticks+1) * opt.tick,
		pool:      newPool(opt.maxPooled),
	}
	w.current = ticks & w.mask
	w.idle = sync.NewCond(&w.mu)
	w.faults.name = opt.name
	w.faults.limiter = opt.limiter

	if env.Debug {
		log.Info("Tickwheel [%v] created, slots %v, tick %v.", w.name, opt.slots, w.tick)
	}
	return w
}

//====

// AddTimer 添加一个定时器, delay 之后触发, 共触发 repetitions 次; repetitions 非正数时永久运行.
// owner 不为空时, owner 被移除会自动销毁该定时器. 不会同步执行回调.
func (w *Wheel) AddTimer(repetitions int, delay time.Duration, fn wheelapi.TimerFunc, owner wheelapi.Owner) Timer {
	if fn == nil {
		panic("tickwheel: nil timer function")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	t := w.pool.get()
	if t == nil {
		t = &instance{}
	}
	now := w.clock.Now()
	w.seq++
	t.load(w.seq, repetitions, delay, fn, owner, now)
	w.subscribe(t)
	w.insert(t, t.expiresAt <= now)
	return Timer{w: w, inst: t, gen: t.gen}
}

// Once 创建一个执行 1 次的定时器
func (w *Wheel) Once(delay time.Duration, fn wheelapi.TimerFunc, owner ...wheelapi.Owner) Timer {
	return w.AddTimer(1, delay, fn, firstOwner(owner))
}

// Repeat 创建一个执行 repetitions 次的定时器, 每隔 delay 执行一次; repetitions 非正数时永久运行
func (w *Wheel) Repeat(delay time.Duration, repetitions int, fn wheelapi.TimerFunc, owner ...wheelapi.Owner) Timer {
	return w.AddTimer(repetitions, delay, fn, firstOwner(owner))
}

// NextTick 创建一个在下一次 Update 执行的定时器
func (w *Wheel) NextTick(fn wheelapi.TimerFunc, owner ...wheelapi.Owner) Timer {
	return w.AddTimer(1, 0, fn, firstOwner(owner))
}

// Update 宿主每帧调用一次. 推进槽位游标, 执行所有到期的定时器.
// 不能在定时器回调中调用.
func (w *Wheel) Update(delta time.Duration) {
	w.updateMu.Lock()
	defer w.updateMu.Unlock()

	w.updates.Add(1)
	w.lastDelta.Store(int64(delta))

	now := w.clock.Now()
	queue := w.collect(now)
	for i, e := range queue {
		w.invoke(e, now)
		queue[i] = entry{}
	}
	w.expired = queue[:0]
}

// collect 推进游标, 收集到期的定时器
func (w *Wheel) collect(now time.Duration) []entry {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.updater = routine.Goid()
	queue := w.expired[:0]
	for now > w.deadline {
		queue = w.slots[w.current].expired(w.deadline, queue)
		w.current = (w.current + 1) & w.mask
		w.deadline += w.tick
	}
	// 当前槽位每次都要检查, 小于 tick 的定时器不会被跳过
	return w.slots[w.current].expired(now, queue)
}

// invoke 先完成重新调度或销毁, 再在锁外执行回调
func (w *Wheel) invoke(e entry, now time.Duration) {
	t := e.inst

	w.mu.Lock()
	if t.gen != e.gen {
		w.mu.Unlock()
		return
	}
	t.queued = false
	if t.destroyed || t.expiresAt > now {
		w.mu.Unlock()
		return
	}

	fn, delay, owner, id := t.fn, t.delay, t.owner, t.id
	if t.repetitions > 0 {
		t.repetitions--
		if t.repetitions == 0 {
			w.destroy(t)
		}
	}
	if !t.destroyed {
		// 从上一次的名义到期时间累加, 避免漂移
		w.unlink(t)
		t.expiresAt += t.delay
		w.insert(t, t.expiresAt <= now)
	}
	w.firing = t
	w.mu.Unlock()

	w.fire(Timer{w: w, inst: t, gen: e.gen}, id, fn, delay, owner)

	w.mu.Lock()
	w.firing = nil
	w.idle.Broadcast()
	w.mu.Unlock()
}

// fire 执行回调, 捕获 panic; 出错的定时器会被销毁
func (w *Wheel) fire(h Timer, id int64, fn wheelapi.TimerFunc, delay time.Duration, owner wheelapi.Owner) {
	if tracker, ok := owner.(wheelapi.Tracker); ok {
		tracker.TrackStart()
		defer tracker.TrackEnd("timer")
	}
	defer func() {
		if err := recover(); err != nil {
			h.Destroy()
			w.faults.report(id, delay, owner, routine.NewRuntimeError(err))
		}
	}()
	w.fired.Add(1)
	fn()
}

//==== 以下方法调用方必须持有 w.mu

// insert 插入到到期时间对应的槽位; inPast 为真时插入当前槽位, 下一次 Update 即可触发.
// 槽位 c 覆盖 (c*tick, (c+1)*tick], 恰好落在边界上的定时器在游标到达边界的那次 Update 触发.
func (w *Wheel) insert(t *instance, inPast bool) {
	idx := w.current
	if !inPast {
		idx = floorDiv(t.expiresAt-1, w.tick) & w.mask
	}
	w.slots[idx].insert(t)
	w.live++
}

// unlink 从所在槽位摘除
func (w *Wheel) unlink(t *instance) {
	if t.slot == nil {
		return
	}
	t.slot.remove(t)
	w.live--
}

// destroy 销毁定时器, 已销毁时返回 false
func (w *Wheel) destroy(t *instance) bool {
	if t.destroyed {
		return false
	}
	t.destroyed = true
	w.unlink(t)
	w.unsubscribe(t)
	return true
}

// release 销毁并释放到实例池, 旧句柄全部失效
func (w *Wheel) release(t *instance) bool {
	if !w.destroy(t) {
		return false
	}
	t.fn = nil
	t.owner = nil
	t.gen++
	w.pool.put(t)
	return true
}

// waitFiring 其他协程销毁正在执行回调的定时器时, 等回调结束再返回
func (w *Wheel) waitFiring(t *instance) {
	for w.firing == t && routine.Goid() != w.updater {
		w.idle.Wait()
	}
}

// subscribe 订阅归属对象的移除事件
func (w *Wheel) subscribe(t *instance) {
	if t.owner == nil || t.subscribed {
		return
	}
	h := Timer{w: w, inst: t, gen: t.gen}
	t.token = t.owner.Subscribe(func() { h.Destroy() })
	t.subscribed = true
}

// unsubscribe 取消订阅归属对象的移除事件
func (w *Wheel) unsubscribe(t *instance) {
	if t.owner == nil || !t.subscribed {
		return
	}
	t.owner.Unsubscribe(t.token)
	t.token = 0
	t.subscribed = false
}

//====

// Name 返回名称
func (w *Wheel) Name() string {
	return w.name
}

// Tick 返回每个槽位代表的时长
func (w *Wheel) Tick() time.Duration {
	return w.tick
}

// Slots 返回槽位数量
func (w *Wheel) Slots() int {
	return len(w.slots)
}

// Count 返回槽位中的定时器总数
func (w *Wheel) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.live
}

// Pooled 返回实例池中的实例数
func (w *Wheel) Pooled() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.pool.len()
}

// floorDiv 向下取整的除法, 时钟起点可以是负数
func floorDiv(d, tick time.Duration) int64 {
	q := int64(d / tick)
	if d%tick < 0 {
		q--
	}
	return q
}

func firstOwner(owners []wheelapi.Owner) wheelapi.Owner {
	if len(owners) == 0 {
		return nil
	}
	return owners[0]
}
