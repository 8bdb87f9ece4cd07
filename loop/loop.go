package loop

import (
	"sync/atomic"
	"time"

	"github.com/andres-erbsen/clock"
	tclock "github.com/lonng/tickwheel/clock"
	"github.com/lonng/tickwheel/internal/env"
	"github.com/lonng/tickwheel/internal/log"
	"github.com/lonng/tickwheel/wheel"
	"github.com/timandy/routine"
)

// Task 在帧循环协程中执行的任务
type Task func()

// State 帧循环状态
type State = int32

const (
	// StateCreated 已创建, 但未启动
	StateCreated State = 0
	// StateRunning 正在运行
	StateRunning State = 1
	// StateClosed 已关闭
	StateClosed State = 2
)

// Loop 宿主帧循环. 每帧把帧时钟推进实际流逝的时间, 然后驱动时间轮 Update.
// 其他协程提交的任务在帧循环协程中串行执行.
type Loop struct {
	name    string        // 名称
	frame   time.Duration // 帧间隔
	clk     clock.Clock   // 驱动帧的时钟
	now     *tclock.Manual
	wheel   *wheel.Wheel
	state   atomic.Int32
	ticker  *clock.Ticker
	chDie   chan struct{} // 关闭信号
	chDone  chan struct{} // 主循环退出后关闭
	chTasks chan Task     // 任务队列
	frames  atomic.Int64
}

// New 构造帧循环和它驱动的时间轮, 需要调用 Start 启动. clk 为空时使用系统时钟.
func New(name string, clk clock.Clock, frame time.Duration, opts ...wheel.Option) *Loop {
	if frame <= 0 {
		panic("tickwheel/loop: frame must > 0")
	}
	if clk == nil {
		clk = clock.New()
	}
	now := tclock.NewManual(0)
	opts = append([]wheel.Option{wheel.WithName(name)}, opts...)
	return &Loop{
		name:    name,
		frame:   frame,
		clk:     clk,
		now:     now,
		wheel:   wheel.New(now, opts...),
		chDie:   make(chan struct{}),
		chDone:  make(chan struct{}),
		chTasks: make(chan Task, 1<<8),
	}
}

// runTask 执行一个任务, 捕获 panic
func (l *Loop) runTask(task Task) {
	if task == nil {
		return
	}
	defer func() {
		if err := recover(); err != nil {
			log.Error("Tickwheel loop [%v] execute task error.", l.name, routine.NewRuntimeError(err))
		}
	}()
	task()
}

// step 推进一帧
func (l *Loop) step(delta time.Duration) {
	if delta < 0 {
		delta = 0
	}
	l.now.Advance(delta)
	l.wheel.Update(delta)
	l.frames.Add(1)
}

// run 帧循环的主循环
func (l *Loop) run(last time.Time) {
	if env.Debug {
		log.Info("Tickwheel loop [%v] starting, frame %v.", l.name, l.frame)
	}

	defer func() {
		l.ticker.Stop()
		close(l.chDone)
		if env.Debug {
			log.Info("Tickwheel loop [%v] closed after %v frames.", l.name, l.frames.Load())
		}
	}()

	for {
		select {
		case now := <-l.ticker.C:
			l.step(now.Sub(last))
			last = now

		case task := <-l.chTasks:
			l.runTask(task)

		case <-l.chDie:
			return
		}
	}
}

// Start 启动帧循环
func (l *Loop) Start() {
	if !l.state.CompareAndSwap(StateCreated, StateRunning) {
		return
	}

	// ticker 在启动协程前创建, 模拟时钟推进时不会错过第一帧
	l.ticker = l.clk.Ticker(l.frame)
	go l.run(l.clk.Now())
}

// Close 关闭帧循环, 未执行的任务被丢弃. 不等待主循环退出, 需要时使用 Done.
func (l *Loop) Close() {
	if l.state.CompareAndSwap(StateCreated, StateClosed) {
		close(l.chDie)
		close(l.chDone)
		return
	}
	if !l.state.CompareAndSwap(StateRunning, StateClosed) {
		return
	}
	close(l.chDie)
}

// Done 主循环退出后关闭
func (l *Loop) Done() <-chan struct{} {
	return l.chDone
}

// State 返回当前状态
func (l *Loop) State() State {
	return l.state.Load()
}

// Execute 提交一个任务到帧循环, 已关闭时返回 false.
// 与 Close 并发时, 返回 false 的任务可能已入队, 但 Close 之后不会再返回 true.
func (l *Loop) Execute(task Task) bool {
	if l.closed() {
		if env.Debug {
			log.Info("Tickwheel loop [%v] already closed, new tasks are not accepted.", l.name)
		}
		return false
	}
	select {
	case l.chTasks <- task:
		// 发送和关闭同时就绪时 select 随机选择, 入队后再确认一次
		return !l.closed()
	case <-l.chDie:
		return false
	}
}

// closed 是否已经关闭
func (l *Loop) closed() bool {
	if l.state.Load() == StateClosed {
		return true
	}
	select {
	case <-l.chDie:
		return true
	default:
		return false
	}
}

//====

// Name 返回名称
func (l *Loop) Name() string {
	return l.name
}

// Wheel 返回帧循环驱动的时间轮
func (l *Loop) Wheel() *wheel.Wheel {
	return l.wheel
}

// Now 返回帧时钟的当前时间
func (l *Loop) Now() time.Duration {
	return l.now.Now()
}

// Frames 返回已经执行的帧数
func (l *Loop) Frames() int64 {
	return l.frames.Load()
}
