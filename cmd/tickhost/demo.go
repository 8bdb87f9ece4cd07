package main

import (
	"time"

	"github.com/lonng/tickwheel/internal/log"
	"github.com/lonng/tickwheel/lifecycle"
	"github.com/lonng/tickwheel/loop"
)

// startDemo 在帧循环协程中调度演示用的定时器
func startDemo(l *loop.Loop) {
	w := l.Wheel()

	quests := lifecycle.NewOwner("quests", "1.0.0")
	arena := lifecycle.NewOwner("arena", "0.3.1")

	// 心跳, 永久运行
	w.Repeat(time.Second, 0, func() {
		s := w.Stats()
		log.Info("Heartbeat at %v, live %v, fired %v.", l.Now().Truncate(time.Millisecond), s.Live, s.Fired)
	})

	// 归属对象的定时器, 对象移除后自动取消
	w.Repeat(500*time.Millisecond, 0, func() {
		log.Info("Quest refresh tick, %v calls so far.", quests.Calls())
	}, quests)
	w.Repeat(700*time.Millisecond, 5, func() {
		log.Info("Arena round, elapsed %v.", arena.Elapsed())
	}, arena)

	// 回调异常会被捕获, 定时器随之销毁
	w.Once(1500*time.Millisecond, func() {
		panic("arena scoreboard missing")
	}, arena)

	w.Once(3*time.Second, func() {
		log.Info("Removing owner %v.", quests)
		quests.Remove()
	})

	w.NextTick(func() {
		log.Info("Demo timers scheduled, %v live.", w.Count())
	})
}
