package loop

import (
	"time"

	"github.com/lonng/tickwheel/internal/env"
	"github.com/lonng/tickwheel/wheel"
	"github.com/lonng/tickwheel/wheel/wheelapi"
)

// global 默认的全局帧循环, 使用系统时钟
var global = New("default", nil, env.TickDuration)

// Default 返回默认的帧循环
func Default() *Loop {
	return global
}

// Replace 替换默认的帧循环, 原来的帧循环会被关闭
func Replace(l *Loop) {
	// 此处可能被绕过
	if l == nil {
		return
	}
	if global != nil && global != l {
		global.Close()
	}
	l.Start()
	global = l
}

// Start 启动默认的帧循环
func Start() {
	global.Start()
}

// Execute 提交一个任务到默认的帧循环
func Execute(task Task) bool {
	return global.Execute(task)
}

// Close 关闭默认的帧循环
func Close() {
	global.Close()
}

// Once 在默认的时间轮上创建一个执行 1 次的定时器
func Once(delay time.Duration, fn wheelapi.TimerFunc, owner ...wheelapi.Owner) wheel.Timer {
	return global.wheel.Once(delay, fn, owner...)
}

// Repeat 在默认的时间轮上创建一个执行 repetitions 次的定时器; repetitions 非正数时永久运行
func Repeat(delay time.Duration, repetitions int, fn wheelapi.TimerFunc, owner ...wheelapi.Owner) wheel.Timer {
	return global.wheel.Repeat(delay, repetitions, fn, owner...)
}

// NextTick 在默认的时间轮上创建一个下一帧执行的定时器
func NextTick(fn wheelapi.TimerFunc, owner ...wheelapi.Owner) wheel.Timer {
	return global.wheel.NextTick(fn, owner...)
}
