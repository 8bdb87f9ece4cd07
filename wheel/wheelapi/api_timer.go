package wheelapi

import "time"

// TimerFunc 定时器执行函数类型
type TimerFunc func()

// KeepDelay 传给 Reset 时表示沿用原来的延迟
const KeepDelay time.Duration = -1

// Infinite 表示定时器永久运行. 注意: 所有非正数的重复次数都视为永久运行, 不是禁用.
const Infinite = 0
