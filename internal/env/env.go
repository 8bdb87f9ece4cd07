package env

import "time"

//goland:noinspection GoVarAndConstTypeMayBeOmitted,GoCommentStart
var (
	Debug        bool          = false                 //调试模式
	TickDuration time.Duration = 10 * time.Millisecond //时间轮, 每个槽位代表的时长
	SlotCount    int           = 512                   //时间轮, 槽位数量, 必须是 2 的幂
	MaxPooled    int           = 5000                  //实例池容量
	FaultLogRate float64       = 10                    //回调异常日志, 每秒最多条数
	FaultBurst   int           = 20                    //回调异常日志, 突发条数
)
