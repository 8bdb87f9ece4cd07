package wheelapi

// Token 订阅凭证, 用于取消订阅
type Token int64

// Owner 定时器的归属对象, 在被移除时通知订阅者.
// 时间轮只持有这个能力, 不参与 Owner 的生命周期管理.
type Owner interface {
	// Subscribe 订阅移除事件, 返回订阅凭证.
	// 时间轮持有自己的锁调用该方法, 不能同步调用 fn; 已经移除时应在其他协程中调用 fn.
	Subscribe(fn func()) Token

	// Unsubscribe 取消订阅. 同样在时间轮的锁内调用, 不能回调时间轮.
	Unsubscribe(token Token)
}

// Tracker 可选接口, Owner 实现后会在每次回调前后收到通知
type Tracker interface {
	// TrackStart 回调开始
	TrackStart()

	// TrackEnd 回调结束, kind 表示回调类型
	TrackEnd(kind string)
}
