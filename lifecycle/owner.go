package lifecycle

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/lonng/tickwheel/wheel/wheelapi"
)

var (
	_ wheelapi.Owner   = (*Owner)(nil)
	_ wheelapi.Tracker = (*Owner)(nil)
)

// Owner 定时器的归属对象, 类似插件: 有名称和版本, 被移除时自动销毁归属的定时器
type Owner struct {
	id      uuid.UUID
	name    string
	version string
	removed Hook

	// 回调耗时统计, 同一个对象可以被多个时间轮共用
	started  atomic.Int64 // 最近一次回调开始的时间, 纳秒
	calls    atomic.Int64
	elapsed  atomic.Int64
	lastKind atomic.Value
}

// NewOwner 构造函数
func NewOwner(name, version string) *Owner {
	return &Owner{
		id:      uuid.New(),
		name:    name,
		version: version,
	}
}

// ID 返回唯一标识
func (o *Owner) ID() uuid.UUID {
	return o.id
}

// Name 返回名称
func (o *Owner) Name() string {
	return o.name
}

// Version 返回版本
func (o *Owner) Version() string {
	return o.version
}

// String 用于日志
func (o *Owner) String() string {
	return o.name + " v" + o.version
}

// Subscribe 订阅移除事件
func (o *Owner) Subscribe(fn func()) wheelapi.Token {
	return o.removed.Subscribe(fn)
}

// Unsubscribe 取消订阅移除事件
func (o *Owner) Unsubscribe(token wheelapi.Token) {
	o.removed.Unsubscribe(token)
}

// OnRemoved 返回移除事件
func (o *Owner) OnRemoved() *Hook {
	return &o.removed
}

// Remove 移除归属对象, 只有第一次调用生效
func (o *Owner) Remove() bool {
	return o.removed.Fire()
}

// Removed 是否已移除
func (o *Owner) Removed() bool {
	return o.removed.Fired()
}

//====

// TrackStart 回调开始
func (o *Owner) TrackStart() {
	o.started.Store(time.Now().UnixNano())
}

// TrackEnd 回调结束, 累计调用次数和耗时
func (o *Owner) TrackEnd(kind string) {
	o.calls.Add(1)
	if d := time.Now().UnixNano() - o.started.Load(); d > 0 {
		o.elapsed.Add(d)
	}
	o.lastKind.Store(kind)
}

// Calls 返回回调次数
func (o *Owner) Calls() int64 {
	return o.calls.Load()
}

// Elapsed 返回回调累计耗时
func (o *Owner) Elapsed() time.Duration {
	return time.Duration(o.elapsed.Load())
}

// LastKind 返回最近一次回调的类型
func (o *Owner) LastKind() string {
	kind, _ := o.lastKind.Load().(string)
	return kind
}
