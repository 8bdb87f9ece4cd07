package wheel

import (
	"time"

	"github.com/lonng/tickwheel/wheel/wheelapi"
)

// instance 一个被调度的回调, 销毁后可以回收到实例池复用
type instance struct {
	id          int64              // 定时器 ID, 每次 AddTimer 重新分配
	gen         uint32             // 代数, 释放到实例池时加一, 旧句柄随之失效
	repetitions int                // 剩余次数, 非正数表示永久运行
	delay       time.Duration      // 每次触发之间的间隔
	expiresAt   time.Duration      // 绝对到期时间
	fn          wheelapi.TimerFunc // 回调
	owner       wheelapi.Owner     // 归属对象, 可以为空
	token       wheelapi.Token     // 归属对象的订阅凭证
	subscribed  bool               // 是否已订阅归属对象的移除事件
	destroyed   bool               // 是否已销毁
	queued      bool               // 是否已在本次 Update 的到期队列中

	slot *slot     // 所在槽位
	prev *instance // 槽位链表的前一个
	next *instance // 槽位链表的后一个
}

// load 初始化全部字段, 新分配和复用的实例都走这里
func (t *instance) load(id int64, repetitions int, delay time.Duration, fn wheelapi.TimerFunc, owner wheelapi.Owner, now time.Duration) {
	t.id = id
	t.repetitions = repetitions
	t.delay = delay
	t.expiresAt = now + delay
	t.fn = fn
	t.owner = owner
	t.token = 0
	t.subscribed = false
	t.destroyed = false
	t.queued = false
	t.slot = nil
	t.prev = nil
	t.next = nil
}

// entry 到期队列中的元素, 记录入队时的代数
type entry struct {
	inst *instance
	gen  uint32
}
