package lifecycle

import (
	"slices"
	"sync"

	"github.com/lonng/tickwheel/wheel/wheelapi"
)

// Handler 事件回调
type Handler func()

// Hook 一次性事件, 触发后新的订阅会在独立协程中立即收到通知
type Hook struct {
	mu       sync.Mutex
	next     wheelapi.Token
	handlers map[wheelapi.Token]Handler
	fired    bool
}

// Subscribe 订阅事件, 返回订阅凭证
func (h *Hook) Subscribe(fn func()) wheelapi.Token {
	if fn == nil {
		return 0
	}

	h.mu.Lock()
	if h.fired {
		h.mu.Unlock()
		// 订阅方可能正持有自己的锁, 不能同步回调
		go fn()
		return 0
	}
	defer h.mu.Unlock()

	if h.handlers == nil {
		h.handlers = make(map[wheelapi.Token]Handler)
	}
	h.next++
	h.handlers[h.next] = fn
	return h.next
}

// Unsubscribe 取消订阅, 凭证不存在时忽略
func (h *Hook) Unsubscribe(token wheelapi.Token) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.handlers, token)
}

// Len 返回订阅数
func (h *Hook) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.handlers)
}

// Fired 是否已经触发
func (h *Hook) Fired() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.fired
}

// Fire 触发事件, 只有第一次调用生效. 回调在锁外按订阅顺序执行, 回调中可以取消其他订阅.
func (h *Hook) Fire() bool {
	h.mu.Lock()
	if h.fired {
		h.mu.Unlock()
		return false
	}
	h.fired = true
	order := make([]wheelapi.Token, 0, len(h.handlers))
	for token := range h.handlers {
		order = append(order, token)
	}
	h.mu.Unlock()

	// 凭证单调递增, 排序后即订阅顺序
	slices.Sort(order)

	for _, token := range order {
		h.mu.Lock()
		fn, ok := h.handlers[token]
		delete(h.handlers, token)
		h.mu.Unlock()
		if ok {
			fn()
		}
	}
	return true
}
