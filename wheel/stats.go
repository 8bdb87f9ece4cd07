package wheel

import (
	"time"

	"github.com/pingcap/errors"
)

// Stats 时间轮的运行快照
type Stats struct {
	Name        string        `json:"name"`
	Slots       int           `json:"slots"`
	Tick        time.Duration `json:"tick"`
	MaxPooled   int           `json:"max_pooled"`
	Now         time.Duration `json:"now"`
	CurrentSlot int           `json:"current_slot"`
	Live        int           `json:"live"`
	Pooled      int           `json:"pooled"`
	Fired       int64         `json:"fired"`
	Faults      int64         `json:"faults"`
	Updates     int64         `json:"updates"`
	LastDelta   time.Duration `json:"last_delta"`
}

// Stats 返回运行快照
func (w *Wheel) Stats() Stats {
	now := w.clock.Now()

	w.mu.Lock()
	defer w.mu.Unlock()

	return Stats{
		Name:        w.name,
		Slots:       len(w.slots),
		Tick:        w.tick,
		MaxPooled:   w.maxPooled,
		Now:         now,
		CurrentSlot: int(w.current),
		Live:        w.live,
		Pooled:      w.pool.len(),
		Fired:       w.fired.Load(),
		Faults:      w.faults.total.Load(),
		Updates:     w.updates.Load(),
		LastDelta:   time.Duration(w.lastDelta.Load()),
	}
}

// Check 校验全部槽位链表: 长度与计数一致, 前后指针一致, 按到期时间有序,
// 每个实例只属于一个槽位且未销毁, 实例池中没有仍在槽位里的实例.
func (w *Wheel) Check() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	seen := make(map[*instance]int, w.live)
	total := 0
	for i := range w.slots {
		s := &w.slots[i]
		if (s.first == nil) != (s.last == nil) || (s.first == nil) != (s.count == 0) {
			return errors.Errorf("slot %d: first/last/count mismatch, count %d", i, s.count)
		}

		n := 0
		var prev *instance
		for t := s.first; t != nil; t = t.next {
			if other, ok := seen[t]; ok {
				return errors.Errorf("slot %d: timer-%d also linked in slot %d", i, t.id, other)
			}
			seen[t] = i
			if t.slot != s {
				return errors.Errorf("slot %d: timer-%d has wrong slot back reference", i, t.id)
			}
			if t.prev != prev {
				return errors.Errorf("slot %d: timer-%d has broken prev link", i, t.id)
			}
			if t.destroyed {
				return errors.Errorf("slot %d: destroyed timer-%d still linked", i, t.id)
			}
			if prev != nil && prev.expiresAt > t.expiresAt {
				return errors.Errorf("slot %d: timer-%d out of order", i, t.id)
			}
			prev = t
			n++
			if n > s.count {
				return errors.Errorf("slot %d: list longer than count %d", i, s.count)
			}
		}
		if n != s.count {
			return errors.Errorf("slot %d: walked %d timers, count %d", i, n, s.count)
		}
		if prev != s.last {
			return errors.Errorf("slot %d: walk did not end at last", i)
		}
		total += n
	}

	if total != w.live {
		return errors.Errorf("live count %d, linked %d", w.live, total)
	}
	for _, t := range w.pool.items {
		if t.slot != nil || !t.destroyed {
			return errors.Errorf("pooled timer-%d is still live", t.id)
		}
	}
	return nil
}
