package wheel

import "time"

// slot 时间轮的一个槽位, 按到期时间升序保存定时器
type slot struct {
	count int       // 链表长度
	first *instance // 链表头
	last  *instance // 链表尾
}

// insert 按到期时间插入链表; 从离插入位置较近的一端开始查找
func (s *slot) insert(t *instance) {
	at := t.expiresAt

	// 插入到 before 之前, before 为空表示追加到尾部
	var before *instance
	if first, last := s.first, s.last; first != nil {
		switch {
		case at <= first.expiresAt:
			before = first
		case at >= last.expiresAt:
			before = nil
		case last.expiresAt-at < at-first.expiresAt:
			before = last
			for it := last; it != nil && it.expiresAt > at; it = it.prev {
				before = it
			}
		default:
			before = first
			for before != nil && before.expiresAt <= at {
				before = before.next
			}
		}
	}

	if before == nil {
		t.prev = s.last
		t.next = nil
		if s.last == nil {
			s.first = t
		} else {
			s.last.next = t
		}
		s.last = t
	} else {
		t.prev = before.prev
		t.next = before
		if before.prev == nil {
			s.first = t
		} else {
			before.prev.next = t
		}
		before.prev = t
	}

	t.slot = s
	s.count++
}

// remove 从链表中摘除
func (s *slot) remove(t *instance) {
	if t.next == nil {
		s.last = t.prev
	} else {
		t.next.prev = t.prev
	}
	if t.prev == nil {
		s.first = t.next
	} else {
		t.prev.next = t.next
	}

	s.count--
	t.slot = nil
	t.prev = nil
	t.next = nil
}

// expired 把到期时间不晚于 threshold 的定时器追加到 queue; 不从链表中摘除
func (s *slot) expired(threshold time.Duration, queue []entry) []entry {
	for t := s.first; t != nil; t = t.next {
		if t.expiresAt > threshold {
			break
		}
		if t.queued {
			continue
		}
		t.queued = true
		queue = append(queue, entry{inst: t, gen: t.gen})
	}
	return queue
}
