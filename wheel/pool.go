package wheel

// pool 有界的实例空闲列表, 满了以后直接丢弃
type pool struct {
	items []*instance
	max   int
}

func newPool(max int) pool {
	return pool{max: max}
}

// get 取出最近放入的实例, 没有时返回 nil
func (p *pool) get() *instance {
	n := len(p.items)
	if n == 0 {
		return nil
	}
	t := p.items[n-1]
	p.items[n-1] = nil
	p.items = p.items[:n-1]
	return t
}

// put 放回实例, 返回是否被收下
func (p *pool) put(t *instance) bool {
	if len(p.items) >= p.max {
		return false
	}
	p.items = append(p.items, t)
	return true
}

func (p *pool) len() int {
	return len(p.items)
}
