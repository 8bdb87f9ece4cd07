package wheel

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/lonng/tickwheel/internal/log"
	"github.com/lonng/tickwheel/wheel/wheelapi"
	"golang.org/x/time/rate"
)

// faultReporter 记录回调异常, 日志经过限流
type faultReporter struct {
	name       string
	limiter    *rate.Limiter
	total      atomic.Int64
	suppressed atomic.Int64
}

// report 记录一次回调异常
func (r *faultReporter) report(id int64, delay time.Duration, owner wheelapi.Owner, err error) {
	r.total.Add(1)
	if r.limiter != nil && !r.limiter.Allow() {
		r.suppressed.Add(1)
		return
	}

	if n := r.suppressed.Swap(0); n > 0 {
		log.Error("Tickwheel [%v] suppressed %v timer fault logs.", r.name, n)
	}
	if owner == nil {
		log.Error("Tickwheel [%v] failed to run a %v timer-%v.", r.name, delay, id, err)
		return
	}
	log.Error("Tickwheel [%v] failed to run a %v timer-%v in '%v'.", r.name, delay, id, ownerName(owner), err)
}

// ownerName 归属对象的标识
func ownerName(owner wheelapi.Owner) string {
	if s, ok := owner.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", owner)
}
