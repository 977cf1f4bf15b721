package clinic

import (
	"fmt"
	"sync"
	"time"
)

// idGenerator yields "<prefix><unix-millis>" ids that never repeat within
// one process, bumping the millisecond when two calls land in the same one.
type idGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func newIDGenerator(now func() time.Time) *idGenerator {
	return &idGenerator{now: now}
}

func (g *idGenerator) next(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return fmt.Sprintf("%s%d", prefix, ms)
}

func recurringID(baseID string, week int) string {
	return fmt.Sprintf("%s-week-%d", baseID, week)
}
