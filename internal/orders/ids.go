package orders

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces order ids of the form ORD-<utc timestamp>-<counter>-<random>.
// It is safe for concurrent use.
type IDGenerator struct {
	seq atomic.Uint64
	now func() time.Time
}

// NewIDGenerator uses now as the clock; nil means time.Now.
func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

// Next returns a fresh id.
func (g *IDGenerator) Next() string {
	n := g.seq.Add(1)
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("ORD-%s-%04d-%s", g.now().UTC().Format("20060102150405"), n%10000, random)
}
