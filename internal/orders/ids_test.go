package orders_test

import (
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/grocerybot/internal/orders"
)

func TestIDGeneratorFormat(t *testing.T) {
	fixed := time.Date(2026, 10, 18, 15, 30, 45, 0, time.UTC)
	gen := orders.NewIDGenerator(func() time.Time { return fixed })

	id := gen.Next()
	assert.Regexp(t, regexp.MustCompile(`^ORD-20261018153045-0001-[0-9a-f]{8}$`), id)
}

func TestIDGeneratorUniqueUnderConcurrency(t *testing.T) {
	fixed := time.Date(2026, 10, 18, 15, 30, 45, 0, time.UTC)
	gen := orders.NewIDGenerator(func() time.Time { return fixed })

	const workers, perWorker = 8, 250
	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, workers*perWorker)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]string, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				local = append(local, gen.Next())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range local {
				seen[id] = struct{}{}
			}
		}()
	}
	wg.Wait()
	require.Len(t, seen, workers*perWorker)
}
