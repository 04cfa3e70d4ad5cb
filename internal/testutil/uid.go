package testutil

import (
	"fmt"
	"sync"
)

// SequentialUIDs generates UUID-shaped identifiers from a counter, so the
// same seed produces byte-identical rows.
//
// Thread-safety: safe for concurrent use.
type SequentialUIDs struct {
	mu sync.Mutex
	n  int64
}

// Generate returns the next identifier. The first is
// "00000000-0000-0000-0000-000000000001".
func (g *SequentialUIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("00000000-0000-0000-0000-%012d", g.n)
}
