package testutil

import (
	"fmt"
	"sync"
)

// SequentialTraceGenerator hands out predictable trace ids for golden output:
// "<prefix>-1", "<prefix>-2", and so on.
//
// If prefix is empty, "test-trace" is used.
type SequentialTraceGenerator struct {
	mu     sync.Mutex
	prefix string
	seq    int
}

// NewSequentialTraceGenerator creates a generator whose first id ends in 1.
func NewSequentialTraceGenerator(prefix string) *SequentialTraceGenerator {
	if prefix == "" {
		prefix = "test-trace"
	}
	return &SequentialTraceGenerator{prefix: prefix}
}

// Generate returns the next trace id.
func (g *SequentialTraceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s-%d", g.prefix, g.seq)
}

// Reset restarts the sequence at 1.
func (g *SequentialTraceGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
