// Package observability tracks remote catalog call statistics for diagnostics and performance monitoring.
package observability

import (
	"sort"
	"sync"
	"time"
)

// CallStats tracks per-operation call counts, failures and latency.
type CallStats struct {
	mu     sync.RWMutex
	ops    map[string]*OperationStats
	window time.Duration
}

// OperationStats holds statistics for a single remote operation.
type OperationStats struct {
	Operation     string
	Calls         int64
	Failures      int64
	TotalDuration time.Duration
	MaxDuration   time.Duration
	LastSeen      time.Time
	ErrorCodes    map[string]int // error code → count (e.g., "ENTITY_NOT_FOUND" → 3)
}

// AverageDuration returns the mean latency of recorded calls.
func (s OperationStats) AverageDuration() time.Duration {
	if s.Calls == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(s.Calls)
}

// NewCallStats creates a new call statistics tracker.
// window: time duration for pruning idle operations (e.g., 1 hour)
func NewCallStats(window time.Duration) *CallStats {
	return &CallStats{
		ops:    make(map[string]*OperationStats),
		window: window,
	}
}

// RecordCall records one remote call. errorCode is empty for successful calls.
// This method is O(1) and thread-safe.
func (c *CallStats) RecordCall(operation string, elapsed time.Duration, errorCode string, failed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats, exists := c.ops[operation]
	if !exists {
		stats = &OperationStats{
			Operation:  operation,
			ErrorCodes: make(map[string]int),
		}
		c.ops[operation] = stats
	}

	stats.Calls++
	stats.TotalDuration += elapsed
	if elapsed > stats.MaxDuration {
		stats.MaxDuration = elapsed
	}
	stats.LastSeen = time.Now()
	if failed {
		stats.Failures++
		if errorCode == "" {
			errorCode = "UNKNOWN"
		}
		stats.ErrorCodes[errorCode]++
	}
}

// Get returns a copy of the statistics for one operation.
func (c *CallStats) Get(operation string) (OperationStats, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.ops[operation]
	if !ok {
		return OperationStats{}, false
	}
	return copyStats(s), true
}

// GetTopOperations returns the top N operations by call count.
// Returns a copy of the stats sorted by calls (descending), then by name.
func (c *CallStats) GetTopOperations(n int) []OperationStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if n <= 0 || len(c.ops) == 0 {
		return []OperationStats{}
	}

	stats := make([]OperationStats, 0, len(c.ops))
	for _, s := range c.ops {
		stats = append(stats, copyStats(s))
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Calls != stats[j].Calls {
			return stats[i].Calls > stats[j].Calls
		}
		return stats[i].Operation < stats[j].Operation
	})

	if n > len(stats) {
		n = len(stats)
	}
	return stats[:n]
}

// Prune removes operations not seen within the window.
func (c *CallStats) Prune() {
	c.mu.Lock()
	defer c.mu.Unlock()

	threshold := time.Now().Add(-c.window)
	for op, stats := range c.ops {
		if stats.LastSeen.Before(threshold) {
			delete(c.ops, op)
		}
	}
}

// copyStats deep copies s to prevent external modification.
func copyStats(s *OperationStats) OperationStats {
	out := *s
	out.ErrorCodes = make(map[string]int, len(s.ErrorCodes))
	for code, count := range s.ErrorCodes {
		out.ErrorCodes[code] = count
	}
	return out
}
