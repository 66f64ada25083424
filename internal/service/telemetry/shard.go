package telemetry

import (
	"hash/fnv"
	"sync"
)

// shardLocker fixes the source's documented race on concurrent folds
// for the same vehicle (spec.md §4.5/§9): folds for distinct vehicles
// stay independent, but folds for the same vehicle id serialize on the
// same *sync.Mutex, keyed by a hash of the id rather than one mutex
// per id so memory use stays bounded under a large fleet.
type shardLocker struct {
	shards []sync.Mutex
}

func newShardLocker(count int) *shardLocker {
	if count <= 0 {
		count = 1
	}
	return &shardLocker{shards: make([]sync.Mutex, count)}
}

func (s *shardLocker) lock(key string) func() {
	m := &s.shards[s.index(key)]
	m.Lock()
	return m.Unlock
}

func (s *shardLocker) index(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32()) % len(s.shards)
}
