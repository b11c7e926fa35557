// Package cabi exposes the substrate's stable, language-neutral function
// table as a set of flat Go functions operating on opaque handle tokens
// instead of Go pointers — the shape a cgo or FFI shim would bind to,
// without actually cgo-exporting anything (the substrate itself never opens
// a network listener or links against a foreign runtime, so there is no
// cgo build step to own here).
package cabi

import (
	"sync"

	"github.com/google/uuid"

	"atlas-substrate/core"
)

// DomainHandle and WitnessHandle are opaque tokens standing in for raw
// Domain*/Witness* pointers. Callers never see a Go pointer; they see a
// uuid-derived uint64 they can only use as a lookup key back into this
// package's handle tables.
type DomainHandle uint64
type WitnessHandle uint64

// ClusterHandle stands in for a raw ClusterView pointer.
type ClusterHandle uint64

type handleTable[V any] struct {
	mu      sync.RWMutex
	entries map[uint64]V
}

func newHandleTable[V any]() *handleTable[V] {
	return &handleTable[V]{entries: make(map[uint64]V)}
}

func (t *handleTable[V]) put(v V) uint64 {
	id := uuid.New()
	key := uint64(id[0])<<56 | uint64(id[1])<<48 | uint64(id[2])<<40 | uint64(id[3])<<32 |
		uint64(id[4])<<24 | uint64(id[5])<<16 | uint64(id[6])<<8 | uint64(id[7])
	t.mu.Lock()
	defer t.mu.Unlock()
	for {
		if _, exists := t.entries[key]; !exists {
			break
		}
		key++
	}
	t.entries[key] = v
	return key
}

func (t *handleTable[V]) get(key uint64) (V, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.entries[key]
	return v, ok
}

func (t *handleTable[V]) delete(key uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, key)
}

var (
	domains   = newHandleTable[*core.Domain]()
	witnesses = newHandleTable[*core.Witness]()
	clusters  = newHandleTable[*core.ClusterView]()
)
