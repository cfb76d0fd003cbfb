// Package registry holds the networks discovered by the most recent
// scan, in discovery order, up to a fixed capacity.
package registry

import "sync"

// DefaultCapacity is the number of records a registry keeps.
const DefaultCapacity = 50

// Registry is a bounded, ordered collection of [Record].  It is written
// only by a scan and read by reporting; the lock keeps readers on other
// goroutines (tests, exporters) consistent.
type Registry struct {
	mu       sync.RWMutex
	records  []Record
	capacity int
}

// New returns an empty registry.  capacity <= 0 selects DefaultCapacity.
func New(capacity int) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Registry{
		records:  make([]Record, 0, capacity),
		capacity: capacity,
	}
}

// Clear drops every record.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.records = r.records[:0]
	r.mu.Unlock()
}

// Add appends rec.  It returns false, storing nothing, once the
// registry is full.
func (r *Registry) Add(rec Record) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.records) >= r.capacity {
		return false
	}
	r.records = append(r.records, rec)
	return true
}

// Len returns the number of stored records.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Cap returns the capacity.
func (r *Registry) Cap() int { return r.capacity }

// Full reports whether another Add would be dropped.
func (r *Registry) Full() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records) >= r.capacity
}

// Records returns a copy of the stored records in discovery order.
func (r *Registry) Records() []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}
