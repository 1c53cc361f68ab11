package bins

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrUnknownBin is returned for bin identities outside the provisioned fleet.
var ErrUnknownBin = errors.New("bins: unknown bin")

// Registry is the authoritative in-memory bin table. Cardinality and order
// are fixed at construction and define the serialization order of every
// snapshot. All mutation goes through ApplyLevel under the write lock, so
// readers observe each record either before or after an update, never
// mid-update.
type Registry struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*Bin
}

// NewRegistry builds a registry from provisioned records.
func NewRegistry(records []Bin) (*Registry, error) {
	if len(records) == 0 {
		return nil, errors.New("bins: empty provisioning")
	}
	r := &Registry{
		order: make([]string, 0, len(records)),
		byID:  make(map[string]*Bin, len(records)),
	}
	for _, record := range records {
		if record.ID == "" {
			return nil, errors.New("bins: record without id")
		}
		if _, exists := r.byID[record.ID]; exists {
			return nil, fmt.Errorf("bins: duplicate bin id %q", record.ID)
		}
		copied := record
		r.order = append(r.order, record.ID)
		r.byID[record.ID] = &copied
	}
	return r, nil
}

// IDs returns the bin identities in provisioning order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Get returns a copy of one record.
func (r *Registry) Get(id string) (Bin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.byID[id]
	if !ok {
		return Bin{}, fmt.Errorf("%w: %s", ErrUnknownBin, id)
	}
	return *record, nil
}

// ApplyLevel records an observed fill level for one bin and derives the
// last-emptied timestamp. It returns the previous level.
func (r *Registry) ApplyLevel(id string, level float64, observedAt time.Time) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.byID[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownBin, id)
	}
	previous := record.Level
	record.applyLevel(level, observedAt)
	return previous, nil
}

// Snapshot returns a copy of every record in provisioning order.
func (r *Registry) Snapshot() []Bin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snapshot := make([]Bin, 0, len(r.order))
	for _, id := range r.order {
		snapshot = append(snapshot, *r.byID[id])
	}
	return snapshot
}
