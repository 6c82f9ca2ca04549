package directory

import (
	"sync"
	"time"

	"github.com/windmesh/bearing/internal/domain"
)

// MemoryDirectory is the in-memory capability directory: the consistent,
// read-only snapshot surface the routing core consumes. Writes come only from
// the seed and sync machinery; readers always get copies, so a snapshot taken
// by one caller is never mutated under it.
type MemoryDirectory struct {
	mu          sync.RWMutex
	records     map[string]domain.CapabilityRecord // ID -> record
	lastUpdated time.Time                          // timestamp of last write
}

// NewMemoryDirectory creates an empty directory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		records: make(map[string]domain.CapabilityRecord),
	}
}

// Upsert adds or replaces a single record.
func (d *MemoryDirectory) Upsert(rec domain.CapabilityRecord) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.records[rec.ID] = rec
	d.lastUpdated = time.Now()
}

// UpsertMany adds or replaces a batch of records.
func (d *MemoryDirectory) UpsertMany(recs []domain.CapabilityRecord) {
	if len(recs) == 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, rec := range recs {
		d.records[rec.ID] = rec
	}
	d.lastUpdated = time.Now()
}

// Remove deletes a record by ID.
func (d *MemoryDirectory) Remove(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.records, id)
	d.lastUpdated = time.Now()
}

// GetCapability retrieves one record by ID.
func (d *MemoryDirectory) GetCapability(id string) (domain.CapabilityRecord, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rec, ok := d.records[id]
	return rec, ok
}

// GetAllCapabilities returns a snapshot of every record. The returned slice
// is the caller's to keep; later directory writes never touch it.
func (d *MemoryDirectory) GetAllCapabilities() []domain.CapabilityRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()

	recs := make([]domain.CapabilityRecord, 0, len(d.records))
	for _, rec := range d.records {
		recs = append(recs, rec)
	}
	return recs
}

// RecordsForNode returns the records owned by one node.
func (d *MemoryDirectory) RecordsForNode(nodeID string) []domain.CapabilityRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var recs []domain.CapabilityRecord
	for _, rec := range d.records {
		if rec.NodeID == nodeID {
			recs = append(recs, rec)
		}
	}
	return recs
}

// ReplaceRemote swaps every remote record for the given set while leaving
// localNodeID's own records untouched. The sync loop uses it so that records
// deleted on other nodes disappear here too, without clobbering capabilities
// freshly seeded from the local file.
func (d *MemoryDirectory) ReplaceRemote(localNodeID string, recs []domain.CapabilityRecord) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for id, rec := range d.records {
		if rec.NodeID != localNodeID {
			delete(d.records, id)
		}
	}
	for _, rec := range recs {
		if rec.NodeID == localNodeID {
			continue
		}
		d.records[rec.ID] = rec
	}
	d.lastUpdated = time.Now()
}

// PruneExpired removes every record whose freshness window has passed and
// returns how many were dropped.
func (d *MemoryDirectory) PruneExpired(now time.Time) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	pruned := 0
	for id, rec := range d.records {
		if rec.IsExpired(now) {
			delete(d.records, id)
			pruned++
		}
	}
	if pruned > 0 {
		d.lastUpdated = time.Now()
	}
	return pruned
}

// Count returns the number of records in the directory.
func (d *MemoryDirectory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.records)
}

// LastUpdated returns the timestamp of the last write.
func (d *MemoryDirectory) LastUpdated() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.lastUpdated
}

// Stats summarizes the directory for the stats endpoint: record total,
// per-node counts, node total and the last write time.
func (d *MemoryDirectory) Stats() map[string]any {
	d.mu.RLock()
	defer d.mu.RUnlock()

	perNode := make(map[string]int)
	for _, rec := range d.records {
		perNode[rec.NodeID]++
	}

	return map[string]any{
		"total_capabilities":    len(d.records),
		"total_nodes":           len(perNode),
		"capabilities_per_node": perNode,
		"last_updated":          d.lastUpdated,
	}
}
