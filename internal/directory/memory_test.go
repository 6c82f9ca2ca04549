package directory

import (
	"sync"
	"testing"
	"time"

	"github.com/windmesh/bearing/internal/domain"
)

// fresh builds a record owned by nodeID that expires an hour from now.
func fresh(id, nodeID string) domain.CapabilityRecord {
	return domain.CapabilityRecord{
		ID:        id,
		NodeID:    nodeID,
		NodeName:  nodeID,
		Label:     id,
		Timestamp: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func TestNewMemoryDirectory(t *testing.T) {
	dir := NewMemoryDirectory()
	if dir == nil {
		t.Fatal("NewMemoryDirectory() returned nil")
	}
	if got := dir.GetAllCapabilities(); len(got) != 0 {
		t.Errorf("new directory should start empty, got %v records", len(got))
	}
}

func TestUpsertAndGet(t *testing.T) {
	dir := NewMemoryDirectory()

	dir.Upsert(fresh("node-a:chat", "node-a"))

	rec, ok := dir.GetCapability("node-a:chat")
	if !ok {
		t.Fatal("GetCapability() did not find upserted record")
	}
	if rec.NodeID != "node-a" {
		t.Errorf("NodeID = %v, want node-a", rec.NodeID)
	}

	if _, ok := dir.GetCapability("missing"); ok {
		t.Error("GetCapability() found a record that was never stored")
	}
}

func TestUpsertReplaces(t *testing.T) {
	dir := NewMemoryDirectory()

	rec := fresh("node-a:chat", "node-a")
	rec.Label = "old"
	dir.Upsert(rec)

	rec.Label = "new"
	dir.Upsert(rec)

	got, _ := dir.GetCapability("node-a:chat")
	if got.Label != "new" {
		t.Errorf("Label = %v, want new", got.Label)
	}
	if dir.Count() != 1 {
		t.Errorf("Count() = %v, want 1", dir.Count())
	}
}

func TestUpsertMany(t *testing.T) {
	dir := NewMemoryDirectory()

	dir.UpsertMany([]domain.CapabilityRecord{
		fresh("node-a:chat", "node-a"),
		fresh("node-a:code", "node-a"),
		fresh("node-b:vision", "node-b"),
	})

	if dir.Count() != 3 {
		t.Errorf("Count() = %v, want 3", dir.Count())
	}
}

func TestCopyOnRead(t *testing.T) {
	dir := NewMemoryDirectory()
	dir.Upsert(fresh("node-a:chat", "node-a"))

	snapshot := dir.GetAllCapabilities()
	snapshot[0].Label = "mutated"

	rec, _ := dir.GetCapability("node-a:chat")
	if rec.Label == "mutated" {
		t.Error("mutating a returned snapshot must not affect the directory")
	}
}

func TestRemove(t *testing.T) {
	dir := NewMemoryDirectory()
	dir.Upsert(fresh("node-a:chat", "node-a"))

	dir.Remove("node-a:chat")

	if dir.Count() != 0 {
		t.Errorf("Count() after Remove = %v, want 0", dir.Count())
	}
}

func TestRecordsForNode(t *testing.T) {
	dir := NewMemoryDirectory()
	dir.UpsertMany([]domain.CapabilityRecord{
		fresh("node-a:chat", "node-a"),
		fresh("node-a:code", "node-a"),
		fresh("node-b:vision", "node-b"),
	})

	got := dir.RecordsForNode("node-a")
	if len(got) != 2 {
		t.Errorf("RecordsForNode(node-a) = %v records, want 2", len(got))
	}
	for _, rec := range got {
		if rec.NodeID != "node-a" {
			t.Errorf("RecordsForNode returned record owned by %v", rec.NodeID)
		}
	}
}

func TestReplaceRemote(t *testing.T) {
	dir := NewMemoryDirectory()
	dir.UpsertMany([]domain.CapabilityRecord{
		fresh("local:chat", "local"),
		fresh("node-b:vision", "node-b"),
		fresh("node-c:code", "node-c"),
	})

	// node-c vanished from the shared store; node-d appeared. A stale copy
	// of the local record rides along and must be ignored.
	dir.ReplaceRemote("local", []domain.CapabilityRecord{
		fresh("node-b:vision", "node-b"),
		fresh("node-d:audio", "node-d"),
		fresh("local:stale", "local"),
	})

	if _, ok := dir.GetCapability("local:chat"); !ok {
		t.Error("local record should survive ReplaceRemote")
	}
	if _, ok := dir.GetCapability("local:stale"); ok {
		t.Error("local-owned record from the remote set must be ignored")
	}
	if _, ok := dir.GetCapability("node-c:code"); ok {
		t.Error("remote record absent from the new set should be dropped")
	}
	if _, ok := dir.GetCapability("node-d:audio"); !ok {
		t.Error("new remote record should be present")
	}
	if dir.Count() != 3 {
		t.Errorf("Count() = %v, want 3", dir.Count())
	}
}

func TestPruneExpired(t *testing.T) {
	dir := NewMemoryDirectory()

	live := fresh("node-a:chat", "node-a")
	dead := fresh("node-b:vision", "node-b")
	dead.ExpiresAt = time.Now().Add(-time.Minute)
	dir.UpsertMany([]domain.CapabilityRecord{live, dead})

	pruned := dir.PruneExpired(time.Now())

	if pruned != 1 {
		t.Errorf("PruneExpired() = %v, want 1", pruned)
	}
	if _, ok := dir.GetCapability("node-a:chat"); !ok {
		t.Error("live record should survive pruning")
	}
	if _, ok := dir.GetCapability("node-b:vision"); ok {
		t.Error("expired record should be pruned")
	}
}

func TestPruneExpiredNothingToDo(t *testing.T) {
	dir := NewMemoryDirectory()
	dir.Upsert(fresh("node-a:chat", "node-a"))

	if pruned := dir.PruneExpired(time.Now()); pruned != 0 {
		t.Errorf("PruneExpired() = %v, want 0", pruned)
	}
}

func TestStats(t *testing.T) {
	dir := NewMemoryDirectory()
	dir.UpsertMany([]domain.CapabilityRecord{
		fresh("node-a:chat", "node-a"),
		fresh("node-a:code", "node-a"),
		fresh("node-b:vision", "node-b"),
	})

	stats := dir.Stats()

	if got := stats["total_capabilities"]; got != 3 {
		t.Errorf("total_capabilities = %v, want 3", got)
	}
	if got := stats["total_nodes"]; got != 2 {
		t.Errorf("total_nodes = %v, want 2", got)
	}
	perNode, ok := stats["capabilities_per_node"].(map[string]int)
	if !ok {
		t.Fatal("capabilities_per_node missing from stats")
	}
	if perNode["node-a"] != 2 || perNode["node-b"] != 1 {
		t.Errorf("capabilities_per_node = %v, want node-a:2 node-b:1", perNode)
	}
}

func TestConcurrentAccess(t *testing.T) {
	dir := NewMemoryDirectory()
	dir.UpsertMany([]domain.CapabilityRecord{
		fresh("node-a:chat", "node-a"),
		fresh("node-b:vision", "node-b"),
	})

	var wg sync.WaitGroup

	// Concurrent reads
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = dir.GetAllCapabilities()
			_ = dir.Stats()
		}()
	}

	// Concurrent writes
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dir.Upsert(fresh("node-a:chat", "node-a"))
			_ = dir.PruneExpired(time.Now())
		}()
	}

	wg.Wait()

	if dir.Count() != 2 {
		t.Errorf("Count() after concurrent access = %v, want 2", dir.Count())
	}
}
