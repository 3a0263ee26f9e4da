package memory

import (
	"sync"
	"time"

	"mask-mender/internal/logger"
)

// Tracker records live OpenCV allocations made through safe.Mat. It
// satisfies safe.MemoryTracker.
type Tracker struct {
	allocations map[uint64]*AllocationRecord
	mu          sync.RWMutex
	stats       Stats
	logger      logger.Logger
}

type AllocationRecord struct {
	Tag       string
	CreatedAt time.Time
	Size      int64
}

type Stats struct {
	TotalAllocated int64
	TotalReleased  int64
	ActiveMats     int64
	PeakBytes      int64
}

// LiveBytes is the estimated size of all Mats not yet closed.
func (s Stats) LiveBytes() int64 {
	return s.TotalAllocated - s.TotalReleased
}

func NewTracker(log logger.Logger) *Tracker {
	return &Tracker{
		allocations: make(map[uint64]*AllocationRecord),
		logger:      log,
	}
}

func (t *Tracker) TrackAllocation(id uint64, size int64, tag string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.allocations[id] = &AllocationRecord{
		Tag:       tag,
		CreatedAt: time.Now(),
		Size:      size,
	}
	t.stats.TotalAllocated += size
	t.stats.ActiveMats++

	if live := t.stats.LiveBytes(); live > t.stats.PeakBytes {
		t.stats.PeakBytes = live
	}
}

func (t *Tracker) TrackDeallocation(id uint64, tag string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	record, exists := t.allocations[id]
	if !exists {
		t.logger.Warning("MemoryTracker", "release of untracked Mat", map[string]interface{}{
			"id":  id,
			"tag": tag,
		})
		return
	}

	delete(t.allocations, id)
	t.stats.TotalReleased += record.Size
	t.stats.ActiveMats--
}

func (t *Tracker) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stats
}

// Shutdown logs any Mats still alive. It does not close them; their owners
// are shut down before the tracker.
func (t *Tracker) Shutdown() {
	t.mu.RLock()
	defer t.mu.RUnlock()

	tags := make(map[string]int)
	for _, record := range t.allocations {
		tags[record.Tag]++
	}

	fields := map[string]interface{}{
		"active_mats": t.stats.ActiveMats,
		"peak_bytes":  t.stats.PeakBytes,
	}
	if len(tags) > 0 {
		fields["leaked_tags"] = tags
		t.logger.Warning("MemoryTracker", "Mats still alive at shutdown", fields)
		return
	}
	t.logger.Debug("MemoryTracker", "all Mats released", fields)
}
