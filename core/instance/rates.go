package instance

import (
	"errors"
	"sync"

	"github.com/vietcloud/vpshop/compute"
)

// Rates are per-second figures derived from two consecutive cumulative
// samples. The hypervisor only exports counters; turning them into
// chartable rates happens here.
type Rates struct {
	CPUPercent    float64 `json:"cpuPercent"`
	MemoryPercent float64 `json:"memoryPercent"`
	NetRxBps      float64 `json:"netRxBps"`
	NetTxBps      float64 `json:"netTxBps"`
	DiskReadBps   float64 `json:"diskReadBps"`
	DiskWriteBps  float64 `json:"diskWriteBps"`
}

var ErrNoInterval = errors.New("samples do not span a positive interval")

// delta clamps counter resets to zero instead of reporting negative
// rates.
func delta(prev, cur int64) float64 {
	if cur < prev {
		return 0
	}
	return float64(cur - prev)
}

// RatesBetween computes per-second rates between two samples.
func RatesBetween(prev, cur compute.LiveStats) (Rates, error) {
	dt := cur.Timestamp.Sub(prev.Timestamp)
	if dt <= 0 {
		return Rates{}, ErrNoInterval
	}

	secs := dt.Seconds()

	r := Rates{
		CPUPercent:   delta(prev.CPUTimeNS, cur.CPUTimeNS) / float64(dt.Nanoseconds()) * 100,
		NetRxBps:     delta(prev.NetRxBytes, cur.NetRxBytes) / secs,
		NetTxBps:     delta(prev.NetTxBytes, cur.NetTxBytes) / secs,
		DiskReadBps:  delta(prev.DiskReadBytes, cur.DiskReadBytes) / secs,
		DiskWriteBps: delta(prev.DiskWriteBytes, cur.DiskWriteBytes) / secs,
	}
	if cur.MemoryTotalKB > 0 {
		r.MemoryPercent = float64(cur.MemoryUsedKB) / float64(cur.MemoryTotalKB) * 100
	}

	return r, nil
}

// StatsCache remembers the previous live sample per VM so a single
// fetch can be turned into rates. The first sample for a VM yields
// counters only.
type StatsCache struct {
	mu   sync.Mutex
	last map[string]compute.LiveStats
}

func NewStatsCache() *StatsCache {
	return &StatsCache{last: make(map[string]compute.LiveStats)}
}

// Observe stores the sample and returns rates against the previous
// one, with ok=false on the first observation.
func (c *StatsCache) Observe(vmID string, cur compute.LiveStats) (Rates, bool) {
	c.mu.Lock()
	prev, seen := c.last[vmID]
	c.last[vmID] = cur
	c.mu.Unlock()

	if !seen {
		return Rates{}, false
	}

	r, err := RatesBetween(prev, cur)
	if err != nil {
		return Rates{}, false
	}

	return r, true
}

// Forget drops the cached sample, e.g. when an instance is stopped.
func (c *StatsCache) Forget(vmID string) {
	c.mu.Lock()
	delete(c.last, vmID)
	c.mu.Unlock()
}
