package instance

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/vietcloud/vpshop/compute"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestRatesBetween(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	prev := compute.LiveStats{
		CPUTimeNS:      1_000_000_000,
		MemoryUsedKB:   512,
		MemoryTotalKB:  2048,
		NetRxBytes:     1000,
		NetTxBytes:     500,
		DiskReadBytes:  4096,
		DiskWriteBytes: 0,
		Timestamp:      t0,
	}
	cur := compute.LiveStats{
		CPUTimeNS:      6_000_000_000,
		MemoryUsedKB:   1024,
		MemoryTotalKB:  2048,
		NetRxBytes:     11000,
		NetTxBytes:     500,
		DiskReadBytes:  8192,
		DiskWriteBytes: 2048,
		Timestamp:      t0.Add(10 * time.Second),
	}

	r, err := RatesBetween(prev, cur)
	if err != nil {
		t.Fatal(err)
	}

	// 5s of cpu time over a 10s window.
	if !near(r.CPUPercent, 50) {
		t.Errorf("expected cpu 50%%, but got %f", r.CPUPercent)
	}
	if !near(r.MemoryPercent, 50) {
		t.Errorf("expected memory 50%%, but got %f", r.MemoryPercent)
	}
	if !near(r.NetRxBps, 1000) {
		t.Errorf("expected rx 1000 Bps, but got %f", r.NetRxBps)
	}
	if !near(r.NetTxBps, 0) {
		t.Errorf("expected tx 0 Bps, but got %f", r.NetTxBps)
	}
	if !near(r.DiskReadBps, 409.6) {
		t.Errorf("expected disk read 409.6 Bps, but got %f", r.DiskReadBps)
	}
	if !near(r.DiskWriteBps, 204.8) {
		t.Errorf("expected disk write 204.8 Bps, but got %f", r.DiskWriteBps)
	}
}

func TestRatesBetweenCounterReset(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	prev := compute.LiveStats{NetRxBytes: 1_000_000, Timestamp: t0}
	cur := compute.LiveStats{NetRxBytes: 100, Timestamp: t0.Add(5 * time.Second)}

	r, err := RatesBetween(prev, cur)
	if err != nil {
		t.Fatal(err)
	}

	// A reboot resets the counters; the rate clamps to zero instead of
	// going negative.
	if r.NetRxBps != 0 {
		t.Errorf("expected rx 0 Bps after a counter reset, but got %f", r.NetRxBps)
	}
}

func TestRatesBetweenNoInterval(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	prev := compute.LiveStats{Timestamp: t0}
	cur := compute.LiveStats{Timestamp: t0}

	if _, err := RatesBetween(prev, cur); !errors.Is(err, ErrNoInterval) {
		t.Errorf("expected ErrNoInterval, but got %v", err)
	}

	cur.Timestamp = t0.Add(-time.Second)
	if _, err := RatesBetween(prev, cur); !errors.Is(err, ErrNoInterval) {
		t.Errorf("expected ErrNoInterval for reversed samples, but got %v", err)
	}
}

func TestStatsCache(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cache := NewStatsCache()

	first := compute.LiveStats{NetRxBytes: 1000, Timestamp: t0}
	if _, ok := cache.Observe("vm-1", first); ok {
		t.Fatal("the first sample must not yield rates")
	}

	second := compute.LiveStats{NetRxBytes: 3000, Timestamp: t0.Add(2 * time.Second)}
	r, ok := cache.Observe("vm-1", second)
	if !ok {
		t.Fatal("expected rates from the second sample")
	}
	if !near(r.NetRxBps, 1000) {
		t.Errorf("expected rx 1000 Bps, but got %f", r.NetRxBps)
	}

	// Another VM keeps its own baseline.
	if _, ok := cache.Observe("vm-2", second); ok {
		t.Error("vm-2 has no baseline yet")
	}

	cache.Forget("vm-1")
	third := compute.LiveStats{NetRxBytes: 4000, Timestamp: t0.Add(3 * time.Second)}
	if _, ok := cache.Observe("vm-1", third); ok {
		t.Error("a forgotten vm has no baseline")
	}
}
