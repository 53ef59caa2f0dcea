package cache

import (
	"testing"
	"time"

	"ledger/internal/core"
)

func TestSummaryCacheGetSet(t *testing.T) {
	c := NewSummaryCache(4, time.Minute)

	if _, ok := c.Get("2025-03"); ok {
		t.Fatal("Get on empty cache returned a hit")
	}

	want := core.MonthSummary{Month: "2025-03", Income: core.Money{Cents: 500000}, Expense: core.Money{Cents: 120000}, Balance: core.Money{Cents: 380000}}
	c.Set("2025-03", want)

	got, ok := c.Get("2025-03")
	if !ok {
		t.Fatal("Get after Set missed")
	}
	if got != want {
		t.Errorf("Get = %+v, want %+v", got, want)
	}
}

func TestSummaryCacheTTLExpiry(t *testing.T) {
	c := NewSummaryCache(4, 10*time.Millisecond)
	c.Set("2025-03", core.MonthSummary{Month: "2025-03"})

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("2025-03"); ok {
		t.Error("expired entry still served")
	}
	if n := c.CleanExpired(); n != 0 {
		// Get already evicted the expired entry.
		t.Errorf("CleanExpired = %d, want 0", n)
	}
}

func TestSummaryCacheEvictsOldest(t *testing.T) {
	c := NewSummaryCache(2, time.Minute)
	c.Set("2025-01", core.MonthSummary{Month: "2025-01"})
	c.Set("2025-02", core.MonthSummary{Month: "2025-02"})

	// Touch January so February becomes the eviction candidate.
	c.Get("2025-01")
	c.Set("2025-03", core.MonthSummary{Month: "2025-03"})

	if _, ok := c.Get("2025-02"); ok {
		t.Error("least recently used month survived eviction")
	}
	if _, ok := c.Get("2025-01"); !ok {
		t.Error("recently used month was evicted")
	}
	if c.Size() != 2 {
		t.Errorf("Size = %d, want 2", c.Size())
	}
}

func TestSummaryCacheInvalidateMonth(t *testing.T) {
	c := NewSummaryCache(4, time.Minute)
	c.Set("2025-03", core.MonthSummary{Month: "2025-03"})
	c.Set("2025-04", core.MonthSummary{Month: "2025-04"})

	c.InvalidateMonth("2025-03")

	if _, ok := c.Get("2025-03"); ok {
		t.Error("invalidated month still cached")
	}
	if _, ok := c.Get("2025-04"); !ok {
		t.Error("unrelated month was invalidated")
	}

	c.InvalidateAll()
	if c.Size() != 0 {
		t.Errorf("Size after InvalidateAll = %d, want 0", c.Size())
	}
}
