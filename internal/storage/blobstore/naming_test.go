package blobstore

import (
	"regexp"
	"sync"
	"testing"
	"time"
)

// locatorPattern — {prefix}/{yyyyMMddHHmmss}_{uuid}.pdf
var locatorPattern = regexp.MustCompile(`^generated/\d{14}_[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.pdf$`)

func TestNewLocator_Format(t *testing.T) {
	now := time.Date(2026, 8, 26, 14, 30, 5, 0, time.UTC)

	locator := NewLocator("generated", now)
	if !locatorPattern.MatchString(locator) {
		t.Errorf("локатор %q не отговаря на очаквания формат", locator)
	}

	// Timestamp компонентът отразява подаденото време в UTC
	wantPrefix := "generated/20260826143005_"
	if locator[:len(wantPrefix)] != wantPrefix {
		t.Errorf("локатор %q не започва с %q", locator, wantPrefix)
	}
}

func TestNewLocator_LocalTimeNormalizedToUTC(t *testing.T) {
	loc := time.FixedZone("EET", 2*3600)
	now := time.Date(2026, 8, 26, 16, 0, 0, 0, loc) // 14:00 UTC

	locator := NewLocator("generated", now)
	wantPrefix := "generated/20260826140000_"
	if locator[:len(wantPrefix)] != wantPrefix {
		t.Errorf("локатор %q не използва UTC timestamp (очаква се префикс %q)", locator, wantPrefix)
	}
}

func TestNewLocator_UniqueWithinSameSecond(t *testing.T) {
	// Конкурентни заявки в една и съща секунда получават различни имена
	now := time.Date(2026, 8, 26, 14, 30, 5, 0, time.UTC)

	const n = 20
	var mu sync.Mutex
	seen := make(map[string]bool, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			locator := NewLocator("generated", now)
			mu.Lock()
			defer mu.Unlock()
			if seen[locator] {
				t.Errorf("дублиран локатор: %s", locator)
			}
			seen[locator] = true
		}()
	}
	wg.Wait()

	if len(seen) != n {
		t.Errorf("уникални локатори = %d, очакват се %d", len(seen), n)
	}
}
