// SPDX-License-Identifier: GPL-3.0-only

package quota

import (
	"fmt"
	"testing"
	"time"

	"brigh-server/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := conn.AutoMigrate(&models.UsageCounter{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return conn
}

func TestDayIsUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	// 01:00 on the 2nd in UTC+10 is still the 1st in UTC.
	local := time.Date(2026, 3, 2, 1, 0, 0, 0, loc)

	if got := Day(local); got != "2026-03-01" {
		t.Errorf("Expected day 2026-03-01, got %s", got)
	}
}

func TestConsumeUnderLimit(t *testing.T) {
	conn := newTestDB(t)
	limit := uint(3)

	for i := int64(1); i <= 3; i++ {
		decision, err := Consume(conn, 1, "2026-03-01", &limit)
		if err != nil {
			t.Fatalf("Consume failed: %v", err)
		}
		if !decision.Allowed {
			t.Errorf("Request %d should be allowed", i)
		}
		if decision.Used != i {
			t.Errorf("Expected used %d, got %d", i, decision.Used)
		}
		if decision.Remaining == nil || *decision.Remaining != int64(limit)-i {
			t.Errorf("Expected remaining %d, got %v", int64(limit)-i, decision.Remaining)
		}
	}
}

func TestConsumeDeniedAtCeilingDoesNotIncrement(t *testing.T) {
	conn := newTestDB(t)
	limit := uint(2)

	for i := 0; i < 2; i++ {
		if _, err := Consume(conn, 1, "2026-03-01", &limit); err != nil {
			t.Fatalf("Consume failed: %v", err)
		}
	}

	for i := 0; i < 3; i++ {
		decision, err := Consume(conn, 1, "2026-03-01", &limit)
		if err != nil {
			t.Fatalf("Consume failed: %v", err)
		}
		if decision.Allowed {
			t.Error("Request over the ceiling should be denied")
		}
		if decision.Used != int64(limit) {
			t.Errorf("Denied request must not increment the counter, got used=%d", decision.Used)
		}
		if decision.Remaining == nil || *decision.Remaining != 0 {
			t.Errorf("Expected remaining 0, got %v", decision.Remaining)
		}
	}

	used, err := UsedToday(conn, 1, "2026-03-01")
	if err != nil {
		t.Fatalf("UsedToday failed: %v", err)
	}
	if used != int64(limit) {
		t.Errorf("Expected stored count %d, got %d", limit, used)
	}
}

func TestConsumeNewDayResetsCounter(t *testing.T) {
	conn := newTestDB(t)
	limit := uint(1)

	if _, err := Consume(conn, 1, "2026-03-01", &limit); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	decision, err := Consume(conn, 1, "2026-03-01", &limit)
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if decision.Allowed {
		t.Error("Second request on the same day should be denied")
	}

	decision, err = Consume(conn, 1, "2026-03-02", &limit)
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if !decision.Allowed {
		t.Error("First request of a new day should be allowed")
	}
	if decision.Used != 1 {
		t.Errorf("Expected used 1 on the new day, got %d", decision.Used)
	}
}

func TestConsumeKeysAreIndependent(t *testing.T) {
	conn := newTestDB(t)
	limit := uint(1)

	if _, err := Consume(conn, 1, "2026-03-01", &limit); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}

	decision, err := Consume(conn, 2, "2026-03-01", &limit)
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if !decision.Allowed {
		t.Error("A different key must have its own counter")
	}
}

func TestConsumeUnlimitedStillCounts(t *testing.T) {
	conn := newTestDB(t)

	for i := int64(1); i <= 5; i++ {
		decision, err := Consume(conn, 1, "2026-03-01", nil)
		if err != nil {
			t.Fatalf("Consume failed: %v", err)
		}
		if !decision.Allowed {
			t.Errorf("Request %d with no ceiling should be allowed", i)
		}
		if decision.Used != i {
			t.Errorf("Expected used %d, got %d", i, decision.Used)
		}
		if decision.Remaining != nil {
			t.Errorf("Expected nil remaining for unlimited plan, got %v", decision.Remaining)
		}
	}
}

func TestUsedTodayWithoutRequests(t *testing.T) {
	conn := newTestDB(t)

	used, err := UsedToday(conn, 1, "2026-03-01")
	if err != nil {
		t.Fatalf("UsedToday failed: %v", err)
	}
	if used != 0 {
		t.Errorf("Expected 0 for a key with no requests, got %d", used)
	}
}
