package database

import (
	"context"
	"testing"

	"gatehouse/internal/domain"
)

func TestCreateBlockedIPIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first, created, err := CreateBlockedIP(ctx, "203.0.113.9", "abuse")
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	if !created {
		t.Fatal("first create should report created")
	}
	if first.ID == 0 {
		t.Fatal("created entry should have an ID")
	}

	second, created, err := CreateBlockedIP(ctx, "203.0.113.9", "different reason")
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if created {
		t.Fatal("second create should not report created")
	}
	if second.ID != first.ID {
		t.Fatalf("second create returned ID %d, want existing %d", second.ID, first.ID)
	}
	if second.Reason != "abuse" {
		t.Fatalf("existing reason overwritten: %q", second.Reason)
	}

	var count int64
	if err := db.Model(&domain.BlockedIP{}).Where("ip = ?", "203.0.113.9").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("entry count = %d, want 1", count)
	}
}

func TestIsIPBlocked(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	blocked, err := IsIPBlocked(ctx, "203.0.113.9")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if blocked {
		t.Fatal("unknown IP reported blocked")
	}

	if _, _, err := CreateBlockedIP(ctx, "203.0.113.9", ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	blocked, err = IsIPBlocked(ctx, "203.0.113.9")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !blocked {
		t.Fatal("blocked IP reported unblocked")
	}
}

func TestDeleteBlockedIP(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	removed, err := DeleteBlockedIP(ctx, "203.0.113.9")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed {
		t.Fatal("delete of missing entry should report false")
	}

	if _, _, err := CreateBlockedIP(ctx, "203.0.113.9", ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	removed, err = DeleteBlockedIP(ctx, "203.0.113.9")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !removed {
		t.Fatal("delete of existing entry should report true")
	}

	blocked, err := IsIPBlocked(ctx, "203.0.113.9")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if blocked {
		t.Fatal("deleted IP still reported blocked")
	}
}
