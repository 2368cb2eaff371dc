package presence_test

import (
	"context"
	"testing"
	"time"

	"augenblick-backend/internal/documents"
	"augenblick-backend/internal/presence"
)

func seedDoc(t *testing.T, repo *documents.MemoryRepo, id string) {
	t.Helper()
	err := repo.Create(context.Background(), documents.Document{
		ID:      id,
		OwnerID: "user-1",
	})
	if err != nil {
		t.Fatalf("seed document: %v", err)
	}
}

func TestTouchAddsAndRefreshesWithoutDuplicating(t *testing.T) {
	repo := documents.NewMemoryRepo(documents.NewBroker())
	svc := presence.NewService(repo)
	ctx := context.Background()
	seedDoc(t, repo, "doc-1")

	user := documents.Identity{ID: "user-2", DisplayName: "Grace", PhotoURL: "https://example.com/g.png"}

	if err := svc.Touch(ctx, "doc-1", user); err != nil {
		t.Fatalf("first touch: %v", err)
	}
	first, _ := repo.Get(ctx, "doc-1")
	if len(first.ActiveUsers) != 1 {
		t.Fatalf("expected 1 record, got %d", len(first.ActiveUsers))
	}

	// A later heartbeat replaces the record in place.
	time.Sleep(5 * time.Millisecond)
	if err := svc.Touch(ctx, "doc-1", user); err != nil {
		t.Fatalf("second touch: %v", err)
	}
	second, _ := repo.Get(ctx, "doc-1")
	if len(second.ActiveUsers) != 1 {
		t.Fatalf("heartbeat must not duplicate records, got %d", len(second.ActiveUsers))
	}
	if !second.ActiveUsers[0].LastActiveAt.After(first.ActiveUsers[0].LastActiveAt) {
		t.Fatalf("expected heartbeat to advance lastActiveAt")
	}
}

func TestTouchMissingDocumentIsNoOp(t *testing.T) {
	repo := documents.NewMemoryRepo(documents.NewBroker())
	svc := presence.NewService(repo)

	err := svc.Touch(context.Background(), "missing", documents.Identity{ID: "user-2"})
	if err != nil {
		t.Fatalf("touch on missing document must not fail: %v", err)
	}
}

func TestLeaveRemovesRecord(t *testing.T) {
	repo := documents.NewMemoryRepo(documents.NewBroker())
	svc := presence.NewService(repo)
	ctx := context.Background()
	seedDoc(t, repo, "doc-1")

	if err := svc.Touch(ctx, "doc-1", documents.Identity{ID: "user-2", DisplayName: "Grace"}); err != nil {
		t.Fatalf("touch: %v", err)
	}
	if err := svc.Leave(ctx, "doc-1", "user-2"); err != nil {
		t.Fatalf("leave: %v", err)
	}

	doc, _ := repo.Get(ctx, "doc-1")
	if len(doc.ActiveUsers) != 0 {
		t.Fatalf("expected empty presence after leave, got %d", len(doc.ActiveUsers))
	}

	// Leaving again is a no-op.
	if err := svc.Leave(ctx, "doc-1", "user-2"); err != nil {
		t.Fatalf("repeat leave: %v", err)
	}
}

func TestActiveEvictsStaleRecordsOnRead(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	records := []documents.PresenceRecord{
		{UserID: "fresh", LastActiveAt: now.Add(-29 * time.Second)},
		{UserID: "edge", LastActiveAt: now.Add(-presence.ActivityWindow)},
		{UserID: "stale", LastActiveAt: now.Add(-6 * time.Minute)},
	}

	active := presence.Active(records, now)

	if len(active) != 1 || active[0].UserID != "fresh" {
		t.Fatalf("expected only the fresh record, got %v", active)
	}
}
