package exports_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"augenblick-backend/internal/documents"
	"augenblick-backend/internal/exports"
	"augenblick-backend/internal/shared/storage/object/local"
)

var (
	owner    = documents.Identity{ID: "user-1", DisplayName: "Ada", Email: "ada@example.com"}
	stranger = documents.Identity{ID: "user-9", DisplayName: "Eve", Email: "eve@example.com"}
)

func TestExportWritesEscapedHTML(t *testing.T) {
	repo := documents.NewMemoryRepo(documents.NewBroker())
	docs := documents.NewService(repo, nil)
	store := local.New(t.TempDir())
	svc := exports.NewService(docs, store)
	ctx := context.Background()

	if _, err := docs.Save(ctx, "doc-1", owner, "<p>body</p>"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := docs.UpdateTitle(ctx, "doc-1", owner, "Q3 <Plan>"); err != nil {
		t.Fatalf("title: %v", err)
	}

	result, err := svc.Export(ctx, "doc-1", owner)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.HasPrefix(result.StorageKey, "exports/") || !strings.HasSuffix(result.StorageKey, ".html") {
		t.Fatalf("unexpected storage key %q", result.StorageKey)
	}
	if result.SizeBytes <= 0 {
		t.Fatalf("expected positive size")
	}

	reader, err := store.Open(ctx, result.StorageKey)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer reader.Close()
	body, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}

	content := string(body)
	if !strings.Contains(content, "<title>Q3 &lt;Plan&gt;</title>") {
		t.Fatalf("title must be escaped, got: %s", content)
	}
	if !strings.Contains(content, "<p>body</p>") {
		t.Fatalf("editor markup must be embedded as-is, got: %s", content)
	}
}

func TestExportDeniedForStranger(t *testing.T) {
	repo := documents.NewMemoryRepo(documents.NewBroker())
	docs := documents.NewService(repo, nil)
	store := local.New(t.TempDir())
	svc := exports.NewService(docs, store)
	ctx := context.Background()

	if _, err := docs.Save(ctx, "doc-1", owner, "secret"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := svc.Export(ctx, "doc-1", stranger); !errors.Is(err, documents.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}
