package exports

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"augenblick-backend/internal/documents"
	"augenblick-backend/internal/shared/storage/object"
	"augenblick-backend/internal/shared/util"
)

// Service renders documents to standalone HTML files in the object store so
// they can be downloaded or archived outside the editor.
type Service struct {
	docs  *documents.Service
	store object.ObjectStore
	now   func() time.Time
}

func NewService(docs *documents.Service, store object.ObjectStore) *Service {
	return &Service{docs: docs, store: store, now: func() time.Time { return time.Now().UTC() }}
}

// Result describes a completed export.
type Result struct {
	StorageKey string `json:"storageKey"`
	SizeBytes  int64  `json:"sizeBytes"`
}

// Export renders the document and writes it under a per-user prefix. Access
// follows the same owner-or-collaborator rule as reads.
func (s *Service) Export(ctx context.Context, docID string, user documents.Identity) (Result, error) {
	doc, err := s.docs.Load(ctx, docID, user)
	if err != nil {
		return Result{}, err
	}

	fileName, err := util.SanitizeFileName(fmt.Sprintf("%d_%s.html", s.now().UnixMilli(), doc.Title))
	if err != nil {
		fileName = fmt.Sprintf("%d.html", s.now().UnixMilli())
	}
	storageKey := fmt.Sprintf("exports/%s/%s/%s", util.HashUserKey(user.ID), doc.ID, fileName)

	body := renderHTML(doc)
	size, err := s.store.Put(ctx, storageKey, "text/html; charset=utf-8", strings.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("store export: %w", err)
	}
	return Result{StorageKey: storageKey, SizeBytes: size}, nil
}

// renderHTML wraps the stored editor markup in a minimal document shell. The
// content is editor-produced HTML and is embedded as-is; only the title needs
// escaping.
func renderHTML(doc documents.Document) string {
	title := html.EscapeString(doc.Title)
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString("<title>" + title + "</title>\n</head>\n<body>\n")
	b.WriteString("<h1>" + title + "</h1>\n")
	b.WriteString(doc.Content)
	b.WriteString("\n</body>\n</html>\n")
	return b.String()
}
