package collaborators_test

import (
	"context"
	"errors"
	"testing"

	"augenblick-backend/internal/collaborators"
	"augenblick-backend/internal/documents"
	"augenblick-backend/internal/email"
)

type fakeMailer struct {
	sent      []email.Invitation
	delivered bool
	err       error
}

func (m *fakeMailer) Send(ctx context.Context, inv email.Invitation) (bool, error) {
	m.sent = append(m.sent, inv)
	return m.delivered, m.err
}

var owner = documents.Identity{ID: "user-1", DisplayName: "Ada Lovelace", Email: "ada@example.com"}

func seed(t *testing.T, repo *documents.MemoryRepo) {
	t.Helper()
	err := repo.Create(context.Background(), documents.Document{
		ID:         "doc-1",
		OwnerID:    owner.ID,
		OwnerName:  owner.DisplayName,
		OwnerEmail: owner.Email,
		Title:      "Meeting Notes",
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestAddGrantsAccessAndNotifies(t *testing.T) {
	repo := documents.NewMemoryRepo(documents.NewBroker())
	mailer := &fakeMailer{delivered: true}
	svc := collaborators.NewService(repo, mailer)
	ctx := context.Background()
	seed(t, repo)

	notified, err := svc.Add(ctx, "doc-1", owner, " Grace@Example.com ")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !notified {
		t.Fatalf("expected notified=true")
	}

	doc, _ := repo.Get(ctx, "doc-1")
	if len(doc.Collaborators) != 1 || doc.Collaborators[0] != "grace@example.com" {
		t.Fatalf("expected normalized email in collaborator set, got %v", doc.Collaborators)
	}
	if !documents.CanAccess(doc, "user-2", "grace@example.com") {
		t.Fatalf("collaborator should gain access immediately")
	}

	if len(mailer.sent) != 1 {
		t.Fatalf("expected one invitation, got %d", len(mailer.sent))
	}
	inv := mailer.sent[0]
	if inv.ToEmail != "grace@example.com" || inv.FromName != owner.DisplayName || inv.DocumentTitle != "Meeting Notes" {
		t.Fatalf("unexpected invitation: %+v", inv)
	}
}

func TestAddRejectsSelf(t *testing.T) {
	repo := documents.NewMemoryRepo(documents.NewBroker())
	svc := collaborators.NewService(repo, &fakeMailer{})
	seed(t, repo)

	_, err := svc.Add(context.Background(), "doc-1", owner, "ADA@example.com")
	if !errors.Is(err, collaborators.ErrSelfCollaborator) {
		t.Fatalf("expected ErrSelfCollaborator, got %v", err)
	}
}

func TestAddRejectsDuplicate(t *testing.T) {
	repo := documents.NewMemoryRepo(documents.NewBroker())
	mailer := &fakeMailer{delivered: true}
	svc := collaborators.NewService(repo, mailer)
	ctx := context.Background()
	seed(t, repo)

	if _, err := svc.Add(ctx, "doc-1", owner, "grace@example.com"); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if _, err := svc.Add(ctx, "doc-1", owner, "GRACE@example.com"); !errors.Is(err, collaborators.ErrAlreadyCollaborator) {
		t.Fatalf("expected ErrAlreadyCollaborator for duplicate, got %v", err)
	}

	if len(mailer.sent) != 1 {
		t.Fatalf("rejected adds must not send email, got %d sends", len(mailer.sent))
	}
}

func TestAddOwnerOnly(t *testing.T) {
	repo := documents.NewMemoryRepo(documents.NewBroker())
	svc := collaborators.NewService(repo, &fakeMailer{delivered: true})
	ctx := context.Background()
	seed(t, repo)

	if _, err := svc.Add(ctx, "doc-1", owner, "grace@example.com"); err != nil {
		t.Fatalf("owner add: %v", err)
	}

	// A collaborator can read the document but cannot manage sharing.
	grace := documents.Identity{ID: "user-2", DisplayName: "Grace", Email: "grace@example.com"}
	if _, err := svc.Add(ctx, "doc-1", grace, "eve@example.com"); !errors.Is(err, documents.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied for non-owner add, got %v", err)
	}
	if err := svc.Remove(ctx, "doc-1", grace, "grace@example.com"); !errors.Is(err, documents.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied for non-owner remove, got %v", err)
	}
}

func TestAddFailedNotificationKeepsGrant(t *testing.T) {
	repo := documents.NewMemoryRepo(documents.NewBroker())
	mailer := &fakeMailer{err: errors.New("smtp down")}
	svc := collaborators.NewService(repo, mailer)
	ctx := context.Background()
	seed(t, repo)

	notified, err := svc.Add(ctx, "doc-1", owner, "grace@example.com")
	if err != nil {
		t.Fatalf("Add must not fail on notification error: %v", err)
	}
	if notified {
		t.Fatalf("expected notified=false")
	}

	doc, _ := repo.Get(ctx, "doc-1")
	if len(doc.Collaborators) != 1 {
		t.Fatalf("grant must stand despite notification failure")
	}
}

func TestAddDeniedForStranger(t *testing.T) {
	repo := documents.NewMemoryRepo(documents.NewBroker())
	svc := collaborators.NewService(repo, &fakeMailer{})
	seed(t, repo)

	stranger := documents.Identity{ID: "user-9", Email: "eve@example.com"}
	_, err := svc.Add(context.Background(), "doc-1", stranger, "grace@example.com")
	if !errors.Is(err, documents.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestRemoveRevokesAccessIdempotently(t *testing.T) {
	repo := documents.NewMemoryRepo(documents.NewBroker())
	svc := collaborators.NewService(repo, &fakeMailer{delivered: true})
	ctx := context.Background()
	seed(t, repo)

	if _, err := svc.Add(ctx, "doc-1", owner, "grace@example.com"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.Remove(ctx, "doc-1", owner, "grace@example.com"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	doc, _ := repo.Get(ctx, "doc-1")
	if documents.CanAccess(doc, "user-2", "grace@example.com") {
		t.Fatalf("expected access revoked after remove")
	}

	// Removing an absent email succeeds.
	if err := svc.Remove(ctx, "doc-1", owner, "grace@example.com"); err != nil {
		t.Fatalf("repeat remove: %v", err)
	}
}
