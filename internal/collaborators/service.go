package collaborators

import (
	"context"
	"errors"
	"strings"

	"augenblick-backend/internal/documents"
	"augenblick-backend/internal/email"
	"augenblick-backend/internal/shared/telemetry"
)

var (
	// ErrSelfCollaborator rejects sharing a document with yourself.
	ErrSelfCollaborator = errors.New("cannot add yourself as a collaborator")
	// ErrAlreadyCollaborator rejects emails already in the collaborator set.
	ErrAlreadyCollaborator = errors.New("already a collaborator")
)

// Store is the slice of the document store sharing needs.
type Store interface {
	Get(ctx context.Context, id string) (documents.Document, error)
	AddCollaborator(ctx context.Context, id, email string) error
	RemoveCollaborator(ctx context.Context, id, email string) error
}

// Mailer sends the share notification. Delivery is best effort.
type Mailer interface {
	Send(ctx context.Context, inv email.Invitation) (bool, error)
}

// Service manages the collaborator set of a document. Membership is by email
// and grants full read-write access immediately; the email notification that
// follows a successful add never affects the grant.
type Service struct {
	store  Store
	mailer Mailer
}

func NewService(store Store, mailer Mailer) *Service {
	return &Service{store: store, mailer: mailer}
}

// Add grants collaboratorEmail access to the document and notifies them. The
// returned bool reports whether the notification was delivered; the grant
// stands either way.
func (s *Service) Add(ctx context.Context, docID string, requester documents.Identity, collaboratorEmail string) (bool, error) {
	collaboratorEmail = strings.ToLower(strings.TrimSpace(collaboratorEmail))
	if collaboratorEmail == "" || !strings.Contains(collaboratorEmail, "@") {
		return false, documents.ErrInvalidInput
	}

	doc, err := s.store.Get(ctx, docID)
	if err != nil {
		return false, err
	}
	// Only the owner manages the collaborator set.
	if doc.OwnerID != requester.ID {
		return false, documents.ErrAccessDenied
	}
	if strings.EqualFold(collaboratorEmail, requester.Email) {
		return false, ErrSelfCollaborator
	}
	for _, existing := range doc.Collaborators {
		if strings.EqualFold(existing, collaboratorEmail) {
			return false, ErrAlreadyCollaborator
		}
	}

	if err := s.store.AddCollaborator(ctx, docID, collaboratorEmail); err != nil {
		return false, err
	}

	notified := false
	if s.mailer != nil {
		delivered, err := s.mailer.Send(ctx, email.Invitation{
			ToEmail:       collaboratorEmail,
			FromName:      requester.DisplayName,
			DocumentTitle: doc.Title,
		})
		if err != nil {
			telemetry.Warn("collaborator notification failed", map[string]any{
				"documentId": docID,
				"to":         collaboratorEmail,
				"error":      err.Error(),
			})
		}
		notified = delivered
	}
	return notified, nil
}

// Remove revokes access for the email. Removing an absent email succeeds; the
// revocation takes effect on the collaborator's next access check.
func (s *Service) Remove(ctx context.Context, docID string, requester documents.Identity, collaboratorEmail string) error {
	collaboratorEmail = strings.ToLower(strings.TrimSpace(collaboratorEmail))
	if collaboratorEmail == "" {
		return documents.ErrInvalidInput
	}

	doc, err := s.store.Get(ctx, docID)
	if err != nil {
		return err
	}
	if doc.OwnerID != requester.ID {
		return documents.ErrAccessDenied
	}
	return s.store.RemoveCollaborator(ctx, docID, collaboratorEmail)
}
