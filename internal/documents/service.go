package documents

import (
	"context"
	"errors"
	"time"

	"augenblick-backend/internal/shared/metrics"
	"augenblick-backend/internal/shared/telemetry"
)

// PresenceRefresher refreshes a user's presence record as a side effect of a
// save. Failures are advisory and never fail the save.
type PresenceRefresher interface {
	Touch(ctx context.Context, docID string, user Identity) error
}

// Service owns document persistence semantics: check-then-act saves that
// create on first write, access-guarded loads, title updates and owner
// listings.
type Service struct {
	repo     Repo
	presence PresenceRefresher
	now      func() time.Time
}

func NewService(repo Repo, presence PresenceRefresher) *Service {
	return &Service{repo: repo, presence: presence, now: func() time.Time { return time.Now().UTC() }}
}

// Save persists new content under the user's name. The first save of an id
// creates the document with the saver as owner; later saves update content
// only. A concurrent create losing the race degrades to an update, so the
// second writer's content wins without surfacing an error.
func (s *Service) Save(ctx context.Context, id string, user Identity, content string) (time.Time, error) {
	if id == "" || user.ID == "" {
		return time.Time{}, ErrInvalidInput
	}

	start := time.Now()
	now := s.now()

	doc, err := s.repo.Get(ctx, id)
	switch {
	case err == nil:
		if !CanAccess(doc, user.ID, user.Email) {
			return time.Time{}, ErrAccessDenied
		}
		if err := s.updateContent(ctx, id, user, content, now); err != nil {
			return time.Time{}, err
		}
	case errors.Is(err, ErrNotFound):
		createErr := s.repo.Create(ctx, Document{
			ID:            id,
			OwnerID:       user.ID,
			OwnerName:     user.DisplayName,
			OwnerEmail:    user.Email,
			Title:         DefaultTitle,
			Content:       content,
			LastEditedBy:  user.DisplayName,
			Collaborators: []string{},
			ActiveUsers:   []PresenceRecord{},
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if errors.Is(createErr, ErrExists) {
			// Lost a create race; the document now exists, so update it.
			createErr = s.updateContent(ctx, id, user, content, now)
		}
		if createErr != nil {
			return time.Time{}, createErr
		}
	default:
		return time.Time{}, err
	}

	metrics.IncDocumentSaved()
	metrics.ObserveSaveDurationMs(float64(time.Since(start).Milliseconds()))

	if s.presence != nil {
		if err := s.presence.Touch(ctx, id, user); err != nil {
			telemetry.Warn("presence touch after save failed", map[string]any{
				"documentId": id,
				"error":      err.Error(),
			})
		}
	}
	return now, nil
}

func (s *Service) updateContent(ctx context.Context, id string, user Identity, content string, now time.Time) error {
	return s.repo.Update(ctx, id, UpdateFields{
		Content:      &content,
		LastEditedBy: &user.DisplayName,
		UpdatedAt:    &now,
	})
}

// Load returns the document if the user is its owner or a collaborator.
func (s *Service) Load(ctx context.Context, id string, user Identity) (Document, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return Document{}, err
	}
	if !CanAccess(doc, user.ID, user.Email) {
		return Document{}, ErrAccessDenied
	}
	return doc, nil
}

// UpdateTitle renames the document. The title write is independent of the
// content path and does not touch lastEditedBy.
func (s *Service) UpdateTitle(ctx context.Context, id string, user Identity, title string) error {
	if title == "" {
		return ErrInvalidInput
	}
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !CanAccess(doc, user.ID, user.Email) {
		return ErrAccessDenied
	}
	now := s.now()
	return s.repo.Update(ctx, id, UpdateFields{Title: &title, UpdatedAt: &now})
}

// List returns the documents owned by the user. Shared documents are
// reachable only by id.
func (s *Service) List(ctx context.Context, ownerID string) ([]Document, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}
