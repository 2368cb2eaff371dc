package documents

import (
	"context"
	"time"
)

// Repo is the per-document store surface: point reads and writes, partial
// updates, atomic set-style mutations on the collaborator list, whole-array
// presence overwrites, and a live-query subscription.
type Repo interface {
	Get(ctx context.Context, id string) (Document, error)
	// Create inserts a new document and fails with ErrExists if the id is taken.
	Create(ctx context.Context, doc Document) error
	// Update merges only the non-nil fields into the stored document.
	Update(ctx context.Context, id string, fields UpdateFields) error
	// AddCollaborator is an atomic, idempotent set-add.
	AddCollaborator(ctx context.Context, id, email string) error
	// RemoveCollaborator is an atomic, idempotent set-remove.
	RemoveCollaborator(ctx context.Context, id, email string) error
	// SetActiveUsers overwrites the presence array wholesale. Callers perform
	// read-modify-write; concurrent writers can lose updates, which is
	// accepted for advisory presence.
	SetActiveUsers(ctx context.Context, id string, users []PresenceRecord) error
	ListByOwner(ctx context.Context, ownerID string) ([]Document, error)
	// Watch subscribes to the live query for one document. Every write
	// produces a full snapshot on the channel. The returned cancel func stops
	// delivery and releases the subscription.
	Watch(id string) (<-chan Document, func())
}

// UpdateFields names the fields a partial update merges. Nil fields are left
// untouched.
type UpdateFields struct {
	Content      *string
	Title        *string
	LastEditedBy *string
	UpdatedAt    *time.Time
}
