package presence

import (
	"context"
	"errors"
	"time"

	"augenblick-backend/internal/documents"
	"augenblick-backend/internal/shared/metrics"
)

const (
	// HeartbeatInterval is how often connected editors refresh their record.
	HeartbeatInterval = 30 * time.Second
	// ActivityWindow is how long a record counts as active after its last
	// heartbeat. Stale records are filtered on read, never swept.
	ActivityWindow = 5 * time.Minute
)

// Store is the slice of the document store presence needs.
type Store interface {
	Get(ctx context.Context, id string) (documents.Document, error)
	SetActiveUsers(ctx context.Context, id string, users []documents.PresenceRecord) error
}

// Service maintains the advisory active-user list on each document. Presence
// uses read-modify-write over the whole array; concurrent heartbeats can lose
// an update, which the next heartbeat repairs within 30 seconds.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// Touch records the user as active on the document, replacing any existing
// record with the same user id in place. Touching a missing document is a
// no-op rather than an error: presence must never fail an edit session.
func (s *Service) Touch(ctx context.Context, docID string, user documents.Identity) error {
	doc, err := s.store.Get(ctx, docID)
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			return nil
		}
		return err
	}

	record := documents.PresenceRecord{
		UserID:       user.ID,
		DisplayName:  user.DisplayName,
		PhotoURL:     user.PhotoURL,
		LastActiveAt: s.now(),
	}

	replaced := false
	users := make([]documents.PresenceRecord, 0, len(doc.ActiveUsers)+1)
	for _, existing := range doc.ActiveUsers {
		if existing.UserID == user.ID {
			users = append(users, record)
			replaced = true
			continue
		}
		users = append(users, existing)
	}
	if !replaced {
		users = append(users, record)
	}

	if err := s.store.SetActiveUsers(ctx, docID, users); err != nil {
		return err
	}
	metrics.IncHeartbeat()
	return nil
}

// Leave removes the user's record immediately so departures do not linger for
// the full activity window. Leaving without a record is a no-op.
func (s *Service) Leave(ctx context.Context, docID, userID string) error {
	doc, err := s.store.Get(ctx, docID)
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			return nil
		}
		return err
	}

	users := make([]documents.PresenceRecord, 0, len(doc.ActiveUsers))
	for _, existing := range doc.ActiveUsers {
		if existing.UserID != userID {
			users = append(users, existing)
		}
	}
	if len(users) == len(doc.ActiveUsers) {
		return nil
	}
	return s.store.SetActiveUsers(ctx, docID, users)
}

// Active filters a presence array down to records inside the activity window.
// Pure so every read path applies the same eviction.
func Active(records []documents.PresenceRecord, now time.Time) []documents.PresenceRecord {
	out := make([]documents.PresenceRecord, 0, len(records))
	for _, record := range records {
		if now.Sub(record.LastActiveAt) < ActivityWindow {
			out = append(out, record)
		}
	}
	return out
}
