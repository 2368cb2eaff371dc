package sync

import (
	"context"
	"errors"
	"sync"
	"time"

	"augenblick-backend/internal/documents"
	"augenblick-backend/internal/presence"
	"augenblick-backend/internal/shared/metrics"
	"augenblick-backend/internal/shared/telemetry"
)

// conn is the slice of the websocket connection the session uses.
type conn interface {
	ReadJSON(v any) error
	WriteJSON(v any) error
	Close() error
}

// ClientEvent is a message from the editor.
type ClientEvent struct {
	Type      string `json:"type"`
	Content   string `json:"content,omitempty"`
	Title     string `json:"title,omitempty"`
	Selection int    `json:"selection,omitempty"`
}

// ServerEvent is a message to the editor. Content is a pointer so snapshots
// of the user's own edits can omit it entirely.
type ServerEvent struct {
	Type          string                     `json:"type"`
	DocumentID    string                     `json:"documentId,omitempty"`
	Generated     bool                       `json:"generated,omitempty"`
	Remote        bool                       `json:"remote,omitempty"`
	Content       *string                    `json:"content,omitempty"`
	RestoreOffset int                        `json:"restoreOffset,omitempty"`
	Title         string                     `json:"title,omitempty"`
	Collaborators []string                   `json:"collaborators,omitempty"`
	ActiveUsers   []documents.PresenceRecord `json:"activeUsers,omitempty"`
	IsOwner       bool                       `json:"isOwner,omitempty"`
	Status        string                     `json:"status,omitempty"`
	Message       string                     `json:"message,omitempty"`
	LastSaved     string                     `json:"lastSaved,omitempty"`
}

// Session drives one editor connection: it resolves the initial document
// state, relays store snapshots with echo suppression, persists edits, and
// keeps the user's presence record fresh for the duration.
type Session struct {
	DocID     string
	Generated bool
	User      documents.Identity
	Docs      *documents.Service
	Repo      documents.Repo
	Presence  *presence.Service
	Conn      conn
	Now       func() time.Time

	writeMu   sync.Mutex
	selection int
	selMu     sync.Mutex
}

// Run services the connection until the client disconnects or the context is
// cancelled. It always clears the user's presence record on the way out.
func (s *Session) Run(ctx context.Context) {
	if s.Now == nil {
		s.Now = func() time.Time { return time.Now().UTC() }
	}

	metrics.SyncSessionOpened()
	defer metrics.SyncSessionClosed()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Subscribe before the initial read so no write slips between them.
	snapshots, unwatch := s.Repo.Watch(s.DocID)
	defer unwatch()

	defer func() {
		// The session context is already done here; presence cleanup gets
		// its own deadline.
		leaveCtx, leaveCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer leaveCancel()
		if err := s.Presence.Leave(leaveCtx, s.DocID, s.User.ID); err != nil {
			telemetry.Warn("presence leave failed", map[string]any{
				"documentId": s.DocID,
				"error":      err.Error(),
			})
		}
	}()

	s.send(ServerEvent{Type: "init", DocumentID: s.DocID, Generated: s.Generated})

	doc, err := s.Docs.Load(ctx, s.DocID, s.User)
	switch {
	case err == nil:
		// The initial snapshot always carries content, whoever wrote last.
		event := s.snapshotEvent(doc)
		event.Remote = false
		event.Content = &doc.Content
		event.RestoreOffset = 0
		s.send(event)
	case errors.Is(err, documents.ErrNotFound):
		// New document: nothing to send, the first save creates it.
	case errors.Is(err, documents.ErrAccessDenied):
		s.send(ServerEvent{
			Type:    "access_denied",
			Message: "You don't have permission to access this document. Please ask the owner to add you as a collaborator.",
		})
		return
	default:
		telemetry.Error("initial document load failed", map[string]any{
			"documentId": s.DocID,
			"error":      err.Error(),
		})
		return
	}

	if err := s.Presence.Touch(ctx, s.DocID, s.User); err != nil {
		telemetry.Warn("presence touch failed", map[string]any{
			"documentId": s.DocID,
			"error":      err.Error(),
		})
	}

	go s.readLoop(ctx, cancel)

	heartbeat := time.NewTicker(presence.HeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			if err := s.Presence.Touch(ctx, s.DocID, s.User); err != nil {
				telemetry.Warn("presence heartbeat failed", map[string]any{
					"documentId": s.DocID,
					"error":      err.Error(),
				})
			}
		case doc, ok := <-snapshots:
			if !ok {
				return
			}
			// Revocation takes effect on the next snapshot.
			if !documents.CanAccess(doc, s.User.ID, s.User.Email) {
				s.send(ServerEvent{
					Type:    "access_denied",
					Message: "You don't have permission to access this document. Please ask the owner to add you as a collaborator.",
				})
				return
			}
			s.send(s.snapshotEvent(doc))
		}
	}
}

func (s *Session) readLoop(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()

	for {
		var event ClientEvent
		if err := s.Conn.ReadJSON(&event); err != nil {
			return
		}
		if ctx.Err() != nil {
			return
		}

		switch event.Type {
		case "edit":
			savedAt, err := s.Docs.Save(ctx, s.DocID, s.User, event.Content)
			if err != nil {
				if errors.Is(err, documents.ErrAccessDenied) {
					s.send(ServerEvent{
						Type:    "access_denied",
						Message: "You don't have permission to access this document. Please ask the owner to add you as a collaborator.",
					})
					return
				}
				s.send(ServerEvent{Type: "status", Status: "error", Message: "failed to save document"})
				continue
			}
			s.send(ServerEvent{Type: "status", Status: "saved", LastSaved: savedAt.Format(time.RFC3339)})
		case "title":
			if err := s.Docs.UpdateTitle(ctx, s.DocID, s.User, event.Title); err != nil {
				s.send(ServerEvent{Type: "status", Status: "error", Message: "failed to update title"})
				continue
			}
			s.send(ServerEvent{Type: "status", Status: "saved"})
		case "selection":
			s.selMu.Lock()
			s.selection = event.Selection
			s.selMu.Unlock()
		}
	}
}

// snapshotEvent converts a store snapshot into a wire event. Content rides
// along only when the last writer was someone else: echoing a user's own
// edit back would clobber keystrokes typed since the save.
func (s *Session) snapshotEvent(doc documents.Document) ServerEvent {
	event := ServerEvent{
		Type:          "snapshot",
		DocumentID:    doc.ID,
		Title:         doc.Title,
		Collaborators: doc.Collaborators,
		ActiveUsers:   presence.Active(doc.ActiveUsers, s.Now()),
		IsOwner:       doc.OwnerID == s.User.ID,
		LastSaved:     doc.UpdatedAt.Format(time.RFC3339),
	}
	if doc.LastEditedBy != "" && doc.LastEditedBy != s.User.DisplayName {
		s.selMu.Lock()
		offset := s.selection
		s.selMu.Unlock()

		event.Remote = true
		event.Content = &doc.Content
		event.RestoreOffset = offset
	}
	return event
}

func (s *Session) send(event ServerEvent) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.Conn.WriteJSON(event); err != nil {
		telemetry.Warn("websocket write failed", map[string]any{
			"documentId": s.DocID,
			"error":      err.Error(),
		})
	}
}
