package documents

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repo used in development mode and tests. It
// mirrors the store semantics exactly: create fails on an existing id,
// partial updates merge non-nil fields, collaborator mutations are set-style,
// and every write publishes a snapshot to watchers.
type MemoryRepo struct {
	mu     sync.RWMutex
	docs   map[string]Document
	broker *Broker
}

func NewMemoryRepo(broker *Broker) *MemoryRepo {
	return &MemoryRepo{docs: make(map[string]Document), broker: broker}
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.docs[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return cloneDocument(doc), nil
}

func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	r.mu.Lock()
	if _, ok := r.docs[doc.ID]; ok {
		r.mu.Unlock()
		return ErrExists
	}
	stored := cloneDocument(doc)
	if stored.Collaborators == nil {
		stored.Collaborators = []string{}
	}
	if stored.ActiveUsers == nil {
		stored.ActiveUsers = []PresenceRecord{}
	}
	r.docs[doc.ID] = stored
	snapshot := cloneDocument(stored)
	r.mu.Unlock()

	r.publish(snapshot)
	return nil
}

func (r *MemoryRepo) Update(ctx context.Context, id string, fields UpdateFields) error {
	r.mu.Lock()
	doc, ok := r.docs[id]
	if !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	if fields.Content != nil {
		doc.Content = *fields.Content
	}
	if fields.Title != nil {
		doc.Title = *fields.Title
	}
	if fields.LastEditedBy != nil {
		doc.LastEditedBy = *fields.LastEditedBy
	}
	if fields.UpdatedAt != nil {
		doc.UpdatedAt = *fields.UpdatedAt
	} else {
		doc.UpdatedAt = time.Now().UTC()
	}
	r.docs[id] = doc
	snapshot := cloneDocument(doc)
	r.mu.Unlock()

	r.publish(snapshot)
	return nil
}

func (r *MemoryRepo) AddCollaborator(ctx context.Context, id, email string) error {
	r.mu.Lock()
	doc, ok := r.docs[id]
	if !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	for _, c := range doc.Collaborators {
		if c == email {
			r.mu.Unlock()
			return nil
		}
	}
	doc.Collaborators = append(append([]string{}, doc.Collaborators...), email)
	r.docs[id] = doc
	snapshot := cloneDocument(doc)
	r.mu.Unlock()

	r.publish(snapshot)
	return nil
}

func (r *MemoryRepo) RemoveCollaborator(ctx context.Context, id, email string) error {
	r.mu.Lock()
	doc, ok := r.docs[id]
	if !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	kept := make([]string, 0, len(doc.Collaborators))
	for _, c := range doc.Collaborators {
		if c != email {
			kept = append(kept, c)
		}
	}
	doc.Collaborators = kept
	r.docs[id] = doc
	snapshot := cloneDocument(doc)
	r.mu.Unlock()

	r.publish(snapshot)
	return nil
}

func (r *MemoryRepo) SetActiveUsers(ctx context.Context, id string, users []PresenceRecord) error {
	r.mu.Lock()
	doc, ok := r.docs[id]
	if !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	doc.ActiveUsers = append([]PresenceRecord{}, users...)
	r.docs[id] = doc
	snapshot := cloneDocument(doc)
	r.mu.Unlock()

	r.publish(snapshot)
	return nil
}

func (r *MemoryRepo) ListByOwner(ctx context.Context, ownerID string) ([]Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Document, 0)
	for _, doc := range r.docs {
		if doc.OwnerID == ownerID {
			out = append(out, cloneDocument(doc))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *MemoryRepo) Watch(id string) (<-chan Document, func()) {
	return r.broker.Subscribe(id)
}

func (r *MemoryRepo) publish(doc Document) {
	if r.broker != nil {
		r.broker.Publish(doc)
	}
}

func cloneDocument(doc Document) Document {
	out := doc
	out.Collaborators = append([]string{}, doc.Collaborators...)
	out.ActiveUsers = append([]PresenceRecord{}, doc.ActiveUsers...)
	return out
}
