package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// PGRepo stores documents in Postgres. Collaborators and active users live in
// jsonb columns so collaborator mutations can be expressed as atomic jsonb
// set operations rather than read-modify-write. Snapshot publication happens
// in-process: after every write the repo re-reads the row and publishes it,
// so writes from other processes are observed on the next read rather than
// pushed.
type PGRepo struct {
	db     *sql.DB
	broker *Broker
}

func NewPGRepo(db *sql.DB, broker *Broker) *PGRepo {
	return &PGRepo{db: db, broker: broker}
}

const documentColumns = `id, owner_id, owner_name, owner_email, title, content, last_edited_by, collaborators, active_users, created_at, updated_at`

func (r *PGRepo) Get(ctx context.Context, id string) (Document, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	return scanDocument(row)
}

func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	collaborators, err := json.Marshal(emptyIfNil(doc.Collaborators))
	if err != nil {
		return fmt.Errorf("marshal collaborators: %w", err)
	}
	users := doc.ActiveUsers
	if users == nil {
		users = []PresenceRecord{}
	}
	activeUsers, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("marshal active users: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO documents (id, owner_id, owner_name, owner_email, title, content, last_edited_by, collaborators, active_users, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		doc.ID, doc.OwnerID, doc.OwnerName, doc.OwnerEmail, doc.Title, doc.Content,
		doc.LastEditedBy, collaborators, activeUsers, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrExists
		}
		return fmt.Errorf("insert document: %w", err)
	}

	r.publishAfterWrite(ctx, doc.ID)
	return nil
}

func (r *PGRepo) Update(ctx context.Context, id string, fields UpdateFields) error {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)
	args = append(args, id)

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if fields.Content != nil {
		add("content", *fields.Content)
	}
	if fields.Title != nil {
		add("title", *fields.Title)
	}
	if fields.LastEditedBy != nil {
		add("last_edited_by", *fields.LastEditedBy)
	}
	if fields.UpdatedAt != nil {
		add("updated_at", *fields.UpdatedAt)
	} else {
		add("updated_at", time.Now().UTC())
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE documents SET `+strings.Join(sets, ", ")+` WHERE id = $1`, args...)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	r.publishAfterWrite(ctx, id)
	return nil
}

func (r *PGRepo) AddCollaborator(ctx context.Context, id, email string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE documents
		 SET collaborators = collaborators || to_jsonb($2::text), updated_at = now()
		 WHERE id = $1 AND NOT collaborators @> to_jsonb($2::text)`,
		id, email)
	if err != nil {
		return fmt.Errorf("add collaborator: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		// Either the document is missing or the email is already present;
		// distinguish with a point read so callers see ErrNotFound.
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return getErr
		}
		return nil
	}

	r.publishAfterWrite(ctx, id)
	return nil
}

func (r *PGRepo) RemoveCollaborator(ctx context.Context, id, email string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE documents
		 SET collaborators = COALESCE(
		         (SELECT jsonb_agg(elem) FROM jsonb_array_elements_text(collaborators) AS elem
		          WHERE elem <> $2),
		         '[]'::jsonb),
		     updated_at = now()
		 WHERE id = $1`,
		id, email)
	if err != nil {
		return fmt.Errorf("remove collaborator: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	r.publishAfterWrite(ctx, id)
	return nil
}

func (r *PGRepo) SetActiveUsers(ctx context.Context, id string, users []PresenceRecord) error {
	if users == nil {
		users = []PresenceRecord{}
	}
	payload, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("marshal active users: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE documents SET active_users = $2 WHERE id = $1`, id, payload)
	if err != nil {
		return fmt.Errorf("set active users: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	r.publishAfterWrite(ctx, id)
	return nil
}

func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string) ([]Document, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE owner_id = $1 ORDER BY updated_at DESC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	out := make([]Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

func (r *PGRepo) Watch(id string) (<-chan Document, func()) {
	return r.broker.Subscribe(id)
}

func (r *PGRepo) publishAfterWrite(ctx context.Context, id string) {
	if r.broker == nil {
		return
	}
	doc, err := r.Get(ctx, id)
	if err != nil {
		return
	}
	r.broker.Publish(doc)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var collaborators, activeUsers []byte

	err := row.Scan(&doc.ID, &doc.OwnerID, &doc.OwnerName, &doc.OwnerEmail,
		&doc.Title, &doc.Content, &doc.LastEditedBy,
		&collaborators, &activeUsers, &doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("scan document: %w", err)
	}

	if err := json.Unmarshal(collaborators, &doc.Collaborators); err != nil {
		return Document{}, fmt.Errorf("decode collaborators: %w", err)
	}
	if err := json.Unmarshal(activeUsers, &doc.ActiveUsers); err != nil {
		return Document{}, fmt.Errorf("decode active users: %w", err)
	}
	if doc.Collaborators == nil {
		doc.Collaborators = []string{}
	}
	if doc.ActiveUsers == nil {
		doc.ActiveUsers = []PresenceRecord{}
	}
	return doc, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
