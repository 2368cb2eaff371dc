package documents

import "time"

// DefaultTitle is assigned to documents created without an explicit title.
const DefaultTitle = "Untitled Document"

// Document is the unit of collaboration. The store is the single source of
// truth; any in-memory copy may be stale between a local write and the next
// snapshot delivery.
type Document struct {
	ID            string           `json:"id"`
	OwnerID       string           `json:"ownerId"`
	OwnerName     string           `json:"ownerName"`
	OwnerEmail    string           `json:"ownerEmail"`
	Title         string           `json:"title"`
	Content       string           `json:"content"`
	Collaborators []string         `json:"collaborators"`
	ActiveUsers   []PresenceRecord `json:"activeUsers"`
	LastEditedBy  string           `json:"lastEditedBy"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// PresenceRecord advertises a user currently viewing a document. Records are
// heartbeat-refreshed and evicted on read, never swept server-side.
type PresenceRecord struct {
	UserID       string    `json:"userId"`
	DisplayName  string    `json:"displayName"`
	PhotoURL     string    `json:"photoURL"`
	LastActiveAt time.Time `json:"lastActiveAt"`
}

// Identity is the authenticated user as supplied by the identity provider.
type Identity struct {
	ID          string
	DisplayName string
	Email       string
	PhotoURL    string
}

// CanAccess reports whether the user may read and write the document: the
// owner, or anyone whose email is in the collaborator set. There is no third
// path.
func CanAccess(doc Document, userID, email string) bool {
	if doc.OwnerID == userID {
		return true
	}
	for _, collaborator := range doc.Collaborators {
		if collaborator == email {
			return true
		}
	}
	return false
}
