package documents_test

import (
	"testing"

	"augenblick-backend/internal/documents"
)

func TestCanAccess(t *testing.T) {
	doc := documents.Document{
		ID:            "doc-1",
		OwnerID:       "user-1",
		OwnerEmail:    "ada@example.com",
		Collaborators: []string{"grace@example.com"},
	}

	cases := []struct {
		name   string
		userID string
		email  string
		want   bool
	}{
		{"owner", "user-1", "ada@example.com", true},
		{"collaborator", "user-2", "grace@example.com", true},
		{"stranger", "user-9", "eve@example.com", false},
		{"owner id with foreign email", "user-1", "other@example.com", true},
		{"empty identity", "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := documents.CanAccess(doc, tc.userID, tc.email); got != tc.want {
				t.Fatalf("CanAccess(%s, %s) = %v, want %v", tc.userID, tc.email, got, tc.want)
			}
		})
	}
}
