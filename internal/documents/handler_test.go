package documents_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"augenblick-backend/internal/bootstrap"
	sharedauth "augenblick-backend/internal/shared/auth"
	"augenblick-backend/internal/shared/config"
)

func buildTestApp(t *testing.T) *bootstrap.App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:            "0",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		Env:             "dev",
		ObjectStoreType: "local",
		LocalStoreDir:   t.TempDir(),
	}

	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	return app
}

func authHeader(t *testing.T, sub, email, name string) string {
	t.Helper()
	token, err := sharedauth.SignJWT(sharedauth.Claims{Sub: sub, Email: email, Name: name})
	if err != nil {
		t.Fatalf("sign jwt: %v", err)
	}
	return "Bearer " + token
}

func doJSON(t *testing.T, app *bootstrap.App, method, path, auth string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", auth)
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	return resp
}

func TestSaveShareAndFetchFlow(t *testing.T) {
	app := buildTestApp(t)
	ownerAuth := authHeader(t, "user-1", "ada@example.com", "Ada Lovelace")
	collaboratorAuth := authHeader(t, "user-2", "grace@example.com", "Grace Hopper")

	// First save creates the document.
	resp := doJSON(t, app, http.MethodPut, "/api/v1/documents/doc_1700000000000_abc123xyz/content",
		ownerAuth, map[string]string{"content": "<p>hello</p>"})
	if resp.Code != http.StatusOK {
		t.Fatalf("save: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var saved struct {
		Status    string `json:"status"`
		LastSaved string `json:"lastSaved"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&saved); err != nil {
		t.Fatalf("decode save response: %v", err)
	}
	if saved.Status != "saved" || saved.LastSaved == "" {
		t.Fatalf("unexpected save response: %+v", saved)
	}

	// A second user cannot read it yet.
	resp = doJSON(t, app, http.MethodGet, "/api/v1/documents/doc_1700000000000_abc123xyz", collaboratorAuth, nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 before sharing, got %d", resp.Code)
	}

	// Share with the second user.
	resp = doJSON(t, app, http.MethodPost, "/api/v1/documents/doc_1700000000000_abc123xyz/collaborators",
		ownerAuth, map[string]string{"email": "grace@example.com"})
	if resp.Code != http.StatusOK {
		t.Fatalf("share: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var shared struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&shared); err != nil {
		t.Fatalf("decode share response: %v", err)
	}
	if shared.Message != "Collaborator added successfully" {
		t.Fatalf("unexpected share message %q", shared.Message)
	}

	// Now the collaborator can read it.
	resp = doJSON(t, app, http.MethodGet, "/api/v1/documents/doc_1700000000000_abc123xyz", collaboratorAuth, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("fetch after share: expected 200, got %d", resp.Code)
	}
	var doc struct {
		Content       string   `json:"content"`
		Collaborators []string `json:"collaborators"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if doc.Content != "<p>hello</p>" {
		t.Fatalf("unexpected content %q", doc.Content)
	}
	if len(doc.Collaborators) != 1 || doc.Collaborators[0] != "grace@example.com" {
		t.Fatalf("unexpected collaborators %v", doc.Collaborators)
	}
}

func TestAddSelfCollaboratorRejected(t *testing.T) {
	app := buildTestApp(t)
	ownerAuth := authHeader(t, "user-1", "ada@example.com", "Ada Lovelace")

	resp := doJSON(t, app, http.MethodPut, "/api/v1/documents/doc_1/content",
		ownerAuth, map[string]string{"content": "x"})
	if resp.Code != http.StatusOK {
		t.Fatalf("save: expected 200, got %d", resp.Code)
	}

	resp = doJSON(t, app, http.MethodPost, "/api/v1/documents/doc_1/collaborators",
		ownerAuth, map[string]string{"email": "ada@example.com"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for self add, got %d", resp.Code)
	}
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Error.Message != "You can't add yourself as a collaborator" {
		t.Fatalf("unexpected message %q", body.Error.Message)
	}
}

func TestRequestsWithoutTokenRejected(t *testing.T) {
	app := buildTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}
}

func TestHealthIsPublic(t *testing.T) {
	app := buildTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for health, got %d", resp.Code)
	}
}
