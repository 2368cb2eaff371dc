package email_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"augenblick-backend/internal/email"
)

func TestSendPostsTemplateParams(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := email.NewClientWithBaseURL("svc", "tpl", "usr", server.URL)
	delivered, err := client.Send(context.Background(), email.Invitation{
		ToEmail:       "grace@example.com",
		FromName:      "Ada Lovelace",
		DocumentTitle: "Meeting Notes",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !delivered {
		t.Fatalf("expected delivered=true on 200")
	}

	if got["service_id"] != "svc" || got["template_id"] != "tpl" || got["user_id"] != "usr" {
		t.Fatalf("unexpected credentials in payload: %v", got)
	}
	params, ok := got["template_params"].(map[string]any)
	if !ok {
		t.Fatalf("missing template_params: %v", got)
	}
	if params["to_name"] != "grace" {
		t.Fatalf("expected to_name derived from local part, got %v", params["to_name"])
	}
	message, _ := params["message"].(string)
	if !strings.Contains(message, `titled "Meeting Notes"`) {
		t.Fatalf("unexpected message: %s", message)
	}
}

func TestSendNonOKIsNotDelivered(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := email.NewClientWithBaseURL("svc", "tpl", "usr", server.URL)
	delivered, err := client.Send(context.Background(), email.Invitation{ToEmail: "grace@example.com"})
	if err == nil {
		t.Fatalf("expected error on non-200 response")
	}
	if delivered {
		t.Fatalf("expected delivered=false on non-200")
	}
}

func TestSendUnconfiguredSkips(t *testing.T) {
	client := email.NewClient("", "", "")
	delivered, err := client.Send(context.Background(), email.Invitation{ToEmail: "grace@example.com"})
	if err != nil {
		t.Fatalf("unconfigured send must not fail: %v", err)
	}
	if delivered {
		t.Fatalf("unconfigured send must report not delivered")
	}
}
