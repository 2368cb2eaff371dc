package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"augenblick-backend/internal/shared/telemetry"
)

const defaultAPIURL = "https://api.emailjs.com/api/v1.0/email/send"

// Invitation is the notification sent when a document is shared.
type Invitation struct {
	ToEmail       string
	FromName      string
	DocumentTitle string
}

// Client sends template emails through the EmailJS REST API. A client with
// missing credentials is valid and reports every send as not delivered, so
// sharing keeps working in environments without email configured.
type Client struct {
	serviceID  string
	templateID string
	userID     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(serviceID, templateID, userID string) *Client {
	return &Client{
		serviceID:  serviceID,
		templateID: templateID,
		userID:     userID,
		baseURL:    defaultAPIURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// NewClientWithBaseURL is used by tests to point the client at a local server.
func NewClientWithBaseURL(serviceID, templateID, userID, baseURL string) *Client {
	c := NewClient(serviceID, templateID, userID)
	c.baseURL = baseURL
	return c
}

type sendRequest struct {
	ServiceID      string         `json:"service_id"`
	TemplateID     string         `json:"template_id"`
	UserID         string         `json:"user_id"`
	TemplateParams templateParams `json:"template_params"`
}

type templateParams struct {
	ToEmail  string `json:"to_email"`
	ToName   string `json:"to_name"`
	FromName string `json:"from_name"`
	Message  string `json:"message"`
}

// Send delivers a share notification. It returns whether the email was
// delivered; callers treat delivery as advisory and never roll back on false.
func (c *Client) Send(ctx context.Context, inv Invitation) (bool, error) {
	if c.serviceID == "" || c.templateID == "" || c.userID == "" {
		telemetry.Warn("email not configured, skipping invitation", map[string]any{
			"to": inv.ToEmail,
		})
		return false, nil
	}

	payload := sendRequest{
		ServiceID:  c.serviceID,
		TemplateID: c.templateID,
		UserID:     c.userID,
		TemplateParams: templateParams{
			ToEmail:  inv.ToEmail,
			ToName:   localPart(inv.ToEmail),
			FromName: inv.FromName,
			Message: fmt.Sprintf(
				"I've shared a document titled \"%s\" with you. You can access it by logging into your account.",
				inv.DocumentTitle),
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("email service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return true, nil
}

// localPart derives a display name from the address for the template greeting.
func localPart(address string) string {
	if i := strings.Index(address, "@"); i > 0 {
		return address[:i]
	}
	return address
}
