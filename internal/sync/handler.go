package sync

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"augenblick-backend/internal/documents"
	"augenblick-backend/internal/presence"
	"augenblick-backend/internal/shared/telemetry"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Origin is enforced by the CORS layer; browsers cannot set custom
	// headers on websocket dials, so the token rides in the query string.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades editor connections and runs a session per connection.
type Handler struct {
	Docs     *documents.Service
	Repo     documents.Repo
	Presence *presence.Service
}

func NewHandler(docs *documents.Service, repo documents.Repo, pres *presence.Service) *Handler {
	return &Handler{Docs: docs, Repo: repo, Presence: pres}
}

// RegisterRoutes attaches the sync endpoint to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/documents/sync", h.sync)
}

func (h *Handler) sync(c *gin.Context) {
	user := documents.IdentityFromContext(c)
	docID, generated := documents.ResolveID(c.Request.URL.Query())

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		telemetry.Warn("websocket upgrade failed", map[string]any{
			"documentId": docID,
			"error":      err.Error(),
		})
		return
	}
	defer ws.Close()

	session := &Session{
		DocID:     docID,
		Generated: generated,
		User:      user,
		Docs:      h.Docs,
		Repo:      h.Repo,
		Presence:  h.Presence,
		Conn:      ws,
	}
	session.Run(c.Request.Context())
}
