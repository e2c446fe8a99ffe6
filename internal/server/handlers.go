package server

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// Handlers serves the HTTP surface of the chat server.
type Handlers struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandlers builds handlers that upgrade connections into hub, subject to
// policy.
func NewHandlers(hub *Hub, policy *OriginPolicy, logger *slog.Logger) *Handlers {
	return &Handlers{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     policy.CheckOrigin,
		},
		logger: logger,
	}
}

// WebSocket upgrades the request and hands the connection to the hub, which
// starts its pumps.
func (h *Handlers) WebSocket(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written the error response.
		h.logger.Warn("websocket upgrade failed", "remote_addr", c.RealIP(), "error", err)
		return nil
	}

	client := NewClient(conn, h.hub, c.RealIP())
	if !h.hub.Register(client) {
		_ = conn.Close()
	}
	return nil
}

// Health is the liveness probe.
func (h *Handlers) Health(c echo.Context) error {
	return c.String(http.StatusOK, "Roomchat server is running!")
}

// TestPage serves a small browser client for manual testing.
func (h *Handlers) TestPage(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return testPage().Render(c.Response())
}
