package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var streamUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandleDiagnostics returns the recent dial outcomes, newest first.
func (h *Handler) HandleDiagnostics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"calls": h.callLog.Recent(),
	})
}

// HandleDiagnosticsStream upgrades to a websocket and pushes each new dial
// outcome as it is appended. The connection closes when the client goes away
// or a write fails.
func (h *Handler) HandleDiagnosticsStream(c *gin.Context) {
	ctx := c.Request.Context()

	conn, err := streamUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error(ctx, "failed to upgrade diagnostics stream", err)
		return
	}
	defer conn.Close()

	entries, cancel := h.callLog.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case entry, ok := <-entries:
			if !ok {
				return
			}
			if err := conn.WriteJSON(entry); err != nil {
				return
			}
		}
	}
}
