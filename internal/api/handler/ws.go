package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"hostelfix/backend/internal/feed"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Токен перевіряється до апгрейду, тому будь-яке походження дозволене.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ComplaintEvents upgrades to a websocket that streams the admin's hostel events.
func (h *Handler) ComplaintEvents(c *gin.Context) {
	id := identity(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := feed.NewWSClient(conn, h.Hub, id.HostelCode, h.log)
	client.Run()
}
