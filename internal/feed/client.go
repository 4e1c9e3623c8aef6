package feed

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"hostelfix/backend/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

// WSClient streams complaint events of one hostel to a websocket connection.
// The feed is one-way: anything the peer sends is read and discarded.
type WSClient struct {
	hostelCode string
	conn       *websocket.Conn
	hub        *Hub
	send       chan models.ComplaintEvent
	closeOnce  sync.Once
	log        *slog.Logger
}

func NewWSClient(conn *websocket.Conn, hub *Hub, hostelCode string, logger *slog.Logger) *WSClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSClient{
		hostelCode: hostelCode,
		conn:       conn,
		hub:        hub,
		send:       make(chan models.ComplaintEvent, sendBuffer),
		log:        logger.With("component", "feed.ws", "hostel_code", hostelCode),
	}
}

func (c *WSClient) HostelCode() string                  { return c.hostelCode }
func (c *WSClient) Send() chan<- models.ComplaintEvent { return c.send }

// Close stops the write pump. Safe to call more than once.
func (c *WSClient) Close() {
	c.closeOnce.Do(func() { close(c.send) })
}

// Run registers the client and starts its pumps.
func (c *WSClient) Run() {
	c.hub.Register(c)
	go c.writePump()
	go c.readPump()
}

func (c *WSClient) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("websocket read failed", "error", err)
			}
			return
		}
	}
}

func (c *WSClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// хаб закрив канал
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(event)
			if err != nil {
				c.log.Error("failed to encode event", "error", err)
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
