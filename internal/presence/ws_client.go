package presence

import (
	"encoding/json"
	"sync"
	"time"

	"heartlink/backend/internal/config"
	"heartlink/backend/internal/logger"
	"heartlink/backend/internal/models"

	"github.com/gorilla/websocket"
)

// WebSocketClient implements Client over a gorilla websocket connection.
type WebSocketClient struct {
	connID   string
	userID   int64
	username string

	conn *websocket.Conn
	hub  *Hub
	send chan models.ServerEvent
	log  *logger.Logger

	closeOnce sync.Once
}

func NewWebSocketClient(connID string, userID int64, username string, conn *websocket.Conn, hub *Hub, log *logger.Logger) *WebSocketClient {
	return &WebSocketClient{
		connID:   connID,
		userID:   userID,
		username: username,
		conn:     conn,
		hub:      hub,
		send:     make(chan models.ServerEvent, config.SendBufferSize),
		log:      log,
	}
}

func (c *WebSocketClient) ConnID() string                         { return c.connID }
func (c *WebSocketClient) UserID() int64                          { return c.userID }
func (c *WebSocketClient) Username() string                       { return c.username }
func (c *WebSocketClient) SendChannel() chan<- models.ServerEvent { return c.send }

// Run starts the read and write pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close shuts the outbound channel, which stops the write pump.
func (c *WebSocketClient) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// readPump reads events off the wire and hands them to the hub. When the
// connection drops, unregistering through the hub promptly releases every
// room membership the connection held.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.hub.UnregisterCh <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("websocket read failed", "conn_id", c.connID, "error", err)
			}
			break
		}

		var event models.ClientEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			c.log.Warn("malformed client event", "conn_id", c.connID, "error", err)
			continue
		}

		c.hub.InboundCh <- Inbound{Client: c, Event: event}
	}
}

// writePump drains the send channel into the connection and keeps it alive
// with pings.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(event)
			if err != nil {
				c.log.Error("encoding server event failed", "conn_id", c.connID, "error", err)
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
