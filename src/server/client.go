package server

import (
	"sync"
	"time"

	"cycle-dashboard/src/models"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Constants
// -----------------------------------------------------------------------------

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// -----------------------------------------------------------------------------
// Client Structure
// -----------------------------------------------------------------------------

// Client is one browser view. It owns the single live figure of that view.
type Client struct {
	id   string
	hub  *DashboardServer
	conn *websocket.Conn
	send chan interface{}

	// closed by the hub when the session is unregistered
	closed chan struct{}

	mu   sync.Mutex
	live *models.MFigure
}

// -----------------------------------------------------------------------------

func (c *Client) ID() string {
	return c.id
}

// Live returns the figure currently displayed by this session.
func (c *Client) Live() (models.MFigure, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.live == nil {
		return models.MFigure{}, false
	}
	return *c.live, true
}

func (c *Client) setLive(fig models.MFigure) {
	c.mu.Lock()
	c.live = &fig
	c.mu.Unlock()
}

// push queues message without blocking the caller.
func (c *Client) push(message interface{}) {
	select {
	case c.send <- message:
	case <-c.closed:
	default:
		c.hub.Logger.Warning("Session %s send buffer full, dropping message", c.ID())
	}
}

// -----------------------------------------------------------------------------
// readPump - handles incoming messages from client
// Act as a Watchdog for the connection
// -----------------------------------------------------------------------------

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.Logger.Info("WebSocket error: %v", err)
			}
			break
		}
		c.hub.HandleClientMessage(c, message)
	}
}

// -----------------------------------------------------------------------------
// writePump - sends messages to client
// -----------------------------------------------------------------------------

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.hub.Logger.Info("Write error: %v", err)
				return
			}

		case <-c.closed:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
