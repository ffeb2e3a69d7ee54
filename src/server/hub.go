package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"cycle-dashboard/src/models"
	"cycle-dashboard/src/pipeline"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// refreshTimeout bounds one websocket refresh.
const refreshTimeout = 30 * time.Second

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// runHub owns the session registry. Sessions never share figures, so
// there is nothing to broadcast; the hub only tracks lifetimes.
func (s *DashboardServer) runHub() {
	for {
		select {
		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.sessions.Store(int64(len(s.clients)))
			s.Logger.Info("Session %s opened (%d live)", client.ID(), len(s.clients))

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.closed)
				s.sessions.Store(int64(len(s.clients)))
				s.Logger.Info("Session %s closed (%d live)", client.ID(), len(s.clients))
			}

		case <-s.done:
			for client := range s.clients {
				delete(s.clients, client)
				close(client.closed)
			}
			s.sessions.Store(0)
			return
		}
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 64 * 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Warning("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		id:     uuid.NewString(),
		hub:    s,
		conn:   conn,
		send:   make(chan interface{}, 16),
		closed: make(chan struct{}),
	}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// HandleClientMessage runs on the client's read goroutine, so refreshes of
// one session are applied in arrival order.
func (s *DashboardServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MRefreshCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Warning("Session %s sent malformed command: %v, disconnecting client", client.ID(), err)
		client.conn.Close()
		return
	}

	if cmd.Command != models.CommandRefresh {
		s.Logger.Debug("Session %s: ignoring command %q", client.ID(), cmd.Command)
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, refreshTimeout)
	defer cancel()

	view, err := s.refresh(ctx, pipeline.RawQuery{
		Symbol: cmd.Symbol,
		Start:  cmd.Start,
		End:    cmd.End,
		Mode:   cmd.Mode,
	})
	if err != nil {
		s.ErrorHandler.Handle(err, "session "+client.ID())
		client.push(models.MErrorMessage{Type: models.MessageTypeError, Message: err.Error()})
		return
	}

	client.setLive(view.Figure)
	client.push(models.MFigureMessage{
		Type:   models.MessageTypeFigure,
		Figure: view.Figure,
		SVG:    view.SVG,
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) refresh(ctx context.Context, raw pipeline.RawQuery) (pipeline.View, error) {
	q, err := s.Pipeline.Parse(raw)
	if err != nil {
		return pipeline.View{}, err
	}
	return s.Pipeline.InteractiveView(ctx, q)
}
