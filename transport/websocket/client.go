package websocket

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-web/internal/usecase"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 32
)

// client is one browser tab bound to a session.
type client struct {
	logger  *slog.Logger
	conn    *websocket.Conn
	session *usecase.Session

	mu     sync.Mutex
	send   chan Message
	closed bool
}

func newClient(logger *slog.Logger, conn *websocket.Conn, session *usecase.Session) *client {
	return &client{
		logger:  logger.With("session", session.ID, "remote", conn.RemoteAddr().String()),
		conn:    conn,
		session: session,
		send:    make(chan Message, sendBuffer),
	}
}

// enqueue never blocks the caller; a client that cannot keep up loses messages.
func (that *client) enqueue(msg Message) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		that.logger.Debug("client closed, dropping message", "action", msg.Action)
		return
	}

	select {
	case that.send <- msg:
	default:
		that.logger.Warn("send buffer full, dropping message", "action", msg.Action)
	}
}

func (that *client) pushView(view usecase.View) {
	msg, err := newMessage(actionState, view)
	if err != nil {
		that.logger.Error("failed to marshal view", "error", err)
		return
	}

	that.enqueue(msg)
}

func (that *client) pushError(action string, cause error) {
	msg, err := newMessage(actionError, ErrorPayload{Action: action, Error: cause.Error()})
	if err != nil {
		that.logger.Error("failed to marshal error", "error", err)
		return
	}

	that.enqueue(msg)
}

func (that *client) close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return
	}

	that.closed = true
	close(that.send)
}

func (that *client) readLoop(dispatch func(*client, *Message)) {
	log := that.logger.With("method", "readLoop")

	that.conn.SetReadLimit(maxMessageSize)
	_ = that.conn.SetReadDeadline(time.Now().Add(pongWait))
	that.conn.SetPongHandler(func(string) error {
		return that.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := that.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Warn("unexpected close", "error", err)
			}

			return
		}

		dispatch(that, &msg)
	}
}

func (that *client) writeLoop() {
	log := that.logger.With("method", "writeLoop")

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = that.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if !ok {
				_ = that.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := that.conn.WriteJSON(msg); err != nil {
				log.Debug("failed to write message", "error", err)
				return
			}
		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
