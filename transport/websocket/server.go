package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-web/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-web/pkg/handlers"
)

type sessions interface {
	GetOrCreate(ctx context.Context, id string) (*usecase.Session, error)
}

type Server struct {
	logger   *slog.Logger
	sessions sessions
	upgrader websocket.Upgrader

	handlers map[string]func(ctx context.Context, client *client, message *Message) error

	clientsMutex sync.Mutex
	clients      map[*client]struct{}
}

func New(logger *slog.Logger, sessions sessions) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket"),
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},

		handlers: make(map[string]func(context.Context, *client, *Message) error),
		clients:  make(map[*client]struct{}),
	}

	server.handlers[actionConnect] = server.handleConnect
	server.handlers[actionCellSelect] = server.handleCellSelect
	server.handlers[actionGameReset] = server.handleGameReset
	server.handlers[actionScoresReset] = server.handleScoresReset

	return server
}

// ServeHTTP upgrades the request and serves the connection until it closes.
// The session comes from the cookie set by handlers.SessionMiddleware.
func (that *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	session, err := that.sessions.GetOrCreate(r.Context(), handlers.SessionID(r.Context()))
	if err != nil {
		log.Error("failed to get session", "error", err)
		http.Error(w, "session required", http.StatusUnauthorized)
		return
	}

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	client := newClient(that.logger, conn, session)
	unsubscribe := session.Subscribe(client.pushView)
	that.register(client)

	log.Info("WebSocket connection established", "session", session.ID)

	go client.writeLoop()

	ctx := context.WithoutCancel(r.Context())
	client.readLoop(func(c *client, msg *Message) {
		that.dispatch(ctx, c, msg)
	})

	unsubscribe()
	that.unregister(client)
	client.close()

	log.Info("WebSocket connection closed", "session", session.ID)
}

// Close disconnects every client. Used on shutdown since hijacked
// connections are not tracked by http.Server.
func (that *Server) Close() {
	that.clientsMutex.Lock()
	defer that.clientsMutex.Unlock()

	for client := range that.clients {
		_ = client.conn.Close()
	}
}

func (that *Server) ClientCount() int {
	that.clientsMutex.Lock()
	defer that.clientsMutex.Unlock()

	return len(that.clients)
}

func (that *Server) dispatch(ctx context.Context, client *client, msg *Message) {
	log := that.logger.With("method", "dispatch", "action", msg.Action)

	handler, ok := that.handlers[msg.Action]
	if !ok {
		log.Warn("unknown action")
		client.pushError(msg.Action, errUnknownAction(msg.Action))
		return
	}

	if err := handler(ctx, client, msg); err != nil {
		log.Warn("error processing message", "error", err)
		client.pushError(msg.Action, err)
	}
}

func (that *Server) register(client *client) {
	that.clientsMutex.Lock()
	defer that.clientsMutex.Unlock()

	that.clients[client] = struct{}{}
}

func (that *Server) unregister(client *client) {
	that.clientsMutex.Lock()
	defer that.clientsMutex.Unlock()

	delete(that.clients, client)
}
