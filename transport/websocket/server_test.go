package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
	"github.com/rocketscienceinc/tictactoe-web/internal/metrics"
	"github.com/rocketscienceinc/tictactoe-web/internal/msgcat"
	"github.com/rocketscienceinc/tictactoe-web/internal/repository"
	"github.com/rocketscienceinc/tictactoe-web/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-web/internal/service"
	"github.com/rocketscienceinc/tictactoe-web/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-web/pkg/handlers"
)

const sessionID = "5f0c6ad8-3f0e-4d1b-9a37-2a9f1b2e8c11"

func newTestServer(t *testing.T, celebration time.Duration) (*Server, *httptest.Server) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	factory := repository.NewMemoryFactory(storage.NewMemoryStorage(), "")

	manager := usecase.NewSessionManager(
		logger,
		func(id string) service.ScoreService {
			return service.NewScoreService(logger, factory(id))
		},
		msgcat.MustNew(),
		metrics.New(),
		celebration,
		time.Hour,
	)
	t.Cleanup(manager.Close)

	server := New(logger, manager)
	srv := httptest.NewServer(handlers.SessionMiddleware(logger)(server))
	t.Cleanup(srv.Close)

	return server, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	header := http.Header{}
	header.Add("Cookie", handlers.SessionCookieName+"="+sessionID)

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })

	return conn
}

func send(t *testing.T, conn *websocket.Conn, action string, payload any) {
	t.Helper()

	msg := Message{Action: action}
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		msg.Payload = raw
	}

	require.NoError(t, conn.WriteJSON(msg))
}

func receive(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))

	return msg
}

func receiveView(t *testing.T, conn *websocket.Conn) usecase.View {
	t.Helper()

	msg := receive(t, conn)
	require.Equal(t, actionState, msg.Action, string(msg.Payload))

	var view usecase.View
	require.NoError(t, json.Unmarshal(msg.Payload, &view))

	return view
}

func selectCell(t *testing.T, conn *websocket.Conn, cell int) usecase.View {
	t.Helper()

	send(t, conn, actionCellSelect, CellPayload{Cell: &cell})
	return receiveView(t, conn)
}

func TestServer_Connect(t *testing.T) {
	// Given: a running server
	_, srv := newTestServer(t, time.Minute)
	conn := dial(t, srv)

	// When: the client announces itself
	send(t, conn, actionConnect, nil)

	// Then: it receives the current view
	view := receiveView(t, conn)
	assert.Equal(t, "Next player: X", view.StatusLine)
	assert.Equal(t, entity.Board{}, view.Board)
}

func TestServer_Play(t *testing.T) {
	t.Run("Moves are pushed back as state", func(t *testing.T) {
		// Given: a connected client
		_, srv := newTestServer(t, time.Minute)
		conn := dial(t, srv)

		// When: X completes row 0
		var view usecase.View
		for _, cell := range []int{0, 3, 1, 4, 2} {
			view = selectCell(t, conn, cell)
		}

		// Then: the final view reports the win
		assert.Equal(t, "Winner: X", view.StatusLine)
		assert.Equal(t, entity.ScoreTally{XWins: 1}, view.Scores)
		assert.True(t, view.Celebrating)
		require.Len(t, view.Notifications, 1)
		assert.Equal(t, entity.LevelSuccess, view.Notifications[0].Level)
	})

	t.Run("Other tabs of the same session see the change", func(t *testing.T) {
		// Given: two tabs sharing a session
		_, srv := newTestServer(t, time.Minute)
		first := dial(t, srv)
		second := dial(t, srv)

		send(t, second, actionConnect, nil)
		receiveView(t, second)

		// When: the first tab plays
		selectCell(t, first, 4)

		// Then: the second tab gets the update
		view := receiveView(t, second)
		assert.Equal(t, entity.MarkX, view.Board[4])
	})

	t.Run("Resets are pushed", func(t *testing.T) {
		_, srv := newTestServer(t, time.Minute)
		conn := dial(t, srv)
		selectCell(t, conn, 0)

		send(t, conn, actionGameReset, nil)
		view := receiveView(t, conn)
		assert.Equal(t, entity.Board{}, view.Board)

		send(t, conn, actionScoresReset, nil)
		view = receiveView(t, conn)
		require.Len(t, view.Notifications, 1)
		assert.Equal(t, "Scores reset!", view.Notifications[0].Message)
	})
}

func TestServer_CelebrationExpiry(t *testing.T) {
	// Given: a short celebration and a won game
	_, srv := newTestServer(t, 50*time.Millisecond)
	conn := dial(t, srv)
	var view usecase.View
	for _, cell := range []int{0, 3, 1, 4, 2} {
		view = selectCell(t, conn, cell)
	}
	require.True(t, view.Celebrating)

	// When: the celebration runs out
	view = receiveView(t, conn)

	// Then: the server pushes a view without it
	assert.False(t, view.Celebrating)
	assert.Equal(t, entity.StatusWon, view.Status)
}

func TestServer_Errors(t *testing.T) {
	t.Run("Unknown action", func(t *testing.T) {
		_, srv := newTestServer(t, time.Minute)
		conn := dial(t, srv)

		send(t, conn, "game:leave", nil)

		msg := receive(t, conn)
		require.Equal(t, actionError, msg.Action)

		var payload ErrorPayload
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		assert.Equal(t, "game:leave", payload.Action)
		assert.Contains(t, payload.Error, "unknown action")
	})

	t.Run("Cell is required", func(t *testing.T) {
		_, srv := newTestServer(t, time.Minute)
		conn := dial(t, srv)

		send(t, conn, actionCellSelect, map[string]any{})

		msg := receive(t, conn)
		require.Equal(t, actionError, msg.Action)
		assert.Contains(t, string(msg.Payload), "invalid cell index")
	})
}

func TestServer_Close(t *testing.T) {
	// Given: a connected client
	server, srv := newTestServer(t, time.Minute)
	conn := dial(t, srv)
	send(t, conn, actionConnect, nil)
	receiveView(t, conn)
	require.Equal(t, 1, server.ClientCount())

	// When: the server closes its clients
	server.Close()

	// Then: the client connection is dropped
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.Eventually(t, func() bool { return server.ClientCount() == 0 }, 5*time.Second, 10*time.Millisecond)
}
