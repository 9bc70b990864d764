package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parlor/internal/app/arena"
	"parlor/internal/configs"
	"parlor/internal/pkg/errs"
	"parlor/internal/pkg/resp"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &configs.AppConfig{
		Environment: "development",
		Port:        8080,
		InviteTTL:   time.Minute,
	}

	hub := arena.NewHub(cfg)
	t.Cleanup(hub.Shutdown)

	srv := httptest.NewServer(Router(&AppDeps{Hub: hub, Config: cfg}))
	t.Cleanup(srv.Close)
	return srv
}

func dialWS(t *testing.T, srv *httptest.Server, username string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?username=" + url.QueryEscape(username)

	conn, httpResp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if httpResp != nil && httpResp.Body != nil {
		httpResp.Body.Close()
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

// readEvent reads frames until one of the wanted type arrives, skipping
// broadcast noise like online user updates.
func readEvent(t *testing.T, conn *websocket.Conn, want arena.EventType) arena.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))

	for {
		var env arena.Envelope
		require.NoError(t, conn.ReadJSON(&env))
		if env.Type == want {
			return env
		}
	}
}

func writeEvent(t *testing.T, conn *websocket.Conn, eventType arena.EventType, payload any) {
	t.Helper()
	env := arena.Envelope{Type: eventType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		env.Payload = raw
	}
	require.NoError(t, conn.WriteJSON(env))
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	httpResp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer httpResp.Body.Close()

	require.Equal(t, http.StatusOK, httpResp.StatusCode)

	body, err := io.ReadAll(httpResp.Body)
	require.NoError(t, err)

	var res resp.JSONResponse
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, 0, res.Code)
}

func TestWebSocketRequiresUsername(t *testing.T) {
	srv := newTestServer(t)

	httpResp, err := http.Get(srv.URL + "/ws")
	require.NoError(t, err)
	defer httpResp.Body.Close()

	require.Equal(t, http.StatusBadRequest, httpResp.StatusCode)

	body, err := io.ReadAll(httpResp.Body)
	require.NoError(t, err)

	var res resp.JSONResponse
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, errs.ErrUsernameMissing, res.Code)
}

func TestWebSocketRejectsInvalidUsername(t *testing.T) {
	srv := newTestServer(t)

	httpResp, err := http.Get(srv.URL + "/ws?username=" + url.QueryEscape("bad\x01name"))
	require.NoError(t, err)
	defer httpResp.Body.Close()

	require.Equal(t, http.StatusBadRequest, httpResp.StatusCode)

	body, err := io.ReadAll(httpResp.Body)
	require.NoError(t, err)

	var res resp.JSONResponse
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, errs.ErrInvalidParams, res.Code)
}

func TestWebSocketHandshake(t *testing.T) {
	srv := newTestServer(t)
	conn := dialWS(t, srv, "alice")

	env := readEvent(t, conn, arena.EventUsernameAccepted)

	var p arena.UsernameAcceptedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.Equal(t, "alice", p.Username)

	env = readEvent(t, conn, arena.EventOnlineUsersUpdate)

	var users arena.OnlineUsersPayload
	require.NoError(t, json.Unmarshal(env.Payload, &users))
	assert.Equal(t, []string{"alice"}, users.Usernames)
}

func TestWebSocketDuplicateUsernameDenied(t *testing.T) {
	srv := newTestServer(t)

	first := dialWS(t, srv, "alice")
	readEvent(t, first, arena.EventUsernameAccepted)

	second := dialWS(t, srv, "alice")
	env := readEvent(t, second, arena.EventUsernameDenied)

	var p arena.UsernameDeniedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.Contains(t, p.Reason, "alice")
}

func TestLobbyPairingAndMoveRelay(t *testing.T) {
	srv := newTestServer(t)

	alice := dialWS(t, srv, "alice")
	readEvent(t, alice, arena.EventUsernameAccepted)
	bob := dialWS(t, srv, "bob")
	readEvent(t, bob, arena.EventUsernameAccepted)

	writeEvent(t, alice, arena.EventJoinLobby, arena.JoinLobbyPayload{Game: "ticTacToe"})
	writeEvent(t, bob, arena.EventJoinLobby, arena.JoinLobbyPayload{Game: "ticTacToe"})

	var pa, pb arena.StartGamePayload
	require.NoError(t, json.Unmarshal(readEvent(t, alice, arena.EventStartGame).Payload, &pa))
	require.NoError(t, json.Unmarshal(readEvent(t, bob, arena.EventStartGame).Payload, &pb))
	assert.Equal(t, "bob", pa.OpponentUsername)
	assert.Equal(t, "alice", pb.OpponentUsername)

	writeEvent(t, alice, arena.EventGameMove, json.RawMessage(`{"X": 1, "Y": 1}`))

	for _, conn := range []*websocket.Conn{alice, bob} {
		env := readEvent(t, conn, arena.EventGameStateUpdate)

		var p arena.GameStateUpdatePayload
		require.NoError(t, json.Unmarshal(env.Payload, &p))
		assert.JSONEq(t, `{"X": 1, "Y": 1}`, string(p.Move))
	}
}

func TestInviteDeclineOverWire(t *testing.T) {
	srv := newTestServer(t)

	alice := dialWS(t, srv, "alice")
	readEvent(t, alice, arena.EventUsernameAccepted)
	bob := dialWS(t, srv, "bob")
	readEvent(t, bob, arena.EventUsernameAccepted)

	writeEvent(t, alice, arena.EventInvitePlayer, arena.InvitePlayerPayload{
		InviteeUsername: "bob",
		Game:            "chess",
	})

	var inv arena.Invite
	require.NoError(t, json.Unmarshal(readEvent(t, bob, arena.EventGameInvite).Payload, &inv))
	assert.Equal(t, "alice", inv.SenderUsername)

	writeEvent(t, bob, arena.EventDeclineInvite, arena.InviteIDPayload{ID: inv.ID})

	var declined arena.Invite
	require.NoError(t, json.Unmarshal(readEvent(t, alice, arena.EventInviteDeclined).Payload, &declined))
	assert.Equal(t, inv.ID, declined.ID)

	// Accepting the declined invite reports it gone.
	writeEvent(t, bob, arena.EventAcceptInvite, arena.InviteIDPayload{ID: inv.ID})

	var p arena.ErrorPayload
	require.NoError(t, json.Unmarshal(readEvent(t, bob, arena.EventError).Payload, &p))
	assert.Equal(t, errs.ErrInviteNotFound, p.Code)
}

func TestDisconnectFreesUsernameOverWire(t *testing.T) {
	srv := newTestServer(t)

	first := dialWS(t, srv, "alice")
	readEvent(t, first, arena.EventUsernameAccepted)
	require.NoError(t, first.Close())

	// The hub processes the disconnect asynchronously; the rejoin retries
	// until the name is released.
	deadline := time.Now().Add(3 * time.Second)
	for {
		conn := dialWS(t, srv, "alice")
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))

		var env arena.Envelope
		require.NoError(t, conn.ReadJSON(&env))
		if env.Type == arena.EventUsernameAccepted {
			return
		}

		conn.Close()
		if time.Now().After(deadline) {
			t.Fatal("username was never released after disconnect")
		}
		time.Sleep(100 * time.Millisecond)
	}
}
