package arena

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parlor/internal/app/games"
)

// newManager builds a SessionManager over fresh registries, bypassing the hub.
// All calls in these tests run on the test goroutine, which stands in for the
// hub goroutine.
func newManager() *SessionManager {
	invites := NewInviteDirectory(time.Minute, func(string, uint64) {})
	return NewSessionManager(NewLobby(), invites)
}

// recvEnvelope pops the next queued outbound frame. Delivery is synchronous in
// these tests, so an empty queue is a failure, not a race.
func recvEnvelope(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		var env Envelope
		require.NoError(t, json.Unmarshal(msg, &env))
		return env
	default:
		t.Fatal("no event queued")
		return Envelope{}
	}
}

func requireEvent(t *testing.T, c *Client, eventType EventType) Envelope {
	t.Helper()
	env := recvEnvelope(t, c)
	require.Equal(t, eventType, env.Type)
	return env
}

func assertNoEvent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case msg := <-c.send:
		t.Fatalf("unexpected queued event: %s", msg)
	default:
	}
}

func decodePayload(t *testing.T, env Envelope, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Payload, dst))
}

func startSession(t *testing.T, m *SessionManager, kind games.Kind) (*Client, *Client) {
	t.Helper()
	a := NewClient(nil, nil, "alice")
	b := NewClient(nil, nil, "bob")

	_, err := m.Create(a, b, kind, games.Params{})
	require.NoError(t, err)

	requireEvent(t, a, EventStartGame)
	requireEvent(t, b, EventStartGame)
	return a, b
}

func TestSessionCreateNotifiesBothPlayers(t *testing.T) {
	m := newManager()
	a := NewClient(nil, nil, "alice")
	b := NewClient(nil, nil, "bob")

	s, err := m.Create(a, b, games.TicTacToe, games.Params{})
	require.NoError(t, err)

	assert.Same(t, s, a.session)
	assert.Same(t, s, b.session)
	assert.NotEmpty(t, s.RoomID)
	assert.Same(t, b, s.Opponent(a))
	assert.Same(t, a, s.Opponent(b))

	var p StartGamePayload
	decodePayload(t, requireEvent(t, a, EventStartGame), &p)
	assert.Equal(t, games.TicTacToe, p.Game)
	assert.Equal(t, "bob", p.OpponentUsername)

	decodePayload(t, requireEvent(t, b, EventStartGame), &p)
	assert.Equal(t, "alice", p.OpponentUsername)
}

func TestSessionCreateClearsLobbyAndInvites(t *testing.T) {
	lobby := NewLobby()
	invites := NewInviteDirectory(time.Minute, func(string, uint64) {})
	m := NewSessionManager(lobby, invites)

	a := NewClient(nil, nil, "alice")
	b := NewClient(nil, nil, "bob")

	lobby.Join("alice", games.Chess)
	lobby.Join("bob", games.TicTacToe)
	invites.Create("alice", "carol", games.Chess, games.Params{})
	invites.Create("dave", "bob", games.Chess, games.Params{})

	_, err := m.Create(a, b, games.TicTacToe, games.Params{})
	require.NoError(t, err)

	assert.Empty(t, lobby.Waiting(games.Chess))
	assert.Empty(t, lobby.Waiting(games.TicTacToe))
	assert.Equal(t, 0, invites.Len())
}

func TestSessionSelectSideDistinctRequests(t *testing.T) {
	m := newManager()
	a, b := startSession(t, m, games.Chess)

	m.SelectSide(a, games.SideWhite)
	// Nothing is confirmed until both players have chosen.
	assertNoEvent(t, a)

	m.SelectSide(b, games.SideBlack)

	var p SelectSidePayload
	decodePayload(t, requireEvent(t, b, EventSetSide), &p)
	assert.Equal(t, games.SideBlack, p.Side)
	decodePayload(t, requireEvent(t, a, EventSetSide), &p)
	assert.Equal(t, games.SideWhite, p.Side)
}

func TestSessionSelectSideCollisionCoinFlip(t *testing.T) {
	m := newManager()
	a, b := startSession(t, m, games.Chess)

	m.SelectSide(a, games.SideWhite)
	m.SelectSide(b, games.SideWhite)

	var pb, pa SelectSidePayload
	decodePayload(t, requireEvent(t, b, EventSetSide), &pb)
	decodePayload(t, requireEvent(t, a, EventSetSide), &pa)

	// The coin flip hands out the canonical pair, one side each.
	assert.NotEqual(t, pa.Side, pb.Side)
	assert.True(t, games.Chess.HasSide(pa.Side))
	assert.True(t, games.Chess.HasSide(pb.Side))

	assert.Equal(t, pa.Side, a.session.Side(a))
	assert.Equal(t, pb.Side, b.session.Side(b))
}

func TestSessionSelectSideIgnoresInvalidAndRepeated(t *testing.T) {
	m := newManager()
	a, b := startSession(t, m, games.Chess)

	// "X" is not a chess side.
	m.SelectSide(a, games.SideX)
	assertNoEvent(t, a)
	assert.Empty(t, a.session.Side(a))

	m.SelectSide(a, games.SideWhite)
	m.SelectSide(b, games.SideBlack)
	requireEvent(t, b, EventSetSide)
	requireEvent(t, a, EventSetSide)

	// A finalized side never changes.
	m.SelectSide(a, games.SideBlack)
	assertNoEvent(t, a)
	assert.Equal(t, games.SideWhite, a.session.Side(a))
}

func TestSessionSelectSideWithoutSessionIsIgnored(t *testing.T) {
	m := newManager()
	a := NewClient(nil, nil, "alice")

	m.SelectSide(a, games.SideWhite)
	assertNoEvent(t, a)
}

func TestSessionRelayMoveBroadcastsStateAndMove(t *testing.T) {
	m := newManager()
	a, b := startSession(t, m, games.TicTacToe)

	raw := json.RawMessage(`{"X": 1, "Y": 1}`)
	m.RelayMove(a, raw)

	for _, c := range []*Client{a, b} {
		var p GameStateUpdatePayload
		decodePayload(t, requireEvent(t, c, EventGameStateUpdate), &p)
		assert.JSONEq(t, string(raw), string(p.Move))

		state, err := json.Marshal(p.State)
		require.NoError(t, err)
		assert.Contains(t, string(state), `"turn":"O"`)
	}
}

func TestSessionRelayMoveDropsMalformedPayload(t *testing.T) {
	m := newManager()
	a, b := startSession(t, m, games.TicTacToe)

	m.RelayMove(a, json.RawMessage(`{"X": 1}`))
	m.RelayMove(a, json.RawMessage(`{"X": 1, "Y": 1, "Z": 9}`))
	m.RelayMove(a, json.RawMessage(`not json`))

	assertNoEvent(t, a)
	assertNoEvent(t, b)
}

func TestSessionRelayMoveDropsIllegalMove(t *testing.T) {
	m := newManager()
	a, b := startSession(t, m, games.TicTacToe)

	m.RelayMove(a, json.RawMessage(`{"X": 0, "Y": 0}`))
	requireEvent(t, a, EventGameStateUpdate)
	requireEvent(t, b, EventGameStateUpdate)

	// The cell is taken; the engine rejects and nothing is broadcast.
	m.RelayMove(b, json.RawMessage(`{"X": 0, "Y": 0}`))
	assertNoEvent(t, a)
	assertNoEvent(t, b)
}

func TestSessionRelayMoveWithoutSessionForcesLeave(t *testing.T) {
	m := newManager()
	a := NewClient(nil, nil, "alice")

	m.RelayMove(a, json.RawMessage(`{"X": 0, "Y": 0}`))
	requireEvent(t, a, EventLeaveGame)
}

func TestSessionLeaveTearsDownBothEnds(t *testing.T) {
	m := newManager()
	a, b := startSession(t, m, games.TicTacToe)

	m.Leave(a)

	requireEvent(t, a, EventLeaveGame)
	requireEvent(t, b, EventLeaveGame)
	assert.Nil(t, a.session)
	assert.Nil(t, b.session)

	// Leaving again is a no-op.
	m.Leave(a)
	assertNoEvent(t, a)
	assertNoEvent(t, b)
}

func TestSessionLeaveSurvivesRename(t *testing.T) {
	m := newManager()
	a, b := startSession(t, m, games.TicTacToe)

	// Membership is keyed by connection, so a renamed participant is still
	// reachable when the peer tears the room down.
	a.username = "alicia"

	m.Leave(b)

	requireEvent(t, a, EventLeaveGame)
	requireEvent(t, b, EventLeaveGame)
	assert.Nil(t, a.session)
	assert.Nil(t, b.session)
}

func TestSessionBroadcastReachesRenamedParticipant(t *testing.T) {
	m := newManager()
	a, b := startSession(t, m, games.TicTacToe)

	b.username = "robert"

	m.RelayMove(a, json.RawMessage(`{"X": 0, "Y": 0}`))
	requireEvent(t, a, EventGameStateUpdate)
	requireEvent(t, b, EventGameStateUpdate)
}

func TestSessionRematch(t *testing.T) {
	m := newManager()
	a, b := startSession(t, m, games.TicTacToe)

	// Finish a game so the rematch replaces a used engine.
	for _, mv := range []string{
		`{"X": 0, "Y": 0}`, `{"X": 0, "Y": 1}`,
		`{"X": 1, "Y": 0}`, `{"X": 1, "Y": 1}`,
		`{"X": 2, "Y": 0}`,
	} {
		m.RelayMove(a, json.RawMessage(mv))
		requireEvent(t, a, EventGameStateUpdate)
		requireEvent(t, b, EventGameStateUpdate)
	}

	m.Rematch(a)
	assertNoEvent(t, a)
	assert.True(t, a.session.RematchRequested(a))

	m.Rematch(b)
	requireEvent(t, a, EventNewGame)
	requireEvent(t, b, EventNewGame)

	// Both flags reset and the board is fresh.
	assert.False(t, a.session.RematchRequested(a))
	assert.False(t, a.session.RematchRequested(b))

	m.RelayMove(b, json.RawMessage(`{"X": 0, "Y": 0}`))
	var p GameStateUpdatePayload
	decodePayload(t, requireEvent(t, a, EventGameStateUpdate), &p)
	requireEvent(t, b, EventGameStateUpdate)
}

func TestSessionRematchWithDepartedOpponent(t *testing.T) {
	m := newManager()
	a, b := startSession(t, m, games.TicTacToe)

	// Simulate bob's end having been torn down out of band.
	b.session = nil

	m.Rematch(a)
	requireEvent(t, a, EventLeaveGame)
	assert.Nil(t, a.session)
}

func TestSessionSelectSideWithDepartedOpponent(t *testing.T) {
	m := newManager()
	a, b := startSession(t, m, games.Chess)

	b.session = nil

	m.SelectSide(a, games.SideWhite)
	requireEvent(t, a, EventLeaveGame)
	assert.Nil(t, a.session)
}
