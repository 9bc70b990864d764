/*
Package arena contains the core logic for pairing named connections into two-party
game sessions and relaying validated moves between them.

This file defines the Session (the paired state binding two connections to one
shared game instance) and the SessionManager, which owns pairing, side negotiation,
move relay, rematch, and teardown.
*/
package arena

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"parlor/internal/app/games"
	"parlor/internal/pkg/logx"
	"parlor/internal/pkg/randx"
)

// playerState is the per-participant slice of a session.
type playerState struct {
	side      games.Side
	playAgain bool
}

// Session is the paired state shared by exactly two participants. It exists
// for both participants or for neither; teardown always clears both ends.
type Session struct {
	// RoomID is the broadcast group identifier.
	RoomID string

	// Game and Params describe the agreed game; a rematch reuses both.
	Game   games.Kind
	Params games.Params

	// instance is the rule engine owned exclusively by this session.
	instance games.Game

	// players holds the two participants' state, keyed by connection. A
	// username rename cannot detach a participant from the room.
	players map[*Client]*playerState
}

// Opponent returns the other participant's connection.
func (s *Session) Opponent(c *Client) *Client {
	for pc := range s.players {
		if pc != c {
			return pc
		}
	}
	return nil
}

// Side returns the participant's finalized or requested side ("" when unset).
func (s *Session) Side(c *Client) games.Side {
	if ps, ok := s.players[c]; ok {
		return ps.side
	}
	return ""
}

// RematchRequested reports whether the participant's rematch flag is set.
func (s *Session) RematchRequested(c *Client) bool {
	if ps, ok := s.players[c]; ok {
		return ps.playAgain
	}
	return false
}

// SessionManager creates, mutates, and tears down game sessions. All methods
// are invoked from the hub goroutine only; see Registry.
type SessionManager struct {
	lobby   *Lobby
	invites *InviteDirectory
	logger  zerolog.Logger
}

// NewSessionManager wires the manager to the registries it transitions
// players out of when a session forms.
func NewSessionManager(lobby *Lobby, invites *InviteDirectory) *SessionManager {
	return &SessionManager{
		lobby:   lobby,
		invites: invites,
		logger:  logx.Logger().With().Str("component", "SessionManager").Logger(),
	}
}

// Create pairs a and b into a new session: it instantiates the rule engine,
// links both connections to the shared session, removes both usernames from
// all lobby queues and invites, and notifies each participant with start_game.
// The opponent name in each notification is the username held at pairing time.
func (m *SessionManager) Create(a, b *Client, kind games.Kind, params games.Params) (*Session, error) {
	instance, err := games.New(kind, params)
	if err != nil {
		return nil, err
	}

	s := &Session{
		RoomID:   randx.RoomID(),
		Game:     kind,
		Params:   params,
		instance: instance,
		players: map[*Client]*playerState{
			a: {},
			b: {},
		},
	}

	a.session = s
	b.session = s

	m.lobby.Leave(a.username)
	m.lobby.Leave(b.username)
	m.invites.RemoveFor(a.username)
	m.invites.RemoveFor(b.username)

	var p *games.Params
	if params != (games.Params{}) {
		pc := params
		p = &pc
	}

	a.sendEvent(EventStartGame, StartGamePayload{Game: kind, OpponentUsername: b.username, Params: p})
	b.sendEvent(EventStartGame, StartGamePayload{Game: kind, OpponentUsername: a.username, Params: p})

	m.logger.Info().
		Str("room_id", s.RoomID).
		Str("game", string(kind)).
		Str("player_a", a.username).
		Str("player_b", b.username).
		Msg("Game session created.")
	return s, nil
}

// SelectSide records the requested side. When both participants have
// requested and the requests differ, each is confirmed as requested; when
// they collide, a coin flip assigns the canonical pair. A finalized side
// never changes for the session's lifetime.
func (m *SessionManager) SelectSide(c *Client, side games.Side) {
	s := c.session
	if s == nil {
		return
	}

	ps := s.players[c]
	if ps == nil || ps.side != "" {
		return
	}
	if !s.Game.HasSide(side) {
		m.logger.Debug().Str("side", string(side)).Str("game", string(s.Game)).Msg("Ignoring unknown side request.")
		return
	}

	oppClient := s.Opponent(c)
	if oppClient == nil || oppClient.session != s {
		// The opponent is gone; resynchronize the requester out of the room.
		c.session = nil
		c.sendEvent(EventLeaveGame, nil)
		return
	}

	ps.side = side

	opp := s.players[oppClient]
	if opp.side == "" {
		return
	}

	if opp.side != side {
		c.sendEvent(EventSetSide, SelectSidePayload{Side: ps.side})
		oppClient.sendEvent(EventSetSide, SelectSidePayload{Side: opp.side})
		return
	}

	flip, err := randx.CoinFlip()
	if err != nil {
		m.logger.Error().Err(err).Msg("Coin flip failed; assigning sides in canonical order.")
		flip = 0
	}

	sides := s.Game.Sides()
	ps.side = sides[flip]
	opp.side = sides[1-flip]

	c.sendEvent(EventSetSide, SelectSidePayload{Side: ps.side})
	oppClient.sendEvent(EventSetSide, SelectSidePayload{Side: opp.side})
}

// RelayMove validates the raw payload against the session's game kind, applies
// it to the rule engine, and broadcasts the new state to the whole room. A
// malformed or illegal payload is dropped with no mutation and no broadcast.
// With no active session the event is answered with a forced leave so the
// client resynchronizes.
func (m *SessionManager) RelayMove(c *Client, raw json.RawMessage) {
	s := c.session
	if s == nil {
		c.sendEvent(EventLeaveGame, nil)
		return
	}

	mv, err := games.ParseMove(s.Game, raw)
	if err != nil {
		m.logger.Debug().Err(err).Str("room_id", s.RoomID).Msg("Dropping malformed move payload.")
		return
	}

	if err := s.instance.Apply(mv); err != nil {
		m.logger.Debug().Err(err).Str("room_id", s.RoomID).Msg("Rule engine rejected move.")
		return
	}

	m.broadcastRoom(s, EventGameStateUpdate, GameStateUpdatePayload{
		State: s.instance.Snapshot(),
		Move:  raw,
	})
}

// Leave tears the session down symmetrically: the whole room is notified,
// then the session reference is cleared on both participants.
func (m *SessionManager) Leave(c *Client) {
	s := c.session
	if s == nil {
		return
	}

	m.broadcastRoom(s, EventLeaveGame, nil)

	for pc := range s.players {
		if pc.session == s {
			pc.session = nil
		}
	}

	m.logger.Info().Str("room_id", s.RoomID).Str("username", c.username).Msg("Game session closed.")
}

// Rematch records the requester's rematch flag. When the opponent has already
// requested, both flags clear and a fresh engine instance replaces the old one
// in the same room. When the opponent's end of the session is gone, the
// requester is torn down and resynchronized.
func (m *SessionManager) Rematch(c *Client) {
	s := c.session
	if s == nil {
		c.sendEvent(EventLeaveGame, nil)
		return
	}

	oppClient := s.Opponent(c)
	if oppClient == nil || oppClient.session != s {
		c.session = nil
		c.sendEvent(EventLeaveGame, nil)
		return
	}

	opp := s.players[oppClient]
	if !opp.playAgain {
		s.players[c].playAgain = true
		return
	}

	instance, err := games.New(s.Game, s.Params)
	if err != nil {
		// Params were validated at session creation; this cannot normally fail.
		m.logger.Error().Err(err).Str("room_id", s.RoomID).Msg("Failed to construct rematch instance.")
		return
	}

	opp.playAgain = false
	s.players[c].playAgain = false
	s.instance = instance

	m.broadcastRoom(s, EventNewGame, nil)

	m.logger.Info().Str("room_id", s.RoomID).Str("game", string(s.Game)).Msg("Rematch started.")
}

// broadcastRoom sends the event to every connection still linked to the session.
func (m *SessionManager) broadcastRoom(s *Session, eventType EventType, payload any) {
	for pc := range s.players {
		if pc.session == s {
			pc.sendEvent(eventType, payload)
		}
	}
}
