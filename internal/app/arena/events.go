/*
Package arena contains the core logic for pairing named connections into two-party
game sessions and relaying validated moves between them.

This file defines the WebSocket wire protocol: the event envelope exchanged in both
directions and the payload structures for each event type.
*/
package arena

import (
	"encoding/json"

	"parlor/internal/app/games"
)

// EventType names one event of the wire protocol.
type EventType string

// Inbound event types (client to server).
const (
	EventChangeUsername   EventType = "change_username"
	EventJoinLobby        EventType = "join_lobby"
	EventLeaveLobby       EventType = "leave_lobby"
	EventInvitePlayer     EventType = "invite_player"
	EventAcceptInvite     EventType = "accept_invite"
	EventDeclineInvite    EventType = "decline_invite"
	EventFetchGameInvites EventType = "fetch_game_invites"
	EventFetchOnlineUsers EventType = "fetch_online_users"
	EventSelectSide       EventType = "select_side"
	EventGameMove         EventType = "game_move"
	EventPlayAgain        EventType = "play_again"

	// EventGetAIMove is accepted for protocol compatibility and ignored;
	// no AI backend is wired up.
	EventGetAIMove EventType = "get_ai_move"
)

// EventLeaveGame is both an inbound request to leave the current game and the
// outbound notification that the room is being torn down.
const EventLeaveGame EventType = "leave_game"

// Outbound event types (server to client).
const (
	EventUsernameAccepted  EventType = "username_accepted"
	EventUsernameDenied    EventType = "username_denied"
	EventOnlineUsersUpdate EventType = "online_users_update"
	EventGameInvite        EventType = "game_invite"
	EventGameInvitesUpdate EventType = "game_invites_update"
	EventInviteExpired     EventType = "invite_expired"
	EventInviteDeclined    EventType = "invite_declined"
	EventStartGame         EventType = "start_game"
	EventSetSide           EventType = "set_side"
	EventGameStateUpdate   EventType = "game_state_update"
	EventNewGame           EventType = "new_game"
	EventError             EventType = "error"
)

// Envelope is the JSON frame exchanged over the WebSocket in both directions.
type Envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ChangeUsernamePayload requests a new username for an established connection.
type ChangeUsernamePayload struct {
	Username string `json:"username"`
}

// UsernameAcceptedPayload confirms the connection's (possibly new) username.
type UsernameAcceptedPayload struct {
	Username string `json:"username"`
}

// UsernameDeniedPayload carries the reason a username was refused.
type UsernameDeniedPayload struct {
	Reason string `json:"reason"`
}

// OnlineUsersPayload carries the currently registered usernames.
type OnlineUsersPayload struct {
	Usernames []string `json:"usernames"`
}

// JoinLobbyPayload enqueues the sender for a game kind.
type JoinLobbyPayload struct {
	Game games.Kind `json:"game"`
}

// InvitePlayerPayload asks the server to deliver a directed game invite.
type InvitePlayerPayload struct {
	InviteeUsername string        `json:"inviteeUsername"`
	Game            games.Kind    `json:"game"`
	Params          *games.Params `json:"params,omitempty"`
}

// InviteIDPayload references an invite by id (accept, decline, expiry).
type InviteIDPayload struct {
	ID string `json:"id"`
}

// InvitesUpdatePayload carries the caller's pending invites.
type InvitesUpdatePayload struct {
	Invites []Invite `json:"invites"`
}

// StartGamePayload notifies a participant that a session has been created.
type StartGamePayload struct {
	Game             games.Kind    `json:"game"`
	OpponentUsername string        `json:"opponentUsername"`
	Params           *games.Params `json:"params,omitempty"`
}

// SelectSidePayload carries a requested or assigned side.
type SelectSidePayload struct {
	Side games.Side `json:"side"`
}

// GameStateUpdatePayload broadcasts the authoritative state after an accepted
// move, together with the move that produced it.
type GameStateUpdatePayload struct {
	State any             `json:"state"`
	Move  json.RawMessage `json:"move,omitempty"`
}

// ErrorPayload reports a business error to a single client.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
