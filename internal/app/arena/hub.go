/*
Package arena contains the core logic for pairing named connections into two-party
game sessions and relaying validated moves between them.

This file defines the Hub, the single event loop through which every state
mutation flows. Connection attach/detach, inbound client events, and invite
expiries are all queued onto one channel and handled to completion one at a
time, so the registries and sessions need no locking.
*/
package arena

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"parlor/internal/app/games"
	"parlor/internal/configs"
	"parlor/internal/pkg/errs"
	"parlor/internal/pkg/logx"
	"parlor/internal/pkg/randx"
)

// eventQueueSize is the capacity of the hub's event channel.
const eventQueueSize = 1024

type hubEventKind int

const (
	evConnect hubEventKind = iota
	evDisconnect
	evInbound
	evInviteExpired
)

// hubEvent is one unit of work for the hub loop. Events posted by one
// connection's goroutines arrive in the order they were posted; no ordering
// holds across distinct connections.
type hubEvent struct {
	kind    hubEventKind
	client  *Client
	event   EventType
	payload json.RawMessage

	inviteID  string
	inviteGen uint64
}

// Hub composes the registry, lobby, invite directory, and session manager and
// routes every event to them from a single goroutine.
type Hub struct {
	registry *Registry
	lobby    *Lobby
	invites  *InviteDirectory
	sessions *SessionManager

	// accepted holds the connections whose handshake the hub has confirmed.
	accepted map[*Client]struct{}

	events   chan hubEvent
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	logger zerolog.Logger
}

// NewHub constructs the hub with its four registries and starts the event loop.
func NewHub(cfg *configs.AppConfig) *Hub {
	h := &Hub{
		registry: NewRegistry(),
		lobby:    NewLobby(),
		accepted: make(map[*Client]struct{}),
		events:   make(chan hubEvent, eventQueueSize),
		stopChan: make(chan struct{}),
		logger:   logx.Logger().With().Str("component", "Hub").Logger(),
	}

	h.invites = NewInviteDirectory(cfg.InviteTTL, h.postInviteExpiry)
	h.sessions = NewSessionManager(h.lobby, h.invites)

	h.wg.Add(1)
	go h.run()

	return h
}

// Shutdown stops the event loop and waits for it to finish.
func (h *Hub) Shutdown() {
	h.stopOnce.Do(func() {
		close(h.stopChan)
	})
	h.wg.Wait()
}

// Attach hands a freshly upgraded connection to the hub. The hub confirms or
// refuses the requested username; the caller then runs the client's ReadPump.
func (h *Hub) Attach(c *Client) {
	h.post(hubEvent{kind: evConnect, client: c})
}

// postInbound queues one wire event read from the client's connection.
func (h *Hub) postInbound(c *Client, eventType EventType, payload json.RawMessage) {
	h.post(hubEvent{kind: evInbound, client: c, event: eventType, payload: payload})
}

// postDisconnect queues the client's teardown. Posted by the ReadPump on exit,
// after every inbound event from that connection.
func (h *Hub) postDisconnect(c *Client) {
	h.post(hubEvent{kind: evDisconnect, client: c})
}

// postInviteExpiry queues an invite deadline firing. Called from a timer
// goroutine; the generation lets the loop discard stale fires.
func (h *Hub) postInviteExpiry(id string, gen uint64) {
	h.post(hubEvent{kind: evInviteExpired, inviteID: id, inviteGen: gen})
}

func (h *Hub) post(ev hubEvent) {
	select {
	case h.events <- ev:
	case <-h.stopChan:
	}
}

// run is the hub's event loop. Each event is handled to completion before the
// next is dispatched.
func (h *Hub) run() {
	defer h.wg.Done()

	h.logger.Info().Msg("Hub event loop started.")

	defer func() {
		h.invites.Clear()
		for c := range h.accepted {
			c.closeSend()
		}
		h.logger.Info().Msg("Hub event loop stopped.")
	}()

	for {
		select {
		case ev := <-h.events:
			h.handleEvent(ev)
		case <-h.stopChan:
			return
		}
	}
}

func (h *Hub) handleEvent(ev hubEvent) {
	switch ev.kind {
	case evConnect:
		h.handleConnect(ev.client)
	case evDisconnect:
		h.handleDisconnect(ev.client)
	case evInbound:
		h.dispatch(ev.client, ev.event, ev.payload)
	case evInviteExpired:
		h.handleInviteExpiry(ev.inviteID, ev.inviteGen)
	}
}

// handleConnect decides the handshake: the requested username must not be
// bound to another live connection. A refused connection receives the denial
// reason and is closed without being admitted.
func (h *Hub) handleConnect(c *Client) {
	if customErr := h.registry.Register(c.username, c); customErr != nil {
		h.logger.Warn().
			Str("username", c.username).
			Msg("Handshake refused: username already taken.")

		c.sendEvent(EventUsernameDenied, UsernameDeniedPayload{Reason: customErr.Message})
		c.closeSend()
		return
	}

	h.accepted[c] = struct{}{}

	c.sendEvent(EventUsernameAccepted, UsernameAcceptedPayload{Username: c.username})
	h.broadcastOnlineUsers()

	h.logger.Info().
		Str("username", c.username).
		Int("online", h.registry.Len()).
		Msg("Client registered.")
}

// handleDisconnect runs the full cleanup cascade for a departing connection:
// session peer notification, lobby removal, invite cancellation, username
// release, online-list broadcast. It runs unconditionally, also for abnormal
// transport termination, and is a no-op for connections that were never
// admitted.
func (h *Hub) handleDisconnect(c *Client) {
	if _, ok := h.accepted[c]; !ok {
		c.closeSend()
		return
	}
	delete(h.accepted, c)

	h.sessions.Leave(c)
	h.lobby.Leave(c.username)
	h.invites.RemoveFor(c.username)

	if h.registry.Lookup(c.username) == c {
		h.registry.Unregister(c.username)
	}

	c.closeSend()
	h.broadcastOnlineUsers()

	h.logger.Info().
		Str("username", c.username).
		Int("online", h.registry.Len()).
		Msg("Client disconnected and cleaned up.")
}

// dispatch routes one wire event. Events from a connection the hub never
// admitted terminate that connection; the handshake gate cannot be bypassed
// by writing frames early.
func (h *Hub) dispatch(c *Client, eventType EventType, payload json.RawMessage) {
	if _, ok := h.accepted[c]; !ok {
		c.kick("event received before handshake was confirmed")
		return
	}

	switch eventType {
	case EventChangeUsername:
		h.handleChangeUsername(c, payload)
	case EventJoinLobby:
		h.handleJoinLobby(c, payload)
	case EventLeaveLobby:
		h.lobby.Leave(c.username)
	case EventInvitePlayer:
		h.handleInvitePlayer(c, payload)
	case EventAcceptInvite:
		h.handleAcceptInvite(c, payload)
	case EventDeclineInvite:
		h.handleDeclineInvite(c, payload)
	case EventFetchGameInvites:
		c.sendEvent(EventGameInvitesUpdate, InvitesUpdatePayload{
			Invites: h.invites.List(InviteFilter{Invitee: c.username}),
		})
	case EventFetchOnlineUsers:
		c.sendEvent(EventOnlineUsersUpdate, OnlineUsersPayload{Usernames: h.registry.Snapshot()})
	case EventSelectSide:
		h.handleSelectSide(c, payload)
	case EventGameMove:
		h.sessions.RelayMove(c, payload)
	case EventLeaveGame:
		h.sessions.Leave(c)
	case EventPlayAgain:
		h.sessions.Rematch(c)
	case EventGetAIMove:
		// Accepted for protocol compatibility; no AI backend is wired up.
	default:
		h.logger.Warn().
			Str("event_type", string(eventType)).
			Str("username", c.username).
			Msg("Client sent unsupported event type")
	}
}

// handleChangeUsername applies the rename protocol: an identical name is an
// idempotent acknowledgment, a collision is denied with the prior identity
// retained, and an accepted rename atomically rebinds the registry entry and
// cascades lobby and invite cleanup for the old name.
func (h *Hub) handleChangeUsername(c *Client, payload json.RawMessage) {
	var p ChangeUsernamePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.sendError(errs.NewError(errs.ErrInvalidEventFormat))
		return
	}

	newName := p.Username

	if newName == c.username {
		c.sendEvent(EventUsernameAccepted, UsernameAcceptedPayload{Username: newName})
		return
	}

	if !randx.IsValidUsername(newName) {
		c.sendEvent(EventUsernameDenied, UsernameDeniedPayload{
			Reason: errs.NewError(errs.ErrUsernameMissing).Message,
		})
		return
	}

	if customErr := h.registry.Rename(c.username, newName); customErr != nil {
		c.sendEvent(EventUsernameDenied, UsernameDeniedPayload{Reason: customErr.Message})
		return
	}

	oldName := c.username
	c.username = newName

	h.lobby.Leave(oldName)
	h.invites.RemoveFor(oldName)

	c.sendEvent(EventUsernameAccepted, UsernameAcceptedPayload{Username: newName})
	h.broadcastOnlineUsers()

	h.logger.Info().
		Str("old_username", oldName).
		Str("new_username", newName).
		Msg("Username changed.")
}

// handleJoinLobby pairs the caller with the earliest queued opponent for the
// game kind, or enqueues the caller when none is waiting. A popped entry whose
// connection is no longer registered is discarded and the join retried against
// the next queued entry.
func (h *Hub) handleJoinLobby(c *Client, payload json.RawMessage) {
	var p JoinLobbyPayload
	if err := json.Unmarshal(payload, &p); err != nil || !p.Game.Valid() {
		c.sendError(errs.NewError(errs.ErrGameKindInvalid))
		return
	}

	for {
		oppName, ok := h.lobby.FindOpponent(c.username, p.Game)
		if !ok {
			h.lobby.Join(c.username, p.Game)
			return
		}

		oppClient := h.registry.Lookup(oppName)
		if oppClient == nil || oppClient == c {
			// Stale queue entry; discard and retry.
			h.lobby.Leave(oppName)
			continue
		}

		if _, err := h.sessions.Create(c, oppClient, p.Game, games.Params{}); err != nil {
			h.logger.Error().Err(err).Str("game", string(p.Game)).Msg("Failed to create lobby session.")
			c.sendError(errs.NewError(errs.ErrUnknown))
		}
		return
	}
}

// handleInvitePlayer creates (or refreshes) a directed invite and delivers it
// to the invitee. An invite to an unknown or self username is dropped.
func (h *Hub) handleInvitePlayer(c *Client, payload json.RawMessage) {
	var p InvitePlayerPayload
	if err := json.Unmarshal(payload, &p); err != nil || !p.Game.Valid() {
		c.sendError(errs.NewError(errs.ErrGameKindInvalid))
		return
	}

	if p.InviteeUsername == c.username {
		c.sendError(errs.NewError(errs.ErrInvalidParams))
		return
	}

	invitee := h.registry.Lookup(p.InviteeUsername)
	if invitee == nil {
		h.logger.Debug().
			Str("invitee", p.InviteeUsername).
			Msg("Dropping invite to unknown username.")
		return
	}

	params := games.Params{}
	if p.Params != nil {
		params = *p.Params
	}
	if err := games.ValidateParams(p.Game, params); err != nil {
		c.sendError(errs.NewError(errs.ErrInvalidParams))
		return
	}

	inv, created := h.invites.Create(c.username, p.InviteeUsername, p.Game, params)
	invitee.sendEvent(EventGameInvite, inv)

	h.logger.Info().
		Str("invite_id", inv.ID).
		Str("sender", c.username).
		Str("invitee", p.InviteeUsername).
		Str("game", string(p.Game)).
		Bool("created", created).
		Msg("Invite delivered.")
}

// handleAcceptInvite pairs the invitee with the sender. The invite must exist
// and be addressed to the caller; session creation destroys it together with
// any other invites referencing either participant.
func (h *Hub) handleAcceptInvite(c *Client, payload json.RawMessage) {
	var p InviteIDPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.sendError(errs.NewError(errs.ErrInvalidEventFormat))
		return
	}

	inv, ok := h.invites.Get(p.ID)
	if !ok || inv.InviteeUsername != c.username {
		c.sendError(errs.NewError(errs.ErrInviteNotFound))
		return
	}

	sender := h.registry.Lookup(inv.SenderUsername)
	if sender == nil {
		// The disconnect cascade removes a departed sender's invites, so this
		// is unreachable unless the cascade regressed.
		h.invites.Remove(p.ID)
		c.sendError(errs.NewError(errs.ErrInviteNotFound))
		return
	}

	params := games.Params{}
	if inv.Params != nil {
		params = *inv.Params
	}

	if _, err := h.sessions.Create(c, sender, inv.Game, params); err != nil {
		h.logger.Error().Err(err).Str("invite_id", inv.ID).Msg("Failed to create invite session.")
		c.sendError(errs.NewError(errs.ErrUnknown))
	}
}

// handleDeclineInvite destroys the invite and notifies its sender.
func (h *Hub) handleDeclineInvite(c *Client, payload json.RawMessage) {
	var p InviteIDPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.sendError(errs.NewError(errs.ErrInvalidEventFormat))
		return
	}

	inv, ok := h.invites.Get(p.ID)
	if !ok || inv.InviteeUsername != c.username {
		c.sendError(errs.NewError(errs.ErrInviteNotFound))
		return
	}

	h.invites.Remove(inv.ID)

	if sender := h.registry.Lookup(inv.SenderUsername); sender != nil {
		sender.sendEvent(EventInviteDeclined, inv)
	}
}

func (h *Hub) handleSelectSide(c *Client, payload json.RawMessage) {
	var p SelectSidePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.sendError(errs.NewError(errs.ErrInvalidEventFormat))
		return
	}
	h.sessions.SelectSide(c, p.Side)
}

// handleInviteExpiry resolves a fired invite deadline. Stale fires from a
// reset or removed invite fail the generation check inside Expire.
func (h *Hub) handleInviteExpiry(id string, gen uint64) {
	inv, ok := h.invites.Expire(id, gen)
	if !ok {
		return
	}

	payload := InviteIDPayload{ID: inv.ID}
	if sender := h.registry.Lookup(inv.SenderUsername); sender != nil {
		sender.sendEvent(EventInviteExpired, payload)
	}
	if invitee := h.registry.Lookup(inv.InviteeUsername); invitee != nil {
		invitee.sendEvent(EventInviteExpired, payload)
	}

	h.logger.Info().Str("invite_id", inv.ID).Msg("Invite expired.")
}

// broadcastOnlineUsers pushes the current username list to every admitted
// connection.
func (h *Hub) broadcastOnlineUsers() {
	payload := OnlineUsersPayload{Usernames: h.registry.Snapshot()}
	for c := range h.accepted {
		c.sendEvent(EventOnlineUsersUpdate, payload)
	}
}
