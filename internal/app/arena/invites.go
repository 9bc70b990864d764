/*
Package arena contains the core logic for pairing named connections into two-party
game sessions and relaying validated moves between them.

This file defines the InviteDirectory, the TTL-bounded store of directed game
invites. Invites are deduplicated on the exact (sender, invitee, game, params)
tuple: a repeat request refreshes the existing invite's deadline instead of
creating a second record.
*/
package arena

import (
	"time"

	"github.com/rs/zerolog"

	"parlor/internal/app/games"
	"parlor/internal/pkg/logx"
	"parlor/internal/pkg/randx"
)

// Invite is one directed, TTL-bounded game invite. Copies of this struct are
// what the directory hands out; callers never see live records.
type Invite struct {
	ID              string        `json:"id"`
	SenderUsername  string        `json:"senderUsername"`
	InviteeUsername string        `json:"inviteeUsername"`
	Game            games.Kind    `json:"game"`
	Params          *games.Params `json:"params,omitempty"`
	ExpiresAt       time.Time     `json:"expiresAt"`
}

// inviteKey is the dedup tuple for active invites.
type inviteKey struct {
	sender  string
	invitee string
	game    games.Kind
	params  games.Params
}

// inviteRecord is the live record behind an Invite, carrying the expiry timer.
// gen increments on every deadline reset so a stale timer firing after a reset
// identifies itself and is discarded.
type inviteRecord struct {
	invite Invite
	params games.Params
	timer  *time.Timer
	gen    uint64
}

// InviteFilter selects invites by the conjunction of its non-zero fields.
// The zero filter matches every invite.
type InviteFilter struct {
	Sender  string
	Invitee string
	Game    games.Kind
}

func (f InviteFilter) matches(inv Invite) bool {
	if f.Sender != "" && inv.SenderUsername != f.Sender {
		return false
	}
	if f.Invitee != "" && inv.InviteeUsername != f.Invitee {
		return false
	}
	if f.Game != "" && inv.Game != f.Game {
		return false
	}
	return true
}

// InviteDirectory stores the active invites and schedules their expiry.
// All methods are invoked from the hub goroutine only; the expiry callback is
// the one asynchronous boundary, and it must route back into the hub loop.
type InviteDirectory struct {
	ttl      time.Duration
	records  map[string]*inviteRecord
	ids      map[inviteKey]string
	onExpire func(id string, gen uint64)
	logger   zerolog.Logger
}

// NewInviteDirectory returns an empty directory. onExpire is called from a
// timer goroutine when an invite's deadline passes; the receiver resolves it
// by calling Expire with the same arguments.
func NewInviteDirectory(ttl time.Duration, onExpire func(id string, gen uint64)) *InviteDirectory {
	return &InviteDirectory{
		ttl:      ttl,
		records:  make(map[string]*inviteRecord),
		ids:      make(map[inviteKey]string),
		onExpire: onExpire,
		logger:   logx.Logger().With().Str("component", "InviteDirectory").Logger(),
	}
}

// Create stores a new invite, or refreshes the deadline of the active invite
// matching the exact (sender, invitee, game, params) tuple. The previously
// scheduled expiry is cancelled before the new one is scheduled. The returned
// bool is true when a new record was created.
func (d *InviteDirectory) Create(sender, invitee string, kind games.Kind, params games.Params) (Invite, bool) {
	key := inviteKey{sender: sender, invitee: invitee, game: kind, params: params}

	if id, ok := d.ids[key]; ok {
		rec := d.records[id]
		rec.timer.Stop()
		rec.gen++
		rec.invite.ExpiresAt = time.Now().Add(d.ttl)
		d.schedule(rec)

		d.logger.Debug().Str("invite_id", id).Msg("Invite deadline refreshed.")
		return rec.invite, false
	}

	rec := &inviteRecord{
		invite: Invite{
			ID:              randx.InviteID(),
			SenderUsername:  sender,
			InviteeUsername: invitee,
			Game:            kind,
			ExpiresAt:       time.Now().Add(d.ttl),
		},
		params: params,
	}
	if params != (games.Params{}) {
		p := params
		rec.invite.Params = &p
	}

	d.records[rec.invite.ID] = rec
	d.ids[key] = rec.invite.ID
	d.schedule(rec)

	d.logger.Debug().
		Str("invite_id", rec.invite.ID).
		Str("sender", sender).
		Str("invitee", invitee).
		Str("game", string(kind)).
		Msg("Invite created.")
	return rec.invite, true
}

func (d *InviteDirectory) schedule(rec *inviteRecord) {
	id, gen := rec.invite.ID, rec.gen
	rec.timer = time.AfterFunc(time.Until(rec.invite.ExpiresAt), func() {
		d.onExpire(id, gen)
	})
}

// Get returns a copy of the invite with the given id.
func (d *InviteDirectory) Get(id string) (Invite, bool) {
	rec, ok := d.records[id]
	if !ok {
		return Invite{}, false
	}
	return rec.invite, true
}

// Remove cancels and deletes the invite with the given id. Idempotent; returns
// a copy of the removed invite when one existed.
func (d *InviteDirectory) Remove(id string) (Invite, bool) {
	rec, ok := d.records[id]
	if !ok {
		return Invite{}, false
	}

	rec.timer.Stop()
	delete(d.records, id)
	delete(d.ids, d.keyOf(rec))
	return rec.invite, true
}

// Expire removes the invite only if it still exists and gen matches the
// record's current generation. A stale timer fire after a reset or removal
// fails the generation check and has no effect.
func (d *InviteDirectory) Expire(id string, gen uint64) (Invite, bool) {
	rec, ok := d.records[id]
	if !ok || rec.gen != gen {
		return Invite{}, false
	}
	return d.Remove(id)
}

// RemoveFor cancels and deletes every invite in which username is the sender
// or the invitee, returning copies of the removed invites. Used on disconnect
// and rename.
func (d *InviteDirectory) RemoveFor(username string) []Invite {
	var removed []Invite
	for id, rec := range d.records {
		if rec.invite.SenderUsername == username || rec.invite.InviteeUsername == username {
			if inv, ok := d.Remove(id); ok {
				removed = append(removed, inv)
			}
		}
	}
	return removed
}

// List returns copies of all invites matching the filter.
func (d *InviteDirectory) List(filter InviteFilter) []Invite {
	matched := make([]Invite, 0, len(d.records))
	for _, rec := range d.records {
		if filter.matches(rec.invite) {
			matched = append(matched, rec.invite)
		}
	}
	return matched
}

// Len returns the number of active invites.
func (d *InviteDirectory) Len() int {
	return len(d.records)
}

// Clear cancels every pending expiry and empties the directory. Used during
// hub shutdown.
func (d *InviteDirectory) Clear() {
	for _, rec := range d.records {
		rec.timer.Stop()
	}
	d.records = make(map[string]*inviteRecord)
	d.ids = make(map[inviteKey]string)
}

func (d *InviteDirectory) keyOf(rec *inviteRecord) inviteKey {
	return inviteKey{
		sender:  rec.invite.SenderUsername,
		invitee: rec.invite.InviteeUsername,
		game:    rec.invite.Game,
		params:  rec.params,
	}
}
