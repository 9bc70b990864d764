/*
Package arena contains the core logic for pairing named connections into two-party
game sessions and relaying validated moves between them.

This file defines the Lobby, a strict FIFO matchmaking queue per game kind. A
username sits in at most one queue across all game kinds at any time.
*/
package arena

import (
	"slices"

	"parlor/internal/app/games"
)

// Lobby holds the per-game queues of players awaiting an unspecified opponent.
// All methods are invoked from the hub goroutine only; see Registry.
type Lobby struct {
	queues map[games.Kind][]string
}

// NewLobby returns an empty lobby.
func NewLobby() *Lobby {
	return &Lobby{queues: make(map[games.Kind][]string)}
}

// Join enqueues username under the given game kind. Any existing queue entry
// for the username, under any kind, is removed first so the single-queue
// invariant holds.
func (l *Lobby) Join(username string, kind games.Kind) {
	l.Leave(username)
	l.queues[kind] = append(l.queues[kind], username)
}

// Leave removes username from every per-game queue. A no-op if absent.
func (l *Lobby) Leave(username string) {
	for kind, queue := range l.queues {
		filtered := slices.DeleteFunc(queue, func(name string) bool {
			return name == username
		})
		if len(filtered) == 0 {
			delete(l.queues, kind)
		} else {
			l.queues[kind] = filtered
		}
	}
}

// FindOpponent returns the earliest queued entry for the kind other than
// username itself, without mutating the queue. The caller removes both parties
// once the pairing is confirmed.
func (l *Lobby) FindOpponent(username string, kind games.Kind) (string, bool) {
	for _, name := range l.queues[kind] {
		if name != username {
			return name, true
		}
	}
	return "", false
}

// Waiting returns a copy of the queue for the given kind, earliest first.
func (l *Lobby) Waiting(kind games.Kind) []string {
	return append([]string(nil), l.queues[kind]...)
}
