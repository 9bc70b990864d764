/*
Package arena contains the core logic for pairing named connections into two-party
game sessions and relaying validated moves between them.

This file defines the Registry, the bijective mapping between usernames and live
connections. Usernames are case-sensitive exact strings; at most one live connection
holds a given name at any time.
*/
package arena

import (
	"sort"

	"parlor/internal/pkg/errs"
)

// Registry binds each registered username to exactly one live connection.
//
// All methods are invoked from the hub goroutine only. The hub's single-threaded
// dispatch makes every call atomic relative to all other events, so the registry
// itself carries no lock.
type Registry struct {
	conns map[string]*Client
}

// NewRegistry returns an empty username registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*Client)}
}

// Register binds username to c. It fails with ErrUsernameTaken if the name is
// already bound to a live connection.
func (r *Registry) Register(username string, c *Client) *errs.CustomError {
	if _, ok := r.conns[username]; ok {
		return errs.NewError(errs.ErrUsernameTaken, username)
	}
	r.conns[username] = c
	return nil
}

// Unregister releases the username. A no-op if the name is not registered.
func (r *Registry) Unregister(username string) {
	delete(r.conns, username)
}

// Lookup returns the connection bound to username, or nil.
func (r *Registry) Lookup(username string) *Client {
	return r.conns[username]
}

// Rename moves the binding from oldName to newName as one indivisible step.
// Because the hub processes no other event while this runs, there is no window
// in which oldName is free for another handshake mid-transition.
func (r *Registry) Rename(oldName, newName string) *errs.CustomError {
	c, ok := r.conns[oldName]
	if !ok {
		return errs.NewError(errs.ErrInvalidParams)
	}
	if _, taken := r.conns[newName]; taken {
		return errs.NewError(errs.ErrUsernameTaken, newName)
	}

	delete(r.conns, oldName)
	r.conns[newName] = c
	return nil
}

// Snapshot returns a sorted copy of the currently registered usernames.
func (r *Registry) Snapshot() []string {
	usernames := make([]string, 0, len(r.conns))
	for username := range r.conns {
		usernames = append(usernames, username)
	}
	sort.Strings(usernames)
	return usernames
}

// Len returns the number of registered usernames.
func (r *Registry) Len() int {
	return len(r.conns)
}
