/*
Package games contains the rule engines for the supported two-player games.

This file defines the game kind enumeration, the canonical side pairs per kind,
the capability interface every engine satisfies, and the factory that constructs
a fresh engine instance for a game session.
*/
package games

import (
	"errors"
	"fmt"
)

// Kind identifies one of the supported game types.
type Kind string

const (
	TicTacToe  Kind = "ticTacToe"
	UTicTacToe Kind = "uTicTacToe"
	Chess      Kind = "chess"
)

// Valid reports whether k names a supported game kind.
func (k Kind) Valid() bool {
	switch k {
	case TicTacToe, UTicTacToe, Chess:
		return true
	}
	return false
}

// Side is the canonical role a player occupies within a game.
type Side string

const (
	SideX     Side = "X"
	SideO     Side = "O"
	SideWhite Side = "w"
	SideBlack Side = "b"
)

// Sides returns the two canonical sides for the game kind, first mover first.
func (k Kind) Sides() [2]Side {
	if k == Chess {
		return [2]Side{SideWhite, SideBlack}
	}
	return [2]Side{SideX, SideO}
}

// HasSide reports whether side is one of the two canonical sides for the kind.
func (k Kind) HasSide(side Side) bool {
	sides := k.Sides()
	return side == sides[0] || side == sides[1]
}

// Params carries optional game-specific parameters agreed at pairing time.
// Only ticTacToe currently accepts parameters; other kinds ignore them.
type Params struct {
	BoardSize    int `json:"boardSize,omitempty"`
	WinCondition int `json:"winCondition,omitempty"`
}

var (
	// ErrUnknownKind is returned when a factory call names an unsupported game kind.
	ErrUnknownKind = errors.New("unknown game kind")

	// ErrInvalidParams is returned when game parameters are out of the accepted range.
	ErrInvalidParams = errors.New("invalid game parameters")

	// ErrIllegalMove is returned by an engine when a structurally valid move
	// violates the game rules. The engine state is unchanged.
	ErrIllegalMove = errors.New("illegal move")
)

// Game is the capability contract every rule engine satisfies. Apply either
// fully applies the move or rejects it with no partial effects. Snapshot
// returns a serializable value suitable for broadcasting to both players.
type Game interface {
	Apply(mv Move) error
	Snapshot() any
}

// New constructs a fresh engine instance for the given kind and parameters.
func New(kind Kind, params Params) (Game, error) {
	switch kind {
	case TicTacToe:
		return newTicTacToe(params)
	case UTicTacToe:
		return newUTicTacToe(), nil
	case Chess:
		return newChess(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// ValidateParams checks the parameters a client supplied for the given kind
// without constructing an engine. Kinds that take no parameters accept anything
// and ignore it at construction time.
func ValidateParams(kind Kind, params Params) error {
	if kind == TicTacToe {
		return validateTicTacToeParams(params)
	}
	return nil
}

// opposite returns the other member of a canonical side pair.
func opposite(k Kind, side Side) Side {
	sides := k.Sides()
	if side == sides[0] {
		return sides[1]
	}
	return sides[0]
}
