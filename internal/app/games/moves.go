/*
Package games contains the rule engines for the supported two-player games.

This file defines the move types and the strict wire-payload parser. A payload
must carry exactly the field set of its game kind, with integer values inside
the documented ranges; anything else is rejected before an engine sees it.
*/
package games

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedMove is returned when a move payload fails shape or range validation.
var ErrMalformedMove = errors.New("malformed move payload")

// Move is a parsed, validated move for one of the supported game kinds.
type Move interface {
	isMove()
}

// TicTacToeMove places a mark at column X, row Y.
type TicTacToeMove struct {
	X int `json:"X"`
	Y int `json:"Y"`
}

func (TicTacToeMove) isMove() {}

// UTicTacToeMove places a mark in sub-board (X, Y) at cell (SX, SY).
// All coordinates are in [0, 2].
type UTicTacToeMove struct {
	X  int `json:"X"`
	Y  int `json:"Y"`
	SX int `json:"SX"`
	SY int `json:"SY"`
}

func (UTicTacToeMove) isMove() {}

// ChessMove moves the piece on From to To. Each square is a [file, rank]
// pair with both coordinates in [0, 7]; rank 0 is white's back rank.
type ChessMove struct {
	From [2]int `json:"from"`
	To   [2]int `json:"to"`
}

func (ChessMove) isMove() {}

// ParseMove decodes and validates a raw move payload for the given game kind.
// The field set must match exactly; extra fields, missing fields, non-integer
// values, and out-of-range coordinates all yield ErrMalformedMove.
func ParseMove(kind Kind, raw json.RawMessage) (Move, error) {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMove, err)
	}

	switch kind {
	case TicTacToe:
		x, err := intField(fields, "X")
		if err != nil {
			return nil, err
		}
		y, err := intField(fields, "Y")
		if err != nil {
			return nil, err
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: unexpected fields", ErrMalformedMove)
		}
		return TicTacToeMove{X: x, Y: y}, nil

	case UTicTacToe:
		mv := UTicTacToeMove{}
		for name, dst := range map[string]*int{"X": &mv.X, "Y": &mv.Y, "SX": &mv.SX, "SY": &mv.SY} {
			v, err := intField(fields, name)
			if err != nil {
				return nil, err
			}
			if v < 0 || v > 2 {
				return nil, fmt.Errorf("%w: field %s out of range [0,2]", ErrMalformedMove, name)
			}
			*dst = v
		}
		if len(fields) != 4 {
			return nil, fmt.Errorf("%w: unexpected fields", ErrMalformedMove)
		}
		return mv, nil

	case Chess:
		from, err := squareField(fields, "from")
		if err != nil {
			return nil, err
		}
		to, err := squareField(fields, "to")
		if err != nil {
			return nil, err
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: unexpected fields", ErrMalformedMove)
		}
		return ChessMove{From: from, To: to}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// intField extracts a required integer field. Fractional numbers, strings,
// and absent fields are all rejected.
func intField(fields map[string]json.RawMessage, name string) (int, error) {
	raw, ok := fields[name]
	if !ok {
		return 0, fmt.Errorf("%w: missing field %s", ErrMalformedMove, name)
	}

	var v int
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("%w: field %s is not an integer", ErrMalformedMove, name)
	}
	return v, nil
}

// squareField extracts a required [file, rank] coordinate pair with both
// values in [0, 7].
func squareField(fields map[string]json.RawMessage, name string) ([2]int, error) {
	raw, ok := fields[name]
	if !ok {
		return [2]int{}, fmt.Errorf("%w: missing field %s", ErrMalformedMove, name)
	}

	var coords []int
	if err := json.Unmarshal(raw, &coords); err != nil {
		return [2]int{}, fmt.Errorf("%w: field %s is not a coordinate pair", ErrMalformedMove, name)
	}
	if len(coords) != 2 {
		return [2]int{}, fmt.Errorf("%w: field %s must have exactly two coordinates", ErrMalformedMove, name)
	}
	for _, c := range coords {
		if c < 0 || c > 7 {
			return [2]int{}, fmt.Errorf("%w: field %s coordinate out of range [0,7]", ErrMalformedMove, name)
		}
	}
	return [2]int{coords[0], coords[1]}, nil
}
