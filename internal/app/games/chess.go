/*
Package games contains the rule engines for the supported two-player games.

This file implements the chess engine: piece movement legality with path
blocking, turn alternation, king-safety rejection, automatic queen promotion,
and checkmate/stalemate detection.

TODO: castling and en passant are not implemented; add them together with a
move-history field on chessGame.
*/
package games

import "fmt"

// piece kind bytes. A zero kind marks an empty square.
const (
	pawn   = byte('P')
	knight = byte('N')
	bishop = byte('B')
	rook   = byte('R')
	queen  = byte('Q')
	king   = byte('K')
)

type piece struct {
	color Side
	kind  byte
}

func (p piece) empty() bool {
	return p.kind == 0
}

type square struct {
	file, rank int
}

type chessGame struct {
	// board is indexed [rank][file]; rank 0 is white's back rank.
	board  [8][8]piece
	turn   Side
	check  bool
	winner Side
	draw   bool
}

// ChessState is the serializable snapshot broadcast after each accepted move.
// Occupied squares hold a two-character code such as "wK" or "bP".
type ChessState struct {
	Board  [8][8]string `json:"board"`
	Turn   string       `json:"turn"`
	Check  bool         `json:"check,omitempty"`
	Winner string       `json:"winner,omitempty"`
	Draw   bool         `json:"draw,omitempty"`
}

func newChess() *chessGame {
	g := &chessGame{turn: SideWhite}

	backRank := [8]byte{rook, knight, bishop, queen, king, bishop, knight, rook}
	for file := 0; file < 8; file++ {
		g.board[0][file] = piece{color: SideWhite, kind: backRank[file]}
		g.board[1][file] = piece{color: SideWhite, kind: pawn}
		g.board[6][file] = piece{color: SideBlack, kind: pawn}
		g.board[7][file] = piece{color: SideBlack, kind: backRank[file]}
	}
	return g
}

func (g *chessGame) at(sq square) piece {
	return g.board[sq.rank][sq.file]
}

func (g *chessGame) Apply(mv Move) error {
	m, ok := mv.(ChessMove)
	if !ok {
		return fmt.Errorf("%w: wrong move type %T", ErrIllegalMove, mv)
	}

	if g.winner != "" || g.draw {
		return fmt.Errorf("%w: game is over", ErrIllegalMove)
	}

	from := square{file: m.From[0], rank: m.From[1]}
	to := square{file: m.To[0], rank: m.To[1]}

	if from == to {
		return fmt.Errorf("%w: piece did not move", ErrIllegalMove)
	}

	p := g.at(from)
	switch {
	case p.empty():
		return fmt.Errorf("%w: no piece on (%d,%d)", ErrIllegalMove, from.file, from.rank)
	case p.color != g.turn:
		return fmt.Errorf("%w: not %s's piece", ErrIllegalMove, g.turn)
	case !g.at(to).empty() && g.at(to).color == g.turn:
		return fmt.Errorf("%w: destination occupied by own piece", ErrIllegalMove)
	case !g.canReach(p, from, to):
		return fmt.Errorf("%w: %c cannot reach (%d,%d)", ErrIllegalMove, p.kind, to.file, to.rank)
	}

	undo := g.make(from, to)
	if g.kingAttacked(g.turn) {
		g.unmake(undo)
		return fmt.Errorf("%w: own king left in check", ErrIllegalMove)
	}

	mover := g.turn
	g.turn = opposite(Chess, g.turn)
	g.check = g.kingAttacked(g.turn)

	if !g.hasLegalMove(g.turn) {
		if g.check {
			g.winner = mover
		} else {
			g.draw = true
		}
	}
	return nil
}

// moveRecord captures the state needed to revert one make call.
type moveRecord struct {
	from, to square
	moved    piece
	captured piece
}

// make applies the move on the board, promoting pawns reaching the last rank
// to queens, and returns the record needed to undo it.
func (g *chessGame) make(from, to square) moveRecord {
	rec := moveRecord{from: from, to: to, moved: g.at(from), captured: g.at(to)}

	moved := rec.moved
	if moved.kind == pawn && (to.rank == 0 || to.rank == 7) {
		moved.kind = queen
	}

	g.board[to.rank][to.file] = moved
	g.board[from.rank][from.file] = piece{}
	return rec
}

func (g *chessGame) unmake(rec moveRecord) {
	g.board[rec.from.rank][rec.from.file] = rec.moved
	g.board[rec.to.rank][rec.to.file] = rec.captured
}

// canReach reports whether piece p standing on from can move to to under its
// movement pattern, including path blocking. The caller has already ruled out
// a same-color capture.
func (g *chessGame) canReach(p piece, from, to square) bool {
	df := to.file - from.file
	dr := to.rank - from.rank
	adf, adr := abs(df), abs(dr)

	switch p.kind {
	case pawn:
		dir := 1
		startRank := 1
		if p.color == SideBlack {
			dir = -1
			startRank = 6
		}

		// Straight pushes require empty squares; diagonal steps require a capture.
		if df == 0 && dr == dir {
			return g.at(to).empty()
		}
		if df == 0 && dr == 2*dir && from.rank == startRank {
			mid := square{file: from.file, rank: from.rank + dir}
			return g.at(mid).empty() && g.at(to).empty()
		}
		if adf == 1 && dr == dir {
			return !g.at(to).empty()
		}
		return false

	case knight:
		return (adf == 1 && adr == 2) || (adf == 2 && adr == 1)

	case bishop:
		return adf == adr && g.clearPath(from, to)

	case rook:
		return (df == 0 || dr == 0) && g.clearPath(from, to)

	case queen:
		return (adf == adr || df == 0 || dr == 0) && g.clearPath(from, to)

	case king:
		return adf <= 1 && adr <= 1
	}
	return false
}

// clearPath checks that every square strictly between from and to is empty.
// Only valid for straight or diagonal lines.
func (g *chessGame) clearPath(from, to square) bool {
	stepF := sign(to.file - from.file)
	stepR := sign(to.rank - from.rank)

	cur := square{file: from.file + stepF, rank: from.rank + stepR}
	for cur != to {
		if !g.at(cur).empty() {
			return false
		}
		cur.file += stepF
		cur.rank += stepR
	}
	return true
}

// kingAttacked reports whether color's king is attacked by any enemy piece.
func (g *chessGame) kingAttacked(color Side) bool {
	var kingSq square
	found := false
	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			p := g.board[rank][file]
			if p.kind == king && p.color == color {
				kingSq = square{file: file, rank: rank}
				found = true
			}
		}
	}
	if !found {
		return false
	}

	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			p := g.board[rank][file]
			if p.empty() || p.color == color {
				continue
			}
			if g.canReach(p, square{file: file, rank: rank}, kingSq) {
				return true
			}
		}
	}
	return false
}

// hasLegalMove reports whether color has at least one move that does not
// leave its own king in check.
func (g *chessGame) hasLegalMove(color Side) bool {
	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			p := g.board[rank][file]
			if p.empty() || p.color != color {
				continue
			}
			from := square{file: file, rank: rank}

			for tr := 0; tr < 8; tr++ {
				for tf := 0; tf < 8; tf++ {
					to := square{file: tf, rank: tr}
					if to == from {
						continue
					}
					dst := g.at(to)
					if !dst.empty() && dst.color == color {
						continue
					}
					if !g.canReach(p, from, to) {
						continue
					}

					undo := g.make(from, to)
					safe := !g.kingAttacked(color)
					g.unmake(undo)
					if safe {
						return true
					}
				}
			}
		}
	}
	return false
}

func (g *chessGame) Snapshot() any {
	state := ChessState{
		Turn:   string(g.turn),
		Check:  g.check,
		Winner: string(g.winner),
		Draw:   g.draw,
	}

	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			p := g.board[rank][file]
			if !p.empty() {
				state.Board[rank][file] = string(p.color) + string(p.kind)
			}
		}
	}
	return state
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
