/*
Package games contains the rule engines for the supported two-player games.

This file implements ultimate tic-tac-toe: a 3x3 macro board whose cells are
themselves 3x3 tic-tac-toe boards. The cell of each move designates the
sub-board the opponent must play in next, unless that board is already decided.
*/
package games

import "fmt"

// subBoard is one 3x3 board of the macro grid.
type subBoard struct {
	cells  [3][3]string
	winner string
	filled int
}

func (sb *subBoard) full() bool {
	return sb.filled == 9
}

// decided reports whether play in the sub-board is finished.
func (sb *subBoard) decided() bool {
	return sb.winner != "" || sb.full()
}

type uTicTacToeGame struct {
	boards [3][3]subBoard

	// active is the [x, y] sub-board the next move must target.
	// nil means any undecided sub-board is playable.
	active *[2]int

	turn    Side
	winner  Side
	draw    bool
	decided int
}

// UTicTacToeState is the serializable snapshot broadcast after each accepted move.
type UTicTacToeState struct {
	// Boards is indexed [y][x][sy][sx]; empty cells are "".
	Boards [3][3][3][3]string `json:"boards"`

	// Macro carries the winner of each decided sub-board ("" while open).
	Macro [3][3]string `json:"macro"`

	// ActiveBoard is the [x, y] sub-board to play in, or null for a free choice.
	ActiveBoard *[2]int `json:"activeBoard"`

	Turn   string `json:"turn"`
	Winner string `json:"winner,omitempty"`
	Draw   bool   `json:"draw,omitempty"`
}

func newUTicTacToe() *uTicTacToeGame {
	return &uTicTacToeGame{turn: SideX}
}

func (g *uTicTacToeGame) Apply(mv Move) error {
	m, ok := mv.(UTicTacToeMove)
	if !ok {
		return fmt.Errorf("%w: wrong move type %T", ErrIllegalMove, mv)
	}

	if g.winner != "" || g.draw {
		return fmt.Errorf("%w: game is over", ErrIllegalMove)
	}
	if g.active != nil && (m.X != g.active[0] || m.Y != g.active[1]) {
		return fmt.Errorf("%w: must play in sub-board (%d,%d)", ErrIllegalMove, g.active[0], g.active[1])
	}

	sb := &g.boards[m.Y][m.X]
	if sb.decided() {
		return fmt.Errorf("%w: sub-board (%d,%d) is decided", ErrIllegalMove, m.X, m.Y)
	}
	if sb.cells[m.SY][m.SX] != "" {
		return fmt.Errorf("%w: cell (%d,%d) in sub-board (%d,%d) already marked", ErrIllegalMove, m.SX, m.SY, m.X, m.Y)
	}

	mark := string(g.turn)
	sb.cells[m.SY][m.SX] = mark
	sb.filled++

	if subWinsAt(sb, m.SX, m.SY) {
		sb.winner = mark
		if g.macroWinsAt(m.X, m.Y) {
			g.winner = g.turn
		}
	}
	if sb.decided() {
		g.decided++
		if g.winner == "" && g.decided == 9 {
			g.draw = true
		}
	}

	// The cell played designates the opponent's sub-board.
	next := &g.boards[m.SY][m.SX]
	if next.decided() {
		g.active = nil
	} else {
		g.active = &[2]int{m.SX, m.SY}
	}

	g.turn = opposite(UTicTacToe, g.turn)
	return nil
}

// subWinsAt reports whether the mark just placed at (x, y) completes a line
// within the sub-board.
func subWinsAt(sb *subBoard, x, y int) bool {
	mark := sb.cells[y][x]

	if sb.cells[y][0] == mark && sb.cells[y][1] == mark && sb.cells[y][2] == mark {
		return true
	}
	if sb.cells[0][x] == mark && sb.cells[1][x] == mark && sb.cells[2][x] == mark {
		return true
	}
	if x == y && sb.cells[0][0] == mark && sb.cells[1][1] == mark && sb.cells[2][2] == mark {
		return true
	}
	if x+y == 2 && sb.cells[0][2] == mark && sb.cells[1][1] == mark && sb.cells[2][0] == mark {
		return true
	}
	return false
}

// macroWinsAt reports whether the sub-board just won at (x, y) completes a
// line of won sub-boards on the macro grid.
func (g *uTicTacToeGame) macroWinsAt(x, y int) bool {
	mark := g.boards[y][x].winner
	win := func(a, b, c *subBoard) bool {
		return a.winner == mark && b.winner == mark && c.winner == mark
	}

	if win(&g.boards[y][0], &g.boards[y][1], &g.boards[y][2]) {
		return true
	}
	if win(&g.boards[0][x], &g.boards[1][x], &g.boards[2][x]) {
		return true
	}
	if x == y && win(&g.boards[0][0], &g.boards[1][1], &g.boards[2][2]) {
		return true
	}
	if x+y == 2 && win(&g.boards[0][2], &g.boards[1][1], &g.boards[2][0]) {
		return true
	}
	return false
}

func (g *uTicTacToeGame) Snapshot() any {
	state := UTicTacToeState{
		Turn:   string(g.turn),
		Winner: string(g.winner),
		Draw:   g.draw,
	}

	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			state.Boards[y][x] = g.boards[y][x].cells
			state.Macro[y][x] = g.boards[y][x].winner
		}
	}

	if g.active != nil {
		active := *g.active
		state.ActiveBoard = &active
	}

	return state
}
