/*
Package games contains the rule engines for the supported two-player games.

This file implements the plain tic-tac-toe engine with a configurable board
size and win length (e.g. 15/5 plays gomoku on the same engine).
*/
package games

import "fmt"

const (
	defaultBoardSize    = 3
	defaultWinCondition = 3
	maxBoardSize        = 19
)

type ticTacToeGame struct {
	size   int
	win    int
	board  [][]string
	turn   Side
	winner Side
	draw   bool
	moves  int
}

// TicTacToeState is the serializable snapshot broadcast after each accepted move.
type TicTacToeState struct {
	Board        [][]string `json:"board"`
	BoardSize    int        `json:"boardSize"`
	WinCondition int        `json:"winCondition"`
	Turn         string     `json:"turn"`
	Winner       string     `json:"winner,omitempty"`
	Draw         bool       `json:"draw,omitempty"`
}

func validateTicTacToeParams(p Params) error {
	size := p.BoardSize
	if size == 0 {
		size = defaultBoardSize
	}
	win := p.WinCondition
	if win == 0 {
		win = defaultWinCondition
	}

	if size < defaultBoardSize || size > maxBoardSize {
		return fmt.Errorf("%w: board size %d not in [%d,%d]", ErrInvalidParams, size, defaultBoardSize, maxBoardSize)
	}
	if win < defaultWinCondition || win > size {
		return fmt.Errorf("%w: win condition %d not in [%d,%d]", ErrInvalidParams, win, defaultWinCondition, size)
	}
	return nil
}

func newTicTacToe(p Params) (*ticTacToeGame, error) {
	if err := validateTicTacToeParams(p); err != nil {
		return nil, err
	}

	size := p.BoardSize
	if size == 0 {
		size = defaultBoardSize
	}
	win := p.WinCondition
	if win == 0 {
		win = defaultWinCondition
	}

	board := make([][]string, size)
	for i := range board {
		board[i] = make([]string, size)
	}

	return &ticTacToeGame{
		size:  size,
		win:   win,
		board: board,
		turn:  SideX,
	}, nil
}

func (g *ticTacToeGame) Apply(mv Move) error {
	m, ok := mv.(TicTacToeMove)
	if !ok {
		return fmt.Errorf("%w: wrong move type %T", ErrIllegalMove, mv)
	}

	if g.winner != "" || g.draw {
		return fmt.Errorf("%w: game is over", ErrIllegalMove)
	}
	if m.X < 0 || m.X >= g.size || m.Y < 0 || m.Y >= g.size {
		return fmt.Errorf("%w: cell (%d,%d) out of bounds", ErrIllegalMove, m.X, m.Y)
	}
	if g.board[m.Y][m.X] != "" {
		return fmt.Errorf("%w: cell (%d,%d) already marked", ErrIllegalMove, m.X, m.Y)
	}

	g.board[m.Y][m.X] = string(g.turn)
	g.moves++

	if g.winsAt(m.X, m.Y) {
		g.winner = g.turn
	} else if g.moves == g.size*g.size {
		g.draw = true
	}

	g.turn = opposite(TicTacToe, g.turn)
	return nil
}

// winsAt reports whether the mark just placed at (x, y) completes a run of
// at least g.win marks in any of the four line directions.
func (g *ticTacToeGame) winsAt(x, y int) bool {
	mark := g.board[y][x]
	dirs := [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

	for _, d := range dirs {
		run := 1
		for _, sign := range [2]int{1, -1} {
			cx, cy := x+sign*d[0], y+sign*d[1]
			for cx >= 0 && cx < g.size && cy >= 0 && cy < g.size && g.board[cy][cx] == mark {
				run++
				cx += sign * d[0]
				cy += sign * d[1]
			}
		}
		if run >= g.win {
			return true
		}
	}
	return false
}

func (g *ticTacToeGame) Snapshot() any {
	board := make([][]string, g.size)
	for i, row := range g.board {
		board[i] = append([]string(nil), row...)
	}

	return TicTacToeState{
		Board:        board,
		BoardSize:    g.size,
		WinCondition: g.win,
		Turn:         string(g.turn),
		Winner:       string(g.winner),
		Draw:         g.draw,
	}
}
