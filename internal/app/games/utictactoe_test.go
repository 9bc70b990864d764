package games

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUTicTacToeForcedSubBoard(t *testing.T) {
	g := newUTicTacToe()

	// X plays cell (0, 1) of the center board; O is forced into board (0, 1).
	require.NoError(t, g.Apply(UTicTacToeMove{X: 1, Y: 1, SX: 0, SY: 1}))

	state := g.Snapshot().(UTicTacToeState)
	require.NotNil(t, state.ActiveBoard)
	assert.Equal(t, [2]int{0, 1}, *state.ActiveBoard)
	assert.Equal(t, "O", state.Turn)

	assert.ErrorIs(t, g.Apply(UTicTacToeMove{X: 2, Y: 2, SX: 0, SY: 0}), ErrIllegalMove)
	require.NoError(t, g.Apply(UTicTacToeMove{X: 0, Y: 1, SX: 2, SY: 2}))
}

func TestUTicTacToeRejectsOccupiedCell(t *testing.T) {
	g := newUTicTacToe()

	require.NoError(t, g.Apply(UTicTacToeMove{X: 1, Y: 1, SX: 1, SY: 1}))
	// O is forced back into the center board and aims at the taken cell.
	assert.ErrorIs(t, g.Apply(UTicTacToeMove{X: 1, Y: 1, SX: 1, SY: 1}), ErrIllegalMove)
	require.NoError(t, g.Apply(UTicTacToeMove{X: 1, Y: 1, SX: 0, SY: 0}))
}

func TestUTicTacToeSubBoardWinUpdatesMacro(t *testing.T) {
	g := &uTicTacToeGame{turn: SideX}

	// Board (0, 0) has two X marks on its top row; X completes it.
	g.boards[0][0].cells[0][0] = "X"
	g.boards[0][0].cells[0][1] = "X"
	g.boards[0][0].filled = 2

	require.NoError(t, g.Apply(UTicTacToeMove{X: 0, Y: 0, SX: 2, SY: 0}))

	state := g.Snapshot().(UTicTacToeState)
	assert.Equal(t, "X", state.Macro[0][0])
	assert.Empty(t, state.Winner)
}

func TestUTicTacToeDecidedSubBoardIsUnplayable(t *testing.T) {
	g := &uTicTacToeGame{turn: SideX}

	g.boards[0][0].winner = "O"
	g.boards[0][0].filled = 3
	g.decided = 1

	assert.ErrorIs(t, g.Apply(UTicTacToeMove{X: 0, Y: 0, SX: 2, SY: 2}), ErrIllegalMove)
}

func TestUTicTacToeFreeChoiceWhenTargetDecided(t *testing.T) {
	g := &uTicTacToeGame{turn: SideX}

	// Board (2, 2) is already decided, so a move aimed there frees the choice.
	g.boards[2][2].winner = "O"
	g.decided = 1

	require.NoError(t, g.Apply(UTicTacToeMove{X: 1, Y: 1, SX: 2, SY: 2}))

	state := g.Snapshot().(UTicTacToeState)
	assert.Nil(t, state.ActiveBoard)

	// O may now play in any undecided board.
	require.NoError(t, g.Apply(UTicTacToeMove{X: 0, Y: 1, SX: 0, SY: 0}))
}

func TestUTicTacToeMacroWin(t *testing.T) {
	g := &uTicTacToeGame{turn: SideX}

	// X already owns the first two diagonal boards and completes the third.
	g.boards[0][0].winner = "X"
	g.boards[0][0].filled = 5
	g.boards[1][1].winner = "X"
	g.boards[1][1].filled = 5
	g.decided = 2

	g.boards[2][2].cells[0][0] = "X"
	g.boards[2][2].cells[0][1] = "X"
	g.boards[2][2].filled = 2

	require.NoError(t, g.Apply(UTicTacToeMove{X: 2, Y: 2, SX: 2, SY: 0}))

	state := g.Snapshot().(UTicTacToeState)
	assert.Equal(t, "X", state.Winner)

	assert.ErrorIs(t, g.Apply(UTicTacToeMove{X: 0, Y: 1, SX: 0, SY: 0}), ErrIllegalMove)
}

func TestUTicTacToeDrawWhenAllBoardsDecided(t *testing.T) {
	g := &uTicTacToeGame{turn: SideX}

	// Eight boards are decided without a macro line; the last fills up drawn.
	winners := [3][3]string{
		{"X", "O", "X"},
		{"X", "O", "O"},
		{"O", "X", ""},
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			if winners[y][x] != "" {
				g.boards[y][x].winner = winners[y][x]
				g.boards[y][x].filled = 5
				g.decided++
			}
		}
	}

	// Board (2, 2) is one move from full with no line for either mark.
	// X O X
	// X O O
	// O X .
	sb := &g.boards[2][2]
	sb.cells = [3][3]string{
		{"X", "O", "X"},
		{"X", "O", "O"},
		{"O", "X", ""},
	}
	sb.filled = 8

	require.NoError(t, g.Apply(UTicTacToeMove{X: 2, Y: 2, SX: 2, SY: 2}))

	state := g.Snapshot().(UTicTacToeState)
	assert.True(t, state.Draw)
	assert.Empty(t, state.Winner)
}
