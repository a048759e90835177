package domain

import "errors"

// Game holds the current state of a Tic-Tac-Toe match.
type Game struct {
	Board  Board
	Turn   Cell
	Winner Cell
	Over   bool
	Moves  int
}

// Errors returned by domain operations.
var (
	ErrOutOfBounds = errors.New("out of bounds")
	ErrOccupied    = errors.New("cell occupied")
	ErrGameOver    = errors.New("game over")
)

// New returns a new game with X to move.
func New() Game {
	return Game{Turn: X}
}

// Reset clears the board and gives the first move back to X.
func (g *Game) Reset() {
	*g = New()
}

// PlayAt plays the current turn at row r, column c (0..2).
func (g *Game) PlayAt(r, c int) error {
	if g.Over {
		return ErrGameOver
	}
	if r < 0 || r > 2 || c < 0 || c > 2 {
		return ErrOutOfBounds
	}
	return g.Play(r*3 + c)
}

// Play attempts to play the current turn at cell idx (0..8).
func (g *Game) Play(idx int) error {
	if g.Over {
		return ErrGameOver
	}
	if idx < 0 || idx >= Size {
		return ErrOutOfBounds
	}
	if g.Board[idx] != Empty {
		return ErrOccupied
	}

	g.Board[idx] = g.Turn
	g.Moves++

	if w := CheckWinner(g.Board); w != Empty {
		g.Winner = w
		g.Over = true
		return nil
	}
	if IsDraw(g.Board) {
		g.Winner = Empty
		g.Over = true
		return nil
	}

	g.Turn = g.Turn.Opponent()
	return nil
}

// Draw reports whether the game ended without a winner.
func (g Game) Draw() bool {
	return g.Over && g.Winner == Empty
}

// WinningCells returns the cells to highlight once the game is won.
func (g Game) WinningCells() []int {
	if g.Winner == Empty {
		return nil
	}
	return WinningCells(g.Board)
}
