package domain

import (
	"fmt"
	"strings"
)

// Cell represents a board cell state.
type Cell uint8

const (
	Empty Cell = iota
	X
	O
)

func (c Cell) String() string {
	switch c {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return ""
	}
}

// Opponent returns the other mark. Empty has no opponent.
func (c Cell) Opponent() Cell {
	switch c {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

// Size is the number of cells on the board.
const Size = 9

// Board is a fixed 3x3 board stored row-major.
type Board [Size]Cell

// WinningLines lists every line in scan order: rows, columns, diagonals.
var WinningLines = [8][3]int{
	// rows
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	// cols
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	// diags
	{0, 4, 8}, {2, 4, 6},
}

// CheckWinner returns the mark of the first fully matched line, or Empty.
func CheckWinner(b Board) Cell {
	for _, ln := range WinningLines {
		if b[ln[0]] != Empty && b[ln[0]] == b[ln[1]] && b[ln[1]] == b[ln[2]] {
			return b[ln[0]]
		}
	}
	return Empty
}

// WinningCells returns the sorted union of cells on every matched line.
func WinningCells(b Board) []int {
	var hit [Size]bool
	for _, ln := range WinningLines {
		if b[ln[0]] != Empty && b[ln[0]] == b[ln[1]] && b[ln[1]] == b[ln[2]] {
			hit[ln[0]], hit[ln[1]], hit[ln[2]] = true, true, true
		}
	}
	var out []int
	for i, ok := range hit {
		if ok {
			out = append(out, i)
		}
	}
	return out
}

// IsDraw reports whether the board is full with no winner.
func IsDraw(b Board) bool {
	return b.Full() && CheckWinner(b) == Empty
}

// Full reports whether every cell is occupied.
func (b Board) Full() bool {
	for _, c := range b {
		if c == Empty {
			return false
		}
	}
	return true
}

// EmptyCells returns the indices of unoccupied cells in ascending order.
func (b Board) EmptyCells() []int {
	out := make([]int, 0, Size)
	for i, c := range b {
		if c == Empty {
			out = append(out, i)
		}
	}
	return out
}

// Count returns how many cells hold c.
func (b Board) Count(c Cell) int {
	n := 0
	for _, v := range b {
		if v == c {
			n++
		}
	}
	return n
}

// String encodes the board as 9 characters, '.' for empty cells.
func (b Board) String() string {
	var sb strings.Builder
	sb.Grow(Size)
	for _, c := range b {
		if c == Empty {
			sb.WriteByte('.')
			continue
		}
		sb.WriteString(c.String())
	}
	return sb.String()
}

// ParseBoard decodes the notation produced by Board.String. Empty cells may
// also be written as '_' or ' '; lowercase marks are accepted.
func ParseBoard(s string) (Board, error) {
	var b Board
	if len(s) != Size {
		return b, fmt.Errorf("board notation must have %d cells, got %d", Size, len(s))
	}
	for i := 0; i < Size; i++ {
		switch s[i] {
		case 'X', 'x':
			b[i] = X
		case 'O', 'o':
			b[i] = O
		case '.', '_', ' ':
			b[i] = Empty
		default:
			return b, fmt.Errorf("invalid cell %q at index %d", s[i], i)
		}
	}
	return b, nil
}
