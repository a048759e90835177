// Package ai picks moves for the computer player by searching the full game
// tree with minimax and alpha-beta pruning.
//
// The computer always plays O and is the maximizer; X is the minimizer.
package ai

import (
	"math"

	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/domain"
)

const (
	// Computer is the mark the search plays for.
	Computer = domain.O
	// Human is the opposing mark.
	Human = domain.X

	winScore = 10
)

// Result describes a completed root search.
type Result struct {
	Move  int  // best cell, -1 when the board is full
	Score int  // minimax value of Move from the computer's side
	Found bool // false when no empty cell exists
	Nodes int  // positions evaluated, root children included
}

// BestMove returns the optimal cell for the computer, or false if the board
// is full. The caller's board is never modified.
func BestMove(b domain.Board) (int, bool) {
	r := Search(b)
	return r.Move, r.Found
}

// Evaluate returns the minimax value of the position for the computer,
// assuming it is the computer's turn. A full board evaluates to its terminal
// score.
func Evaluate(b domain.Board) int {
	r := Search(b)
	if !r.Found {
		var s searcher
		return s.minimax(&b, 0, true, math.MinInt, math.MaxInt)
	}
	return r.Score
}

// Search runs the root move selection. Candidates are tried in ascending
// index order and only a strictly greater score replaces the incumbent, so
// the lowest index wins ties.
func Search(b domain.Board) Result {
	var s searcher
	res := Result{Move: -1, Score: math.MinInt}
	for i := 0; i < domain.Size; i++ {
		if b[i] != domain.Empty {
			continue
		}
		b[i] = Computer
		score := s.minimax(&b, 0, false, math.MinInt, math.MaxInt)
		b[i] = domain.Empty
		if score > res.Score {
			res.Score = score
			res.Move = i
			res.Found = true
		}
	}
	if !res.Found {
		res.Score = 0
	}
	res.Nodes = s.nodes
	return res
}

// searcher owns the scratch board for one search call.
type searcher struct {
	nodes int
}

func (s *searcher) minimax(b *domain.Board, depth int, maximizing bool, alpha, beta int) int {
	s.nodes++
	switch domain.CheckWinner(*b) {
	case Computer:
		return winScore - depth
	case Human:
		return depth - winScore
	}
	if b.Full() {
		return 0
	}

	if maximizing {
		best := math.MinInt
		for i := 0; i < domain.Size; i++ {
			if b[i] != domain.Empty {
				continue
			}
			b[i] = Computer
			val := s.minimax(b, depth+1, false, alpha, beta)
			b[i] = domain.Empty
			best = max(best, val)
			alpha = max(alpha, val)
			if beta <= alpha {
				break
			}
		}
		return best
	}

	best := math.MaxInt
	for i := 0; i < domain.Size; i++ {
		if b[i] != domain.Empty {
			continue
		}
		b[i] = Human
		val := s.minimax(b, depth+1, true, alpha, beta)
		b[i] = domain.Empty
		best = min(best, val)
		beta = min(beta, val)
		if beta <= alpha {
			break
		}
	}
	return best
}
