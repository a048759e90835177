package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/domain"
)

func board(t *testing.T, s string) domain.Board {
	t.Helper()
	b, err := domain.ParseBoard(s)
	require.NoError(t, err)
	return b
}

// mirrored swaps X and O so the O-side search can choose moves for X.
func mirrored(b domain.Board) domain.Board {
	for i, c := range b {
		b[i] = c.Opponent()
	}
	return b
}

func TestBestMoveTakesImmediateWin(t *testing.T) {
	move, ok := BestMove(board(t, "OO.XX...."))
	require.True(t, ok)
	assert.Equal(t, 2, move)
}

func TestBestMoveBlocksThreat(t *testing.T) {
	move, ok := BestMove(board(t, "XX..O...."))
	require.True(t, ok)
	assert.Equal(t, 2, move)

	move, ok = BestMove(board(t, "X.X.O...."))
	require.True(t, ok)
	assert.Equal(t, 1, move)

	// winning beats blocking
	move, ok = BestMove(board(t, "OO.XX.X.."))
	require.True(t, ok)
	assert.Equal(t, 2, move)
}

func TestBestMovePrefersFastestWin(t *testing.T) {
	r := Search(board(t, "OO.XX.X.."))
	require.True(t, r.Found)
	assert.Equal(t, 2, r.Move)
	assert.Equal(t, winScore, r.Score)
}

func TestBestMoveEmptyBoard(t *testing.T) {
	move, ok := BestMove(domain.Board{})
	require.True(t, ok)
	assert.Contains(t, []int{0, 2, 4, 6, 8}, move)
	// every opening draws, so the lowest index wins the tie
	assert.Equal(t, 0, move)
}

func TestBestMoveFullBoard(t *testing.T) {
	move, ok := BestMove(board(t, "XOXXOOOXX"))
	assert.False(t, ok)
	assert.Equal(t, -1, move)
	assert.Equal(t, 0, Evaluate(board(t, "XOXXOOOXX")))
}

func TestBestMoveRunsOnDecidedBoard(t *testing.T) {
	// X already won; the search still answers with some empty cell
	b := board(t, "XXXOO....")
	move, ok := BestMove(b)
	require.True(t, ok)
	assert.Equal(t, domain.Empty, b[move])
}

func TestIdempotentAndNonMutating(t *testing.T) {
	b := board(t, "X...O...X")
	before := b
	first, ok := BestMove(b)
	require.True(t, ok)
	for i := 0; i < 5; i++ {
		again, _ := BestMove(b)
		assert.Equal(t, first, again)
		assert.Equal(t, domain.Empty, domain.CheckWinner(b))
		assert.False(t, domain.IsDraw(b))
	}
	assert.Equal(t, before, b)
}

func TestSelfPlayDraws(t *testing.T) {
	g := domain.New()
	for !g.Over {
		var move int
		var ok bool
		if g.Turn == Computer {
			move, ok = BestMove(g.Board)
		} else {
			move, ok = BestMove(mirrored(g.Board))
		}
		require.True(t, ok)
		require.NoError(t, g.Play(move))
	}
	assert.True(t, g.Draw(), "self-play ended %s with winner %v", g.Board, g.Winner)
}

func TestComputerNeverLoses(t *testing.T) {
	var games, draws int
	var explore func(g domain.Game)
	explore = func(g domain.Game) {
		if g.Over {
			games++
			require.NotEqual(t, Human, g.Winner, "computer lost: %s", g.Board)
			if g.Draw() {
				draws++
			}
			return
		}
		if g.Turn == Computer {
			move, ok := BestMove(g.Board)
			require.True(t, ok)
			require.NoError(t, g.Play(move))
			explore(g)
			return
		}
		for _, idx := range g.Board.EmptyCells() {
			next := g
			require.NoError(t, next.Play(idx))
			explore(next)
		}
	}
	explore(domain.New())
	assert.Greater(t, games, 0)
	assert.Greater(t, draws, 0)
}

func TestPruningCutsTree(t *testing.T) {
	r := Search(domain.Board{})
	assert.Greater(t, r.Nodes, 0)
	// an unpruned search visits 549945 positions below the root
	assert.Less(t, r.Nodes, 549945)
}

func TestEvaluateLostPosition(t *testing.T) {
	// X forks on 0/4 with O to move: every reply loses, the block loses latest
	b := board(t, "X..OX....")
	r := Search(b)
	require.True(t, r.Found)
	assert.Equal(t, 8, r.Move)
	assert.Less(t, r.Score, 0)
	assert.Equal(t, r.Score, Evaluate(b))
}
