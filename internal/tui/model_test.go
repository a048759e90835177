package tui

import (
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/app"
	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/domain"
)

func newModel(mode app.Mode) Model {
	return New(mode, 0, termenv.NewOutput(io.Discard, termenv.WithProfile(termenv.Ascii)))
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send applies msg and runs any returned command to completion, feeding its
// message back in. Tick commands resolve immediately with zero delay.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	for cmd != nil {
		out := cmd()
		if out == nil {
			break
		}
		if _, quit := out.(tea.QuitMsg); quit {
			break
		}
		next, cmd = m.Update(out)
		m = next.(Model)
	}
	return m
}

func TestCursorMovement(t *testing.T) {
	m := newModel(app.ModePvP)
	assert.Equal(t, 4, m.cursor)
	m = send(t, m, key("up"))
	m = send(t, m, key("up"))
	assert.Equal(t, 1, m.cursor, "cursor stays on the top row")
	m = send(t, m, key("left"))
	m = send(t, m, key("h"))
	assert.Equal(t, 0, m.cursor)
	m = send(t, m, key("j"))
	m = send(t, m, key("l"))
	assert.Equal(t, 4, m.cursor)
}

func TestComputerReplies(t *testing.T) {
	m := newModel(app.ModeComputer)
	m = send(t, m, key("5"))
	assert.Equal(t, domain.X, m.game.Board[4])
	assert.Equal(t, domain.O, m.game.Board[0])
	assert.False(t, m.thinking)
	assert.Equal(t, "Your move", m.State().Status())
}

func TestStaleComputerReplyIgnored(t *testing.T) {
	m := newModel(app.ModeComputer)
	next, cmd := m.Update(key("5"))
	m = next.(Model)
	require.NotNil(t, cmd)
	require.True(t, m.thinking)
	pending := cmd()

	m = send(t, m, key("r"))
	m = send(t, m, pending)
	assert.Equal(t, domain.Board{}, m.game.Board)
}

func TestRejectsOccupiedAndBusy(t *testing.T) {
	m := newModel(app.ModePvP)
	m = send(t, m, key("enter"))
	m = send(t, m, key("enter"))
	assert.Equal(t, domain.ErrOccupied.Error(), m.notice)
	assert.Equal(t, 1, m.game.Moves)

	c := newModel(app.ModeComputer)
	next, _ := c.Update(key("1"))
	c = next.(Model)
	next, _ = c.Update(key("2"))
	c = next.(Model)
	assert.Equal(t, "AI is thinking", c.notice)
}

func TestHotSeatWinAndView(t *testing.T) {
	m := newModel(app.ModePvP)
	for _, k := range []string{"1", "4", "2", "5", "3"} {
		m = send(t, m, key(k))
	}
	require.True(t, m.game.Over)
	view := m.View()
	assert.Contains(t, view, "Player X wins!")
	assert.Contains(t, view, " X | X | X ")
	assert.Contains(t, view, "Mode: PvP")
}

func TestModeToggleRestarts(t *testing.T) {
	m := newModel(app.ModePvP)
	m = send(t, m, key("1"))
	m = send(t, m, key("m"))
	assert.Equal(t, app.ModeComputer, m.mode)
	assert.Equal(t, 0, m.game.Moves)
	assert.True(t, strings.Contains(m.View(), "Vs AI"))
}

func TestQuit(t *testing.T) {
	m := newModel(app.ModePvP)
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}
