// Package tui is a terminal board for playing against the computer or a
// second player on the same keyboard.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"

	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/ai"
	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/app"
	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/domain"
)

// computerMoveMsg asks the model to play the computer's reply for a round.
type computerMoveMsg struct{ round int }

// Model is the bubbletea model for one terminal session.
type Model struct {
	game     domain.Game
	mode     app.Mode
	cursor   int
	thinking bool
	round    int
	delay    time.Duration
	notice   string
	out      *termenv.Output
}

// New returns a model with an empty board. out controls styling; pass an
// Ascii-profile output to disable escape sequences.
func New(mode app.Mode, delay time.Duration, out *termenv.Output) Model {
	return Model{game: domain.New(), mode: mode, cursor: 4, delay: delay, out: out}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())
	case computerMoveMsg:
		if msg.round != m.round || !m.thinking {
			return m, nil
		}
		m.thinking = false
		if move, ok := ai.BestMove(m.game.Board); ok {
			_ = m.game.Play(move)
			m.cursor = move
		}
	}
	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	m.notice = ""
	switch key {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor >= 3 {
			m.cursor -= 3
		}
	case "down", "j":
		if m.cursor < 6 {
			m.cursor += 3
		}
	case "left", "h":
		if m.cursor%3 > 0 {
			m.cursor--
		}
	case "right", "l":
		if m.cursor%3 < 2 {
			m.cursor++
		}
	case "enter", " ":
		return m.place(m.cursor)
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		m.cursor = int(key[0] - '1')
		return m.place(m.cursor)
	case "r":
		m.restart()
	case "m":
		if m.mode == app.ModeComputer {
			m.mode = app.ModePvP
		} else {
			m.mode = app.ModeComputer
		}
		m.restart()
	}
	return m, nil
}

func (m *Model) restart() {
	m.game.Reset()
	m.round++
	m.thinking = false
	m.cursor = 4
}

func (m Model) place(idx int) (tea.Model, tea.Cmd) {
	if m.thinking {
		m.notice = "AI is thinking"
		return m, nil
	}
	if err := m.game.Play(idx); err != nil {
		m.notice = err.Error()
		return m, nil
	}
	if m.mode != app.ModeComputer || m.game.Over {
		return m, nil
	}
	m.thinking = true
	round := m.round
	if m.delay <= 0 {
		return m, func() tea.Msg { return computerMoveMsg{round: round} }
	}
	return m, tea.Tick(m.delay, func(time.Time) tea.Msg { return computerMoveMsg{round: round} })
}

// State exposes the session as a service snapshot, for status text and tests.
func (m Model) State() app.GameState {
	return app.GameState{Mode: m.mode, Game: m.game, Thinking: m.thinking, Round: m.round}
}

func (m Model) View() string {
	var win [domain.Size]bool
	for _, i := range m.game.WinningCells() {
		win[i] = true
	}
	var sb strings.Builder
	sb.WriteString("Tic Tac Toe\n\n")
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			i := r*3 + c
			sym := m.game.Board[i].String()
			if sym == "" {
				sym = " "
			}
			cell := fmt.Sprintf(" %s ", sym)
			if i == m.cursor && !m.game.Over {
				cell = "[" + sym + "]"
			}
			st := m.out.String(cell)
			if win[i] {
				st = st.Bold().Foreground(m.out.Color("#ffd35c")).Background(m.out.Color("#1a3a2a"))
			}
			sb.WriteString(st.String())
			if c < 2 {
				sb.WriteString("|")
			}
		}
		sb.WriteString("\n")
		if r < 2 {
			sb.WriteString("---+---+---\n")
		}
	}
	sb.WriteString("\n")
	sb.WriteString(m.State().Status())
	sb.WriteString("\n")
	if m.notice != "" {
		sb.WriteString(m.notice + "\n")
	}
	mode := "Vs AI"
	if m.mode == app.ModePvP {
		mode = "PvP"
	}
	fmt.Fprintf(&sb, "\nMode: %s  (arrows move, enter plays, r restart, m mode, q quit)\n", mode)
	return sb.String()
}
