// Command tictactoe-tui plays tic-tac-toe in the terminal.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"

	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/app"
	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/config"
	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/tui"
)

func main() {
	cfg, err := config.Load("tictactoe-tui", os.Args[1:], nil)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	// stdout belongs to the board
	logger := cfg.NewLogger(os.Stderr)

	mode, _ := app.ParseMode(cfg.Mode)
	m := tui.New(mode, cfg.ComputerDelay, termenv.NewOutput(os.Stdout))
	if _, err := tea.NewProgram(m).Run(); err != nil {
		logger.Error("terminal session failed", "err", err)
		os.Exit(1)
	}
}
