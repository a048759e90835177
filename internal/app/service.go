package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/ai"
	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/domain"
)

// Errors exposed by the service layer.
var (
	ErrNotFound         = errors.New("game not found")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrNotAPlayer       = errors.New("not a player")
	ErrComputerThinking = errors.New("computer is thinking")
	ErrInvalidMode      = errors.New("invalid mode")
)

// Mode selects who plays O.
type Mode string

const (
	ModeComputer Mode = "computer"
	ModePvP      Mode = "pvp"
)

// ParseMode accepts "computer" or "pvp".
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeComputer, ModePvP:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// GameState is the in-memory state tracked per game.
type GameState struct {
	ID       string
	Mode     Mode
	Game     domain.Game
	X        string
	O        string
	Round    int  // bumped on restart; stale computer replies are dropped
	Thinking bool // computer reply pending
	Created  time.Time
	Updated  time.Time
}

// Seat returns the mark the player holds, or Empty for spectators.
func (gs GameState) Seat(playerID string) domain.Cell {
	switch {
	case playerID == "":
		return domain.Empty
	case gs.X == playerID:
		return domain.X
	case gs.Mode == ModePvP && gs.O == playerID:
		return domain.O
	}
	return domain.Empty
}

// Status is the one-line summary shown above the board.
func (gs GameState) Status() string {
	g := gs.Game
	if g.Over {
		switch {
		case g.Winner == domain.Empty:
			return "Draw!"
		case gs.Mode == ModeComputer && g.Winner == ai.Human:
			return "You win"
		case gs.Mode == ModeComputer:
			return "You lose"
		default:
			return fmt.Sprintf("Player %s wins!", g.Winner)
		}
	}
	if gs.Mode == ModeComputer {
		if g.Turn == ai.Human {
			return "Your move"
		}
		return "AI is thinking..."
	}
	return fmt.Sprintf("Player %s's turn", g.Turn)
}

type subscriber struct {
	ch        chan GameState
	done      chan struct{} // closed together with ch
	closeOnce sync.Once
}

func (s *subscriber) close() {
	s.closeOnce.Do(func() {
		close(s.ch)
		close(s.done)
	})
}

// Option configures a Service.
type Option func(*Service)

// WithComputerDelay sets the pause before the computer replies. Zero makes
// the reply synchronous with the human move.
func WithComputerDelay(d time.Duration) Option {
	return func(s *Service) { s.delay = d }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// Service manages games and subscribers.
type Service struct {
	mu    sync.Mutex
	games map[string]*GameState
	subs  map[string]map[*subscriber]struct{}

	delay time.Duration
	after func(time.Duration, func())
	log   *slog.Logger
}

// NewService creates an empty service.
func NewService(opts ...Option) *Service {
	s := &Service{
		games: make(map[string]*GameState),
		subs:  make(map[string]map[*subscriber]struct{}),
		after: func(d time.Duration, f func()) { time.AfterFunc(d, f) },
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateGame creates and registers a new game.
func (s *Service) CreateGame(mode Mode) (*GameState, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	gs := &GameState{ID: newGameID(), Mode: mode, Game: domain.New(), Created: now, Updated: now}
	s.games[gs.ID] = gs
	s.log.Info("game created", "game", gs.ID, "mode", mode)
	cp := *gs
	return &cp, nil
}

// Get returns a copy of the game state if present.
func (s *Service) Get(id string) (*GameState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return nil, false
	}
	cp := *gs
	return &cp, true
}

// Join assigns a seat to the player if available; returns Empty for
// spectators. Against the computer only the X seat can be claimed.
func (s *Service) Join(id, playerID string) (domain.Cell, *GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return domain.Empty, nil, ErrNotFound
	}
	side := domain.Empty
	if gs.X == "" || gs.X == playerID {
		gs.X = playerID
		side = domain.X
	} else if gs.Mode == ModePvP && (gs.O == "" || gs.O == playerID) {
		gs.O = playerID
		side = domain.O
	}
	gs.Updated = time.Now()
	cp := *gs
	return side, &cp, nil
}

// Play validates seat and turn, applies a move at cell idx and broadcasts.
// Against the computer the reply is scheduled after the configured delay.
func (s *Service) Play(id, playerID string, idx int) (*GameState, error) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	seat := gs.Seat(playerID)
	if seat == domain.Empty {
		s.mu.Unlock()
		return nil, ErrNotAPlayer
	}
	if gs.Thinking {
		s.mu.Unlock()
		return nil, ErrComputerThinking
	}
	if seat != gs.Game.Turn && !gs.Game.Over {
		s.mu.Unlock()
		return nil, ErrNotYourTurn
	}
	if err := gs.Game.Play(idx); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	gs.Updated = time.Now()
	s.log.Debug("move", "game", id, "mark", seat, "cell", idx, "board", gs.Game.Board.String())

	if gs.Mode == ModeComputer && !gs.Game.Over {
		gs.Thinking = true
		if s.delay <= 0 {
			s.computerMoveLocked(gs)
		} else {
			round := gs.Round
			s.after(s.delay, func() { s.computerMove(id, round) })
		}
	}
	if gs.Game.Over {
		s.logResult(gs)
	}

	cp := *gs
	s.publishLocked(id, cp)
	s.mu.Unlock()
	return &cp, nil
}

// Restart clears the board of an existing game; seats are kept.
func (s *Service) Restart(id string) (*GameState, error) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	s.resetLocked(gs)
	s.log.Info("game restarted", "game", id, "round", gs.Round)
	cp := *gs
	s.publishLocked(id, cp)
	s.mu.Unlock()
	return &cp, nil
}

// SetMode switches between two-player and computer play, restarting the game.
func (s *Service) SetMode(id string, mode Mode) (*GameState, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	gs.Mode = mode
	if mode == ModeComputer {
		gs.O = ""
	}
	s.resetLocked(gs)
	s.log.Info("mode changed", "game", id, "mode", mode)
	cp := *gs
	s.publishLocked(id, cp)
	s.mu.Unlock()
	return &cp, nil
}

func (s *Service) resetLocked(gs *GameState) {
	gs.Game.Reset()
	gs.Round++
	gs.Thinking = false
	gs.Updated = time.Now()
}

// computerMove applies a scheduled reply unless the game moved on.
func (s *Service) computerMove(id string, round int) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok || gs.Round != round || !gs.Thinking {
		s.mu.Unlock()
		return
	}
	s.computerMoveLocked(gs)
	if gs.Game.Over {
		s.logResult(gs)
	}
	cp := *gs
	s.publishLocked(id, cp)
	s.mu.Unlock()
}

func (s *Service) computerMoveLocked(gs *GameState) {
	gs.Thinking = false
	start := time.Now()
	res := ai.Search(gs.Game.Board)
	if !res.Found {
		return
	}
	if err := gs.Game.Play(res.Move); err != nil {
		s.log.Error("computer move rejected", "game", gs.ID, "cell", res.Move, "err", err)
		return
	}
	gs.Updated = time.Now()
	s.log.Debug("computer move", "game", gs.ID, "cell", res.Move, "score", res.Score,
		"nodes", res.Nodes, "took", time.Since(start))
}

func (s *Service) logResult(gs *GameState) {
	s.log.Info("game over", "game", gs.ID, "result", gs.Status(), "moves", gs.Game.Moves)
}

// Subscribe registers a subscriber for a game. The channel receives a
// snapshot after every change and closes when ctx ends, when unsubscribe is
// called, or when the subscriber falls behind.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan GameState, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		return nil, func() {}, ErrNotFound
	}
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan GameState, 1), done: make(chan struct{})}
	set[sub] = struct{}{}

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
			}
			sub.close()
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			unsub()
		case <-sub.done:
		}
	}()
	return sub.ch, unsub, nil
}

// publishLocked fans a snapshot out without blocking; subscribers whose
// buffer is still full are closed and dropped.
func (s *Service) publishLocked(id string, gs GameState) {
	set := s.subs[id]
	dropped := 0
	for sub := range set {
		select {
		case sub.ch <- gs:
		default:
			sub.close()
			delete(set, sub)
			dropped++
		}
	}
	if dropped > 0 {
		s.log.Debug("dropped slow subscribers", "game", id, "count", dropped)
	}
}
