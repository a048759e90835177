package web

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/app"
	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/domain"
)

type handlers struct {
	svc       *app.Service
	tpl       *templates
	log       *slog.Logger
	heartbeat time.Duration
}

func (h *handlers) renderBoard(gs app.GameState, errMsg string) []byte {
	return renderTemplate(h.tpl.board, newBoardView(gs, errMsg))
}

func (h *handlers) writeBoard(w http.ResponseWriter, gs app.GameState, errMsg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(h.renderBoard(gs, errMsg))
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(renderTemplate(h.tpl.index, nil))
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	mode := app.ModeComputer
	if v := r.Form.Get("mode"); v != "" {
		m, err := app.ParseMode(v)
		if err != nil {
			http.Error(w, "unknown mode", http.StatusBadRequest)
			return
		}
		mode = m
	}
	gs, err := h.svc.CreateGame(mode)
	if err != nil {
		http.Error(w, "failed to create", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/game/"+gs.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	// ensure cookie and auto-claim seat
	pid := ensurePlayerCookie(w, r)
	_, gs, err := h.svc.Join(id, pid)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	data := struct {
		ID    string
		Board boardView
	}{ID: gs.ID, Board: newBoardView(*gs, "")}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(renderTemplate(h.tpl.game, data))
}

func (h *handlers) join(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pid := ensurePlayerCookie(w, r)
	_, gs, err := h.svc.Join(id, pid)
	if err != nil || gs == nil {
		http.NotFound(w, r)
		return
	}
	h.writeBoard(w, *gs, "")
}

// cellFromForm reads "cell" (0..8) or the "r"/"c" pair.
func cellFromForm(r *http.Request) (int, error) {
	if v := r.Form.Get("cell"); v != "" {
		return strconv.Atoi(v)
	}
	ri, err := strconv.Atoi(r.Form.Get("r"))
	if err != nil {
		return 0, err
	}
	ci, err := strconv.Atoi(r.Form.Get("c"))
	if err != nil {
		return 0, err
	}
	if ri < 0 || ri > 2 || ci < 0 || ci > 2 {
		return -1, nil
	}
	return ri*3 + ci, nil
}

func (h *handlers) play(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pid := ensurePlayerCookie(w, r)
	_ = r.ParseForm()
	var gs *app.GameState
	idx, err := cellFromForm(r)
	if err == nil {
		gs, err = h.svc.Play(id, pid, idx)
	}
	var errMsg string
	if err != nil {
		if gs == nil {
			gs, _ = h.svc.Get(id)
		}
		errMsg = errorText(err)
	}
	if gs == nil {
		http.NotFound(w, r)
		return
	}
	h.writeBoard(w, *gs, errMsg)
}

// seated returns ErrNotFound or ErrNotAPlayer unless pid holds a seat in the game.
func (h *handlers) seated(id, pid string) error {
	gs, ok := h.svc.Get(id)
	if !ok {
		return app.ErrNotFound
	}
	if gs.Seat(pid) == domain.Empty {
		return app.ErrNotAPlayer
	}
	return nil
}

// rejectSpectator writes the current board with the refusal and reports
// whether the request was handled.
func (h *handlers) rejectSpectator(w http.ResponseWriter, r *http.Request, id, pid string) bool {
	err := h.seated(id, pid)
	switch {
	case err == nil:
		return false
	case errors.Is(err, app.ErrNotFound):
		http.NotFound(w, r)
	default:
		if gs, ok := h.svc.Get(id); ok {
			h.writeBoard(w, *gs, errorText(err))
		}
	}
	return true
}

func (h *handlers) restart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if h.rejectSpectator(w, r, id, ensurePlayerCookie(w, r)) {
		return
	}
	gs, err := h.svc.Restart(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	h.writeBoard(w, *gs, "")
}

func (h *handlers) mode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if h.rejectSpectator(w, r, id, ensurePlayerCookie(w, r)) {
		return
	}
	_ = r.ParseForm()
	mode, err := app.ParseMode(r.Form.Get("mode"))
	if err != nil {
		gs, ok := h.svc.Get(id)
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.writeBoard(w, *gs, errorText(err))
		return
	}
	gs, err := h.svc.SetMode(id, mode)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	h.writeBoard(w, *gs, "")
}

func errorText(err error) string {
	switch {
	case errors.Is(err, app.ErrNotYourTurn):
		return "Not your turn"
	case errors.Is(err, app.ErrNotAPlayer):
		return "You are a spectator"
	case errors.Is(err, app.ErrComputerThinking):
		return "AI is thinking"
	case errors.Is(err, app.ErrInvalidMode):
		return "Unknown mode"
	case errors.Is(err, domain.ErrOccupied):
		return "Cell is occupied"
	case errors.Is(err, domain.ErrOutOfBounds):
		return "Out of bounds"
	case errors.Is(err, domain.ErrGameOver):
		return "Game is over"
	default:
		return "Invalid move"
	}
}

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.svc.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	// plain GETs (tests, curl) only get the headers
	if r.Header.Get("Accept") != "text/event-stream" {
		w.WriteHeader(http.StatusOK)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}
	ctx := r.Context()
	ch, unsub, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer unsub()
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	flusher.Flush()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = io.WriteString(w, ": ping\n\n")
			flusher.Flush()
		case gs, ok := <-ch:
			if !ok {
				return
			}
			writeSSE(w, "board", h.renderBoard(gs, ""))
			flusher.Flush()
		}
	}
}

// writeSSE frames payload as one event; every line gets its own data field.
func writeSSE(w io.Writer, event string, payload []byte) {
	_, _ = fmt.Fprintf(w, "event: %s\n", event)
	for _, line := range strings.Split(string(payload), "\n") {
		_, _ = fmt.Fprintf(w, "data: %s\n", line)
	}
	_, _ = io.WriteString(w, "\n")
}
