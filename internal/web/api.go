package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/app"
)

// snapshot is the JSON view of a game shared by the REST and WebSocket APIs.
type snapshot struct {
	ID           string   `json:"id"`
	Mode         app.Mode `json:"mode"`
	Board        string   `json:"board"`
	Cells        []string `json:"cells"`
	Turn         string   `json:"turn"`
	Moves        int      `json:"moves"`
	Over         bool     `json:"over"`
	Winner       string   `json:"winner,omitempty"`
	WinningCells []int    `json:"winning_cells,omitempty"`
	Draw         bool     `json:"draw"`
	Thinking     bool     `json:"thinking"`
	Status       string   `json:"status"`
}

func newSnapshot(gs app.GameState) snapshot {
	cells := make([]string, len(gs.Game.Board))
	for i, c := range gs.Game.Board {
		cells[i] = c.String()
	}
	return snapshot{
		ID:           gs.ID,
		Mode:         gs.Mode,
		Board:        gs.Game.Board.String(),
		Cells:        cells,
		Turn:         gs.Game.Turn.String(),
		Moves:        gs.Game.Moves,
		Over:         gs.Game.Over,
		Winner:       gs.Game.Winner.String(),
		WinningCells: gs.Game.WinningCells(),
		Draw:         gs.Game.Draw(),
		Thinking:     gs.Thinking,
		Status:       gs.Status(),
	}
}

func (h *handlers) apiGame(w http.ResponseWriter, r *http.Request) {
	gs, ok := h.svc.Get(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": app.ErrNotFound.Error()})
		return
	}
	writeJSON(w, http.StatusOK, newSnapshot(*gs))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
