package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/app"
)

const wsWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type wsPlay struct {
	Cell int `json:"cell"`
}

type wsError struct {
	Error string `json:"error"`
}

func mustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// gameWS streams snapshots to the client and accepts "play" and "restart"
// messages from it. The player id comes from the page cookie.
func (h *handlers) gameWS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var pid string
	if c, err := r.Cookie("player_id"); err == nil {
		pid = c.Value
	}
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	// subscribe before reading the state so no move falls between the two
	updates, unsub, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer unsub()
	gs, ok := h.svc.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("websocket upgrade failed", "game", id, "err", err)
		return
	}
	defer conn.Close()

	// the first state goes out ahead of the write loop; anything newer is
	// already queued on updates
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(wsMessage{Type: "state", Payload: mustMarshal(newSnapshot(*gs))}); err != nil {
		h.log.Debug("websocket closed", "game", id, "err", err)
		return
	}

	send := make(chan []byte, 8)
	trySend := func(msg wsMessage) {
		select {
		case send <- mustMarshal(msg):
		default:
		}
	}

	go func() {
		defer cancel()
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var msg wsMessage
			if err := json.Unmarshal(raw, &msg); err != nil {
				continue
			}
			switch msg.Type {
			case "play":
				var p wsPlay
				if err := json.Unmarshal(msg.Payload, &p); err != nil {
					trySend(wsMessage{Type: "error", Payload: mustMarshal(wsError{Error: "Invalid move"})})
					continue
				}
				if _, err := h.svc.Play(id, pid, p.Cell); err != nil {
					trySend(wsMessage{Type: "error", Payload: mustMarshal(wsError{Error: errorText(err)})})
				}
			case "restart":
				if err := h.seated(id, pid); err != nil {
					trySend(wsMessage{Type: "error", Payload: mustMarshal(wsError{Error: errorText(err)})})
					continue
				}
				_, _ = h.svc.Restart(id)
			case "request_state":
				if cur, ok := h.svc.Get(id); ok {
					trySend(wsMessage{Type: "state", Payload: mustMarshal(newSnapshot(*cur))})
				}
			}
		}
	}()

	if err := h.writeWS(ctx, conn, updates, send); err != nil {
		h.log.Debug("websocket closed", "game", id, "err", err)
	}
}

// writeWS owns all writes to conn. It pings when the connection has been
// idle for a heartbeat interval.
func (h *handlers) writeWS(ctx context.Context, conn *websocket.Conn, updates <-chan app.GameState, send <-chan []byte) error {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	lastWrite := time.Now()
	pingPayload := mustMarshal(wsMessage{Type: "ping"})

	write := func(b []byte) error {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			return err
		}
		lastWrite = time.Now()
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case gs, ok := <-updates:
			if !ok {
				return nil
			}
			if err := write(mustMarshal(wsMessage{Type: "state", Payload: mustMarshal(newSnapshot(gs))})); err != nil {
				return err
			}
		case msg := <-send:
			if err := write(msg); err != nil {
				return err
			}
		case <-ticker.C:
			if time.Since(lastWrite) < h.heartbeat {
				continue
			}
			if err := write(pingPayload); err != nil {
				return err
			}
		}
	}
}
