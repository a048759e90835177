package web

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/app"
	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/domain"
)

type templates struct {
	game  *template.Template
	board *template.Template
	index *template.Template
}

func loadTemplates() *templates {
	base := template.Must(template.New("base").Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Tic Tac Toe</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
<style>
.row{display:flex;gap:12px;margin-bottom:12px}
.row button{width:96px;height:96px;font-size:40px}
.row button.win{font-weight:900;color:#ffd35c;background:#1a3a2a}
</style>
</head><body>{{template "content" .}}</body></html>`))
	// board lives in the same set so game can include it
	template.Must(base.New("board").Parse(boardTemplate))
	index := template.Must(template.Must(base.Clone()).New("content").Parse(`<h1>Tic Tac Toe</h1>
<form action="/game" method="post">
  <select name="mode">
    <option value="computer">Vs AI</option>
    <option value="pvp">PvP</option>
  </select>
  <button>Create</button>
</form>`))
	game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<div hx-ext="sse" hx-sse="connect:/game/{{.ID}}/events">
  <div hx-sse="swap:board">{{template "board" .Board}}</div>
</div>`))
	board := template.Must(template.New("board_only").Parse(boardTemplate))
	// pages render through base, which pulls in their "content"
	return &templates{game: game.Lookup("base"), board: board, index: index.Lookup("base")}
}

func renderTemplate(t *template.Template, data any) []byte {
	var buf bytes.Buffer
	_ = t.Execute(&buf, data)
	return buf.Bytes()
}

const boardTemplate = `
<div id="board">
  <p class="status">{{.Status}}</p>
  {{if .Error}}
  <div class="alert">{{.Error}}</div>
  {{end}}
  {{range .Rows}}
  <div class="row">
    {{range .}}
      <form hx-post="/game/{{$.ID}}/play" hx-target="#board" hx-swap="outerHTML" method="post">
        <input type="hidden" name="cell" value="{{.Index}}">
        <button type="submit"{{if .Win}} class="win"{{end}}{{if .Disabled}} disabled{{end}}>{{.Symbol}}</button>
      </form>
    {{end}}
  </div>
  {{end}}
  <form hx-post="/game/{{.ID}}/restart" hx-target="#board" hx-swap="outerHTML" method="post">
    <button type="submit">Restart</button>
  </form>
  <form hx-post="/game/{{.ID}}/mode" hx-target="#board" hx-swap="outerHTML" method="post">
    <input type="hidden" name="mode" value="{{.OtherMode}}">
    <button type="submit">Mode: {{.ModeLabel}}</button>
  </form>
</div>
`

type cellView struct {
	Index    int
	Symbol   string
	Win      bool
	Disabled bool
}

type boardView struct {
	ID        string
	Rows      [][]cellView
	Status    string
	Error     string
	ModeLabel string
	OtherMode app.Mode
}

func newBoardView(gs app.GameState, errMsg string) boardView {
	v := boardView{ID: gs.ID, Status: gs.Status(), Error: errMsg}
	if gs.Mode == app.ModeComputer {
		v.ModeLabel, v.OtherMode = "Vs AI", app.ModePvP
	} else {
		v.ModeLabel, v.OtherMode = "PvP", app.ModeComputer
	}
	var win [domain.Size]bool
	for _, i := range gs.Game.WinningCells() {
		win[i] = true
	}
	locked := gs.Game.Over || gs.Thinking
	for r := 0; r < 3; r++ {
		row := make([]cellView, 3)
		for c := range row {
			i := r*3 + c
			mark := gs.Game.Board[i]
			row[c] = cellView{Index: i, Symbol: mark.String(), Win: win[i], Disabled: locked || mark != domain.Empty}
		}
		v.Rows = append(v.Rows, row)
	}
	return v
}

// ensurePlayerCookie returns the caller's player id, issuing one if absent.
func ensurePlayerCookie(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie("player_id"); err == nil && c.Value != "" {
		return c.Value
	}
	v := app.NewPlayerID()
	http.SetCookie(w, &http.Cookie{Name: "player_id", Value: v, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	return v
}
