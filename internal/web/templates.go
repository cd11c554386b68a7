package web

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/jaminalder/logiqube/internal/app"
	"github.com/jaminalder/logiqube/internal/domain"
)

type templates struct {
	base  *template.Template
	game  *template.Template
	board *template.Template
	index *template.Template
}

func loadTemplates() *templates {
	base := template.Must(template.New("base").Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>LogiQube</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
<style>
.planes{display:flex;gap:1.5em}
.row{display:flex}
.row form button{width:2.5em;height:2.5em}
.win button{background:gold}
.alert{color:#c0392b}
</style>
</head><body>{{template "content" .}}</body></html>`))
	// Define the board template within the same set so game can include it
	template.Must(base.New("board").Parse(boardTemplate))
	index := template.Must(template.Must(base.Clone()).New("content").Parse(`<h1>LogiQube</h1><p>4x4x4 tic-tac-toe</p><form action="/game" method="post"><button>Create</button></form>`))
	game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<div hx-ext="sse" sse-connect="/game/{{.ID}}/events">
  <div sse-swap="board" hx-target="#board" hx-swap="outerHTML">{{template "board" .}}</div>
</div>
<form hx-post="/game/{{.ID}}/reset" hx-target="#board" hx-swap="outerHTML" method="post"><button>Reset</button></form>`))
	// Standalone board template used for fragment rendering
	board := template.Must(template.New("board_only").Parse(boardTemplate))
	return &templates{base: base, game: game, board: board, index: index}
}

func renderTemplate(t *template.Template, name string, data any) []byte {
	var buf bytes.Buffer
	if name == "" {
		_ = t.Execute(&buf, data)
	} else {
		_ = t.ExecuteTemplate(&buf, name, data)
	}
	return buf.Bytes()
}

const boardTemplate = `
<div id="board">
  {{if .Error}}
  <div class="alert">{{.Error}}</div>
  {{end}}
  <p class="status">{{.Status}}</p>
  <div class="planes">
  {{range .Planes}}
    <div class="plane">
      <h3>Plane {{.Z}}</h3>
      {{range .Rows}}
      <div class="row">
        {{range .}}
        <form {{if .Win}}class="win" {{end}}hx-post="/game/{{$.ID}}/play" hx-target="#board" hx-swap="outerHTML" method="post">
          <input type="hidden" name="x" value="{{.X}}">
          <input type="hidden" name="y" value="{{.Y}}">
          <input type="hidden" name="z" value="{{.Z}}">
          <button type="submit"{{if $.Over}} disabled{{end}}>{{.Symbol}}</button>
        </form>
        {{end}}
      </div>
      {{end}}
    </div>
  {{end}}
  </div>
</div>
`

type cellView struct {
	X, Y, Z int
	Symbol  string
	Win     bool
}

type planeView struct {
	Z    int
	Rows [][]cellView
}

type boardView struct {
	ID     string
	Planes []planeView
	Status string
	Over   bool
	Error  string
}

// newBoardView lays out the cube as four planes, top plane first.
func newBoardView(gs app.GameState, errMsg string) boardView {
	g := gs.Game
	line, won := g.WinningLine()
	v := boardView{ID: gs.ID, Status: statusText(g), Over: g.Over(), Error: errMsg}
	for z := domain.Size - 1; z >= 0; z-- {
		pv := planeView{Z: z}
		for y := 0; y < domain.Size; y++ {
			row := make([]cellView, 0, domain.Size)
			for x := 0; x < domain.Size; x++ {
				p := domain.Pos{X: x, Y: y, Z: z}
				row = append(row, cellView{X: x, Y: y, Z: z, Symbol: g.At(p).String(), Win: won && line.Contains(p)})
			}
			pv.Rows = append(pv.Rows, row)
		}
		v.Planes = append(v.Planes, pv)
	}
	return v
}

func statusText(g *domain.Game) string {
	switch g.Status() {
	case domain.Won:
		return fmt.Sprintf("Player %s wins!", g.Winner())
	case domain.Drawn:
		return "Game is a draw!"
	default:
		return fmt.Sprintf("Player %s to move (move %d)", g.Turn(), g.Moves()+1)
	}
}
