// Package mockboard serves a fake live text page for local runs of the
// crawler. Every game id gets its own simulated at-bat sequence; once a game
// has played out the count board disappears, which the crawler treats as the
// end of that match.
package mockboard

import (
	"html/template"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

// Path is where the page is served, mirroring the real site.
const Path = "/Game/LiveText.aspx"

var plays = []struct {
	class string
	text  string
}{
	{"normaiflTxt", "Ball"},
	{"normaiflTxt", "Strike looking"},
	{"normaiflTxt", "Foul"},
	{"blue", "Strikeout swinging"},
	{"normaiflTxt", "Ground out to short"},
	{"red", "Single to left field"},
	{"red", "Home run to center field!"},
	{"blue", "Fly out to right"},
}

type line struct {
	Class string
	Text  string
}

type game struct {
	lines       []line
	strikes     int
	balls       int
	outs        int
	nextPlayAt  time.Time
	playsLeft   int
	finishedLog bool
}

// Board is an http.Handler serving one simulated board per gameId.
type Board struct {
	playsPerGame int
	every        time.Duration
	logger       *slog.Logger

	mu    sync.Mutex
	games map[string]*game
}

// New returns a board where each game advances one play per interval and
// ends after playsPerGame plays.
func New(playsPerGame int, every time.Duration, logger *slog.Logger) *Board {
	return &Board{
		playsPerGame: playsPerGame,
		every:        every,
		logger:       logger,
		games:        make(map[string]*game),
	}
}

type pageData struct {
	GameID  string
	Live    bool
	Lines   []line
	Strikes []struct{}
	Balls   []struct{}
	Outs    []struct{}
}

// ServeHTTP renders the board for the gameId query parameter.
func (b *Board) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("gameId")
	if gameID == "" {
		http.Error(w, "gameId is required", http.StatusBadRequest)
		return
	}

	// simulate small latency variance
	time.Sleep(time.Duration(20+rand.Intn(80)) * time.Millisecond)

	data := b.advance(gameID, time.Now())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Execute(w, data); err != nil {
		b.logger.Error("failed to render board", "game_id", gameID, "error", err)
	}
}

func (b *Board) advance(gameID string, now time.Time) pageData {
	b.mu.Lock()
	defer b.mu.Unlock()

	g, ok := b.games[gameID]
	if !ok {
		g = &game{
			lines:      []line{{Class: "normaiflTxt", Text: "1st inning top"}, {Class: "red", Text: "---------------------------------------"}},
			nextPlayAt: now.Add(b.every),
			playsLeft:  b.playsPerGame,
		}
		b.games[gameID] = g
		b.logger.Info("game started", "game_id", gameID)
	}

	for g.playsLeft > 0 && !now.Before(g.nextPlayAt) {
		p := plays[rand.Intn(len(plays))]
		g.lines = append(g.lines, line{Class: p.class, Text: p.text})
		g.strikes = (g.strikes + rand.Intn(2)) % 3
		g.balls = (g.balls + rand.Intn(2)) % 4
		if p.class == "blue" {
			g.outs = (g.outs + 1) % 3
		}
		g.playsLeft--
		g.nextPlayAt = g.nextPlayAt.Add(b.every)
	}

	if g.playsLeft == 0 && !g.finishedLog {
		g.finishedLog = true
		b.logger.Info("game over", "game_id", gameID)
	}

	return pageData{
		GameID:  gameID,
		Live:    g.playsLeft > 0,
		Lines:   append([]line(nil), g.lines...),
		Strikes: make([]struct{}, g.strikes),
		Balls:   make([]struct{}, g.balls),
		Outs:    make([]struct{}, g.outs),
	}
}

var page = template.Must(template.New("board").Parse(`<!DOCTYPE html>
<html><head><title>Live {{.GameID}}</title></head>
<body>
<div class="playerName"><ul>
  <li class="pitcher">Mock Pitcher</li>
  <li class="batter">Mock Batter</li>
</ul></div>
<div class="broadcast">
  <div class="numCon" id="{{.GameID}}">
{{- range .Lines}}
    <span class="{{.Class}}">{{.Text}}</span>
{{- end}}
  </div>
</div>
{{- if .Live}}
<div class="sbo">
  <ul class="s">{{range .Strikes}}<li class="on"></li>{{end}}<li></li></ul>
  <ul class="b">{{range .Balls}}<li class="on"></li>{{end}}<li></li></ul>
  <ul class="o">{{range .Outs}}<li class="on"></li>{{end}}<li></li></ul>
</div>
{{- else}}
<p class="final">Game over</p>
{{- end}}
</body></html>
`))
