package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaminalder/logiqube/internal/app"
	"github.com/jaminalder/logiqube/internal/domain"
)

func newTestServer(t *testing.T) (*app.Service, http.Handler) {
	t.Helper()
	s := app.NewService()
	reg := prometheus.NewRegistry()
	s.SetMetrics(app.NewMetrics(reg))
	h := NewServer(s, Options{Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})})
	return s, h
}

func postForm(t *testing.T, h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func move(x, y, z int) url.Values {
	return url.Values{"x": {strconv.Itoa(x)}, "y": {strconv.Itoa(y)}, "z": {strconv.Itoa(z)}}
}

func TestIndexPage(t *testing.T) {
	_, h := newTestServer(t)
	rr := get(h, "/")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "<form")
	assert.Contains(t, body, `action="/game"`)
	assert.Contains(t, body, "<title>LogiQube</title>")
	assert.Contains(t, body, "htmx.org")
}

func TestHealthz(t *testing.T) {
	_, h := newTestServer(t)
	rr := get(h, "/healthz")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok\n", rr.Body.String())
}

func TestCreateRedirectsToGame(t *testing.T) {
	_, h := newTestServer(t)
	rr := postForm(t, h, "/game", nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Result().Header.Get("Location"), "/game/"))
}

func TestGamePageRendersPlanesAndSSE(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()

	rr := get(h, "/game/"+url.PathEscape(gs.ID))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `hx-ext="sse"`)
	assert.Contains(t, body, "/game/"+gs.ID+"/events")
	assert.Contains(t, body, "/game/"+gs.ID+"/reset")
	for _, plane := range []string{"Plane 0", "Plane 1", "Plane 2", "Plane 3"} {
		assert.Contains(t, body, plane)
	}
	assert.Equal(t, domain.Cells, strings.Count(body, `name="z"`))
	assert.Contains(t, body, "Player X to move")
}

func TestGamePageUnknownID(t *testing.T) {
	_, h := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, get(h, "/game/nope").Code)
}

func TestPlayEndpointUpdatesStateAndReturnsFragment(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()

	rr := postForm(t, h, "/game/"+gs.ID+"/play", move(1, 2, 3))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `id="board"`)
	assert.Contains(t, rr.Body.String(), "Player O to move")

	latest, _ := svc.Get(gs.ID)
	assert.Equal(t, 1, latest.Game.Moves())
	assert.Equal(t, domain.X, latest.Game.At(domain.Pos{X: 1, Y: 2, Z: 3}))

	rr = postForm(t, h, "/game/"+gs.ID+"/play", move(1, 2, 3))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Cell is occupied")

	rr = postForm(t, h, "/game/"+gs.ID+"/play", url.Values{"x": {"a"}, "y": {"0"}, "z": {"0"}})
	assert.Contains(t, rr.Body.String(), "Out of bounds")

	latest, _ = svc.Get(gs.ID)
	assert.Equal(t, 1, latest.Game.Moves(), "rejected moves must not change the game")

	assert.Equal(t, http.StatusNotFound, postForm(t, h, "/game/nope/play", move(0, 0, 0)).Code)
}

func TestPlayToWinHighlightsLineThenReset(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()
	seq := [][3]int{{0, 0, 0}, {0, 1, 0}, {1, 1, 1}, {0, 2, 0}, {2, 2, 2}, {0, 3, 0}, {3, 3, 3}}
	var rr *httptest.ResponseRecorder
	for _, m := range seq {
		rr = postForm(t, h, "/game/"+gs.ID+"/play", move(m[0], m[1], m[2]))
		require.Equal(t, http.StatusOK, rr.Code)
	}
	body := rr.Body.String()
	assert.Contains(t, body, "Player X wins!")
	assert.Equal(t, 4, strings.Count(body, `class="win"`))
	assert.Contains(t, body, "disabled")

	rr = postForm(t, h, "/game/"+gs.ID+"/reset", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Player X to move (move 1)")
	assert.NotContains(t, rr.Body.String(), `class="win"`)

	assert.Equal(t, http.StatusNotFound, postForm(t, h, "/game/nope/reset", nil).Code)
}

func TestStateEndpoint(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()
	_, err := svc.Play(gs.ID, 0, 0, 0)
	require.NoError(t, err)

	rr := get(h, "/game/"+gs.ID+"/state")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var got struct {
		ID      string        `json:"id"`
		Board   []string      `json:"board"`
		Turn    string        `json:"turn"`
		Status  string        `json:"status"`
		Moves   int           `json:"moves"`
		History []domain.Move `json:"history"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, gs.ID, got.ID)
	assert.Len(t, got.Board, domain.Cells)
	assert.Equal(t, "X", got.Board[0])
	assert.Equal(t, "O", got.Turn)
	assert.Equal(t, "in_progress", got.Status)
	assert.Equal(t, 1, got.Moves)
	assert.Equal(t, []domain.Move{{Pos: domain.Pos{}, Player: domain.X}}, got.History)

	assert.Equal(t, http.StatusNotFound, get(h, "/game/nope/state").Code)
}

func TestHintsEndpoint(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()
	for _, m := range [][3]int{{0, 0, 0}, {0, 1, 0}, {1, 0, 0}, {1, 1, 0}, {2, 0, 0}} {
		_, err := svc.Play(gs.ID, m[0], m[1], m[2])
		require.NoError(t, err)
	}

	rr := get(h, "/game/"+gs.ID+"/hints")
	require.Equal(t, http.StatusOK, rr.Code)
	var hints app.Hints
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&hints))
	assert.Equal(t, domain.O, hints.Side)
	assert.Equal(t, 2, hints.Level)
	assert.Contains(t, hints.Blocks, domain.Pos{X: 3, Y: 0, Z: 0})
	assert.Contains(t, hints.Threats, domain.Pos{X: 2, Y: 1, Z: 0})

	rr = get(h, "/game/"+gs.ID+"/hints?level=1")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&hints))
	assert.Equal(t, 1, hints.Level)

	assert.Equal(t, http.StatusBadRequest, get(h, "/game/"+gs.ID+"/hints?level=7").Code)
	assert.Equal(t, http.StatusNotFound, get(h, "/game/nope/hints").Code)
}

func TestEventsEndpointSSEHeaders(t *testing.T) {
	_, h := newTestServer(t)
	rrCreate := postForm(t, h, "/game", nil)
	loc := rrCreate.Result().Header.Get("Location")
	require.NotEmpty(t, loc)

	rr := get(h, loc+"/events")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Result().Header.Get("Content-Type"), "text/event-stream"))

	assert.Equal(t, http.StatusNotFound, get(h, "/game/nope/events").Code)
}

func TestBroadcastPayloadIsBoardFragment(t *testing.T) {
	svc, _ := newTestServer(t)
	gs, _ := svc.CreateGame()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	ch, unsub, err := svc.Subscribe(ctx, gs.ID)
	require.NoError(t, err)
	defer unsub()

	_, err = svc.Play(gs.ID, 0, 0, 0)
	require.NoError(t, err)
	b := <-ch
	assert.Contains(t, string(b), `id="board"`)
	assert.Contains(t, string(b), "Player O to move")
}

func TestWriteSSEDataPrefixesEveryLine(t *testing.T) {
	var buf bytes.Buffer
	writeSSEData(&buf, []byte("a\nb"))
	assert.Equal(t, "data: a\ndata: b\n\n", buf.String())
}

func TestMetricsEndpoint(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()
	_, _ = svc.Play(gs.ID, 0, 0, 0)

	rr := get(h, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "logiqube_games_created_total 1")
	assert.Contains(t, rr.Body.String(), `logiqube_moves_total{result="ok"} 1`)
}
