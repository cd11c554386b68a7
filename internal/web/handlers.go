package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jaminalder/logiqube/internal/app"
	"github.com/jaminalder/logiqube/internal/domain"
)

type handlers struct {
	svc         *app.Service
	tpl         *templates
	log         *slog.Logger
	heartbeat   time.Duration
	threatLevel int
}

func (h *handlers) renderBoard(gs app.GameState, errMsg string) []byte {
	return renderTemplate(h.tpl.board, "", newBoardView(gs, errMsg))
}

func writeHTML(w http.ResponseWriter, b []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (h *handlers) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("encode response", "error", err)
	}
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, renderTemplate(h.tpl.index, "base", nil))
}

func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	gs, err := h.svc.CreateGame()
	if err != nil {
		http.Error(w, "failed to create", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/game/"+gs.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
	gs, ok := h.svc.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	// Render page with embedded board container
	writeHTML(w, renderTemplate(h.tpl.game, "base", newBoardView(*gs, "")))
}

// moveMessage maps a rejected move to the text shown above the board.
func moveMessage(err error) string {
	switch {
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

func formInt(r *http.Request, key string) (int, error) {
	v, err := strconv.Atoi(r.Form.Get(key))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, domain.ErrOutOfBounds)
	}
	return v, nil
}

func (h *handlers) play(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	_ = r.ParseForm()
	var (
		gs  *app.GameState
		err error
	)
	x, errX := formInt(r, "x")
	y, errY := formInt(r, "y")
	z, errZ := formInt(r, "z")
	if err = errors.Join(errX, errY, errZ); err == nil {
		gs, err = h.svc.Play(id, x, y, z)
	}
	if errors.Is(err, app.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	var errMsg string
	if err != nil {
		errMsg = moveMessage(err)
		if g, ok := h.svc.Get(id); ok {
			gs = g
		}
	}
	if gs == nil {
		http.NotFound(w, r)
		return
	}
	writeHTML(w, h.renderBoard(*gs, errMsg))
}

func (h *handlers) reset(w http.ResponseWriter, r *http.Request) {
	gs, err := h.svc.Reset(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	writeHTML(w, h.renderBoard(*gs, ""))
}

type stateResponse struct {
	ID string `json:"id"`
	domain.State
}

func (h *handlers) state(w http.ResponseWriter, r *http.Request) {
	gs, ok := h.svc.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	h.writeJSON(w, stateResponse{ID: gs.ID, State: gs.Game.Snapshot()})
}

func (h *handlers) hints(w http.ResponseWriter, r *http.Request) {
	level := h.threatLevel
	if s := r.URL.Query().Get("level"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 || v > domain.Size {
			http.Error(w, "level must be an integer within 0..4", http.StatusBadRequest)
			return
		}
		level = v
	}
	hints, err := h.svc.Hints(chi.URLParam(r, "id"), level)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	h.writeJSON(w, hints)
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
	// In tests or non-EventSource requests, just acknowledge headers and return
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
	h.log.Debug("event stream opened", "game_id", id)

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
		case b, ok := <-ch:
			if !ok {
				return
			}
			_, _ = fmt.Fprintf(w, "event: board\n")
			writeSSEData(w, b)
			flusher.Flush()
		}
	}
}

// writeSSEData emits b as one event body; each line needs its own data: prefix.
func writeSSEData(w io.Writer, b []byte) {
	start := 0
	for i, c := range b {
		if c == '\n' {
			_, _ = fmt.Fprintf(w, "data: %s\n", b[start:i])
			start = i + 1
		}
	}
	_, _ = fmt.Fprintf(w, "data: %s\n\n", b[start:])
}
