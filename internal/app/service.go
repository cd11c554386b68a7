package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jaminalder/logiqube/internal/domain"
	"github.com/jaminalder/logiqube/internal/logging"
)

// Errors exposed by the service layer.
var (
	ErrNotFound = errors.New("game not found")
)

// GameState is the in-memory state tracked per game. Game is owned by the
// service; values handed to callers are clones.
type GameState struct {
	ID      string
	Game    *domain.Game
	Created time.Time
	Updated time.Time
}

func (gs *GameState) clone() *GameState {
	cp := *gs
	cp.Game = gs.Game.Clone()
	return &cp
}

// Hints are the informational queries for the side to move.
type Hints struct {
	Side         domain.Cell  `json:"side"`
	WinningMoves []domain.Pos `json:"winning_moves"`
	Blocks       []domain.Pos `json:"blocks"`
	Level        int          `json:"level"`
	Threats      []domain.Pos `json:"threats"`
}

type subscriber struct {
	ch        chan []byte
	closeOnce sync.Once
}

func (s *subscriber) close() { s.closeOnce.Do(func() { close(s.ch) }) }

// Service manages games and subscribers. Each domain.Game is single-owner,
// so every access goes through mu.
type Service struct {
	mu      sync.Mutex
	games   map[string]*GameState
	subs    map[string]map[*subscriber]struct{}
	render  func(GameState) []byte
	log     *slog.Logger
	metrics *Metrics
}

// NewService creates a service with a default renderer (encodes nothing useful).
func NewService() *Service { return NewServiceWithRenderer(nil) }

// NewServiceWithRenderer allows injecting a renderer for broadcast payloads.
func NewServiceWithRenderer(renderer func(GameState) []byte) *Service {
	if renderer == nil {
		renderer = func(gs GameState) []byte { return nil }
	}
	return &Service{
		games:  make(map[string]*GameState),
		subs:   make(map[string]map[*subscriber]struct{}),
		render: renderer,
		log:    logging.Discard(),
	}
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(GameState) []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if renderer == nil {
		s.render = func(gs GameState) []byte { return nil }
		return
	}
	s.render = renderer
}

// SetLogger replaces the service logger; nil keeps the current one.
func (s *Service) SetLogger(log *slog.Logger) {
	if log == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = log
}

// SetMetrics attaches collectors; nil disables recording.
func (s *Service) SetMetrics(m *Metrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = m
}

// CreateGame creates and registers a new game.
func (s *Service) CreateGame() (*GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	now := time.Now()
	gs := &GameState{ID: id, Game: domain.New(), Created: now, Updated: now}
	s.games[id] = gs
	s.metrics.created()
	s.log.Info("game created", "game_id", id)
	return gs.clone(), nil
}

// Get returns a copy of the game state if present.
func (s *Service) Get(id string) (*GameState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return nil, false
	}
	return gs.clone(), true
}

// Play applies a move for the side to move and broadcasts the new board.
// Domain errors are returned unchanged.
func (s *Service) Play(id string, x, y, z int) (*GameState, error) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	side := gs.Game.Turn()
	err := gs.Game.Play(x, y, z)
	s.metrics.move(err)
	if err != nil {
		s.mu.Unlock()
		s.log.Debug("move rejected", "game_id", id, "pos", domain.Pos{X: x, Y: y, Z: z}, "error", err)
		return nil, err
	}
	gs.Updated = time.Now()
	s.log.Debug("move applied", "game_id", id, "pos", domain.Pos{X: x, Y: y, Z: z}, "side", side.String(), "moves", gs.Game.Moves())
	if gs.Game.Over() {
		s.metrics.finished(gs.Game)
		attrs := []any{"game_id", id, "status", gs.Game.Status().String(), "moves", gs.Game.Moves()}
		if line, ok := gs.Game.WinningLine(); ok {
			attrs = append(attrs, "winner", gs.Game.Winner().String(), "line", line)
		}
		s.log.Info("game finished", attrs...)
	}
	cp := s.publishLocked(gs)
	s.mu.Unlock()
	return cp, nil
}

// Reset clears a game back to the empty board and broadcasts it.
func (s *Service) Reset(id string) (*GameState, error) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	wasOver := gs.Game.Over()
	gs.Game.Reset()
	gs.Updated = time.Now()
	s.metrics.reset(wasOver)
	s.log.Info("game reset", "game_id", id)
	cp := s.publishLocked(gs)
	s.mu.Unlock()
	return cp, nil
}

// Hints reports immediate wins and blocks for the side to move, plus the
// cells of open lines where that side holds level pieces.
func (s *Service) Hints(id string, level int) (Hints, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return Hints{}, ErrNotFound
	}
	return HintsFor(gs.Game, level), nil
}

// HintsFor computes Hints directly from a game.
func HintsFor(g *domain.Game, level int) Hints {
	side := g.Turn()
	h := Hints{Side: side, Level: level}
	if g.Over() {
		return h
	}
	h.WinningMoves = g.WinningMoves(side)
	h.Blocks = g.WinningMoves(side.Opponent())
	h.Threats = g.Threats(side, level)
	return h
}

// Subscribe registers a subscriber for a game. Returns a channel and an unsubscribe func.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		return nil, nil, ErrNotFound
	}
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan []byte, 1)}
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
		<-ctx.Done()
		unsub()
	}()
	return sub.ch, unsub, nil
}

// publishLocked snapshots the game, renders it and delivers the payload without
// blocking; slow subscribers are closed and dropped. Caller holds mu, which also
// guards channel close so a send never races an unsubscribe.
func (s *Service) publishLocked(gs *GameState) *GameState {
	cp := gs.clone()
	payload := s.render(*cp)
	dropped := 0
	for sub := range s.copySubsLocked(gs.ID) {
		select {
		case sub.ch <- payload:
		default:
			sub.close()
			delete(s.subs[gs.ID], sub)
			dropped++
		}
	}
	if dropped > 0 {
		s.log.Warn("dropped slow subscribers", "game_id", gs.ID, "count", dropped)
	}
	return cp
}

func (s *Service) copySubsLocked(id string) map[*subscriber]struct{} {
	out := make(map[*subscriber]struct{})
	if set, ok := s.subs[id]; ok {
		for k := range set {
			out[k] = struct{}{}
		}
	}
	return out
}
