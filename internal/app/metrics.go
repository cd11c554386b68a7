package app

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jaminalder/logiqube/internal/domain"
)

// Metrics counts game activity. A nil *Metrics records nothing.
type Metrics struct {
	gamesCreated  prometheus.Counter
	gamesActive   prometheus.Gauge
	movesTotal    *prometheus.CounterVec
	gamesFinished *prometheus.CounterVec
	resets        prometheus.Counter
}

// NewMetrics registers the game collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		gamesCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "logiqube_games_created_total",
			Help: "Games created",
		}),
		gamesActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "logiqube_games_active",
			Help: "Games currently in progress",
		}),
		movesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "logiqube_moves_total",
			Help: "Move attempts by result",
		}, []string{"result"}),
		gamesFinished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "logiqube_games_finished_total",
			Help: "Finished games by outcome",
		}, []string{"outcome"}),
		resets: f.NewCounter(prometheus.CounterOpts{
			Name: "logiqube_game_resets_total",
			Help: "Games reset to the empty board",
		}),
	}
}

func (m *Metrics) created() {
	if m == nil {
		return
	}
	m.gamesCreated.Inc()
	m.gamesActive.Inc()
}

func (m *Metrics) move(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.movesTotal.WithLabelValues("invalid").Inc()
		return
	}
	m.movesTotal.WithLabelValues("ok").Inc()
}

func (m *Metrics) finished(g *domain.Game) {
	if m == nil {
		return
	}
	outcome := "drawn"
	if g.Status() == domain.Won {
		outcome = strings.ToLower(g.Winner().String()) + "_won"
	}
	m.gamesFinished.WithLabelValues(outcome).Inc()
	m.gamesActive.Dec()
}

// reset is called after a reset; wasOver tells whether the game left a terminal state.
func (m *Metrics) reset(wasOver bool) {
	if m == nil {
		return
	}
	m.resets.Inc()
	if wasOver {
		m.gamesActive.Inc()
	}
}
