package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultWin  = "win"
	ResultDraw = "draw"
)

// Metrics owns its registry so tests and several servers in one process do not collide.
type Metrics struct {
	registry *prometheus.Registry

	moves          prometheus.Counter
	gamesFinished  *prometheus.CounterVec
	scoreResets    prometheus.Counter
	activeSessions prometheus.Gauge
}

func New() *Metrics {
	that := &Metrics{
		registry: prometheus.NewRegistry(),
		moves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tictactoe_moves_total",
			Help: "Total number of accepted moves",
		}),
		gamesFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tictactoe_games_finished_total",
				Help: "Total number of finished games by result",
			},
			[]string{"result"},
		),
		scoreResets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tictactoe_score_resets_total",
			Help: "Total number of score resets",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tictactoe_active_sessions",
			Help: "Number of sessions currently held in memory",
		}),
	}

	that.registry.MustRegister(
		that.moves,
		that.gamesFinished,
		that.scoreResets,
		that.activeSessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return that
}

func (that *Metrics) MoveMade() {
	that.moves.Inc()
}

func (that *Metrics) GameFinished(result string) {
	that.gamesFinished.WithLabelValues(result).Inc()
}

func (that *Metrics) ScoresReset() {
	that.scoreResets.Inc()
}

func (that *Metrics) SetActiveSessions(count int) {
	that.activeSessions.Set(float64(count))
}

func (that *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(that.registry, promhttp.HandlerOpts{Registry: that.registry})
}
