package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusCollector struct {
	// Gauges
	gamesActive prometheus.Gauge

	// Counters
	gamesStartedTotal prometheus.Counter
	eliminationsTotal prometheus.Counter
	triggerPullsTotal *prometheus.CounterVec
	moderationActions *prometheus.CounterVec
	moderationRejects *prometheus.CounterVec
	eventsDispatched  *prometheus.CounterVec
}

func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		gamesActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "warden_games_active",
			Help: "Number of game sessions currently in progress",
		}),

		gamesStartedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "warden_games_started_total",
			Help: "Total number of game rounds started",
		}),

		eliminationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "warden_eliminations_total",
			Help: "Total number of players eliminated from games",
		}),

		triggerPullsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_trigger_pulls_total",
			Help: "Total number of trigger pulls by outcome",
		}, []string{"outcome"}),

		moderationActions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_moderation_actions_total",
			Help: "Total number of executed moderation actions",
		}, []string{"action"}),

		moderationRejects: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_moderation_rejections_total",
			Help: "Total number of rejected moderation attempts by reason",
		}, []string{"reason"}),

		eventsDispatched: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_events_total",
			Help: "Total number of dispatched chat events by command",
		}, []string{"command"}),
	}
}

func (p *PrometheusCollector) EventDispatched(command string) {
	p.eventsDispatched.WithLabelValues(command).Inc()
}

func (p *PrometheusCollector) GameStarted() {
	p.gamesActive.Inc()
	p.gamesStartedTotal.Inc()
}

func (p *PrometheusCollector) GameEnded() {
	p.gamesActive.Dec()
}

func (p *PrometheusCollector) TriggerPulled(outcome string) {
	p.triggerPullsTotal.WithLabelValues(outcome).Inc()
}

func (p *PrometheusCollector) PlayerEliminated() {
	p.eliminationsTotal.Inc()
}

func (p *PrometheusCollector) ModerationAction(action string) {
	p.moderationActions.WithLabelValues(action).Inc()
}

func (p *PrometheusCollector) ModerationRejected(reason string) {
	p.moderationRejects.WithLabelValues(reason).Inc()
}
