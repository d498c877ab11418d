package metrics

import (
	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "texter"

// Recorder exports registry, display and update check activity.
type Recorder struct {
	saves   *prom.CounterVec
	display *prom.CounterVec
	checks  *prom.CounterVec
}

// NewRecorder registers the collectors with reg. A nil reg gets a private
// registry.
func NewRecorder(reg prom.Registerer) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}

	r := &Recorder{
		saves: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "registry_saves_total",
			Help:      "Registry saves by registry and result",
		}, []string{"registry", "result"}),
		display: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "display_events_total",
			Help:      "Show and hide events by result",
		}, []string{"op", "result"}),
		checks: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "update_checks_total",
			Help:      "Completed update checks by outcome",
		}, []string{"outcome"}),
	}
	reg.MustRegister(r.saves, r.display, r.checks)
	return r
}

func result(err error) string {
	if err != nil {
		return "failed"
	}
	return "success"
}

func (r *Recorder) ObserveSave(registry string, err error) {
	if r == nil {
		return
	}
	r.saves.WithLabelValues(registry, result(err)).Inc()
}

func (r *Recorder) ObserveDisplay(op string, err error) {
	if r == nil {
		return
	}
	r.display.WithLabelValues(op, result(err)).Inc()
}

func (r *Recorder) ObserveCheck(outcome string) {
	if r == nil {
		return
	}
	r.checks.WithLabelValues(outcome).Inc()
}

// RegisterGauge exports fn as a scrape-time gauge.
func RegisterGauge(reg prom.Registerer, name, help string, fn func() float64) error {
	return reg.Register(prom.NewGaugeFunc(prom.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, fn))
}
