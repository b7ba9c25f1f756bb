package service

import (
	"context"
	"errors"

	"github.com/bsolutions/shes/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

type prometheusObserver struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewPrometheusObserver registers use-case counters and a duration
// histogram with reg and returns an observer feeding them.
func NewPrometheusObserver(reg prometheus.Registerer) (UseCaseObserver, error) {
	o := &prometheusObserver{
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shes",
			Name:      "use_case_total",
			Help:      "Service use cases executed, by outcome.",
		}, []string{"use_case", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "shes",
			Name:      "use_case_duration_seconds",
			Help:      "Service use case latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"use_case"}),
	}
	for _, c := range []prometheus.Collector{o.total, o.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *prometheusObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	o.total.WithLabelValues(event.Name, outcomeOf(event.Err)).Inc()
	o.duration.WithLabelValues(event.Name).Observe(event.Duration.Seconds())
}

// outcomeOf maps an error onto a small fixed label set.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrStructuralIntegrity):
		return "integrity"
	case errors.Is(err, domain.ErrPersistence):
		return "persistence"
	case errors.Is(err, domain.ErrNotReady):
		return "not_ready"
	}
	return "error"
}
