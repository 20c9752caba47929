// Package metrics exposes Prometheus instrumentation for conversations,
// backend requests and the speech channel.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aretw0/broilr/pkg/domain"
	"github.com/aretw0/broilr/pkg/speech"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "broilr"

// Metrics owns a private registry so several instances can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	stageTransitions *prometheus.CounterVec
	backendCalls     *prometheus.CounterVec
	backendDuration  *prometheus.HistogramVec
	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	speechTransition *prometheus.CounterVec
}

// New creates and registers every collector.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		stageTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stage_transitions_total",
				Help:      "Total number of conversation stage transitions",
			},
			[]string{"from", "to"},
		),
		backendCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stage_backend_calls_total",
				Help:      "Backend calls issued by stage handlers",
			},
			[]string{"stage", "operation", "outcome"},
		),
		backendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_backend_call_duration_seconds",
				Help:      "Duration of backend calls issued by stage handlers",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "backend_requests_total",
				Help:      "Requests sent to the recipe backend, retries included",
			},
			[]string{"operation", "outcome"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "backend_request_duration_seconds",
				Help:      "Duration of single recipe backend requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		speechTransition: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "speech_transitions_total",
				Help:      "Speech capture state changes",
			},
			[]string{"from", "to", "event"},
		),
	}
	m.registry.MustRegister(
		m.stageTransitions,
		m.backendCalls,
		m.backendDuration,
		m.requests,
		m.requestDuration,
		m.speechTransition,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Hooks records stage transitions and backend calls made by the engine.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStageEnter: func(_ context.Context, e *domain.StageEvent) {
			m.stageTransitions.WithLabelValues(string(e.From), string(e.To)).Inc()
		},
		OnBackendReturn: func(_ context.Context, e *domain.BackendEvent) {
			m.backendCalls.WithLabelValues(string(e.Stage), e.Operation, outcomeOf(e.IsError)).Inc()
			m.backendDuration.WithLabelValues(e.Operation).Observe(e.Duration.Seconds())
		},
	}
}

// ObserveBackendRequest implements middleware.Observer.
func (m *Metrics) ObserveBackendRequest(op string, d time.Duration, err error) {
	outcome := outcomeOf(err != nil)
	if errors.Is(err, context.DeadlineExceeded) {
		outcome = "timeout"
	}
	m.requests.WithLabelValues(op, outcome).Inc()
	m.requestDuration.WithLabelValues(op).Observe(d.Seconds())
}

// ObserveSpeech records a speech controller transition.
func (m *Metrics) ObserveSpeech(tr speech.Transition) {
	m.speechTransition.WithLabelValues(tr.From.String(), tr.To.String(), string(tr.Event)).Inc()
}

// TrackConversations exports count as the active conversations gauge.
// It must be called at most once per Metrics.
func (m *Metrics) TrackConversations(count func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_conversations",
			Help:      "Conversations currently held by the server",
		},
		func() float64 { return float64(count()) },
	))
}

func outcomeOf(failed bool) string {
	if failed {
		return "error"
	}
	return "ok"
}
