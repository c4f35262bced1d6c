package services

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for model builds and served requests.
type Metrics struct {
	modelReady         prometheus.Gauge
	componentState     *prometheus.GaugeVec
	catalogProducts    prometheus.Gauge
	interactionEvents  prometheus.Gauge
	buildDuration      prometheus.Histogram
	recommendations    *prometheus.CounterVec
	recommendationSize *prometheus.HistogramVec
	latency            *prometheus.HistogramVec
	fills              prometheus.Counter
	degradations       *prometheus.CounterVec
	cacheRequests      *prometheus.CounterVec
	healthStatus       *prometheus.GaugeVec
}

// NewMetrics registers collectors with reg, reusing collectors that are already
// registered. A nil reg means the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		modelReady: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "recommender_model_ready",
			Help: "Whether the recommender model is initialized (1 = ready, 0 = unavailable)",
		})),
		componentState: register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "recommender_component_ready",
			Help: "Readiness of each model component (1 = ready, 0 = not ready or degraded)",
		}, []string{"component"})),
		catalogProducts: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "recommender_catalog_products",
			Help: "Number of products in the loaded catalog",
		})),
		interactionEvents: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "recommender_interaction_events",
			Help: "Number of events in the loaded interaction log",
		})),
		buildDuration: register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "recommender_build_duration_seconds",
			Help:    "Time spent loading sources and building the model",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		})),
		recommendations: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recommendations_served_total",
			Help: "Recommendation requests served, by path",
		}, []string{"path"})),
		recommendationSize: register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recommendation_result_size",
			Help:    "Number of products returned per request",
			Buckets: []float64{0, 1, 3, 5, 10, 20, 50, 100},
		}, []string{"path"})),
		latency: register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recommendation_latency_seconds",
			Help:    "Time to produce a recommendation list",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"})),
		fills: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recommendation_popularity_fills_total",
			Help: "Anchor requests topped up from the popularity ranking",
		})),
		degradations: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recommendation_content_degradations_total",
			Help: "Anchor requests whose content tier was empty, by reason",
		}, []string{"reason"})),
		cacheRequests: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recommendation_cache_requests_total",
			Help: "Result cache lookups, by outcome",
		}, []string{"result"})),
		healthStatus: register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "health_check_status",
			Help: "Health check status (1 = healthy, 0 = unhealthy)",
		}, []string{"service"})),
	}

	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

// ObserveBuild publishes the outcome of a model build.
func (m *Metrics) ObserveBuild(model *Model, took time.Duration) {
	if m == nil {
		return
	}
	m.buildDuration.Observe(took.Seconds())

	if !model.Ready() {
		m.modelReady.Set(0)
		m.componentState.WithLabelValues("content").Set(0)
		m.componentState.WithLabelValues("popularity").Set(0)
		return
	}

	m.modelReady.Set(1)
	m.catalogProducts.Set(float64(model.Catalog.Len()))
	m.interactionEvents.Set(float64(model.Interactions.Len()))
	m.componentState.WithLabelValues("content").Set(boolGauge(model.Similarity.Ready()))
	m.componentState.WithLabelValues("popularity").Set(boolGauge(model.Popularity.State() == StateReady))
}

func (m *Metrics) ObserveRecommendation(path RecommendPath, size int, took time.Duration) {
	if m == nil {
		return
	}
	m.recommendations.WithLabelValues(string(path)).Inc()
	m.recommendationSize.WithLabelValues(string(path)).Observe(float64(size))
	m.latency.WithLabelValues(string(path)).Observe(took.Seconds())
}

func (m *Metrics) IncFill() {
	if m == nil {
		return
	}
	m.fills.Inc()
}

func (m *Metrics) IncDegradation(reason string) {
	if m == nil {
		return
	}
	m.degradations.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncCache(result string) {
	if m == nil {
		return
	}
	m.cacheRequests.WithLabelValues(result).Inc()
}

// SetHealth records the latest health check result for a service.
func (m *Metrics) SetHealth(service string, healthy bool) {
	if m == nil {
		return
	}
	m.healthStatus.WithLabelValues(service).Set(boolGauge(healthy))
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
