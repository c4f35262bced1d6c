package services

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

const healthCheckTimeout = 2 * time.Second

type HealthService struct {
	model        *Model
	dependencies []dependency
	metrics      *Metrics
	logger       *logrus.Logger
}

type dependency struct {
	name  string
	check func(ctx context.Context) error
}

type HealthStatus struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Model       ModelHealth       `json:"model"`
	Services    map[string]string `json:"services,omitempty"`
	NonCritical []string          `json:"non_critical_failures,omitempty"`
	Latency     time.Duration     `json:"latency,omitempty"`
}

// ModelHealth describes the loaded model. Only Initialized is critical; a degraded
// content or popularity component still serves results.
type ModelHealth struct {
	Initialized  bool       `json:"initialized"`
	State        ModelState `json:"state"`
	BuildID      string     `json:"build_id,omitempty"`
	BuiltAt      *time.Time `json:"built_at,omitempty"`
	ContentModel ModelState `json:"content_model"`
	Popularity   ModelState `json:"popularity"`
	Products     int        `json:"products"`
	Interactions int        `json:"interactions"`
	Error        string     `json:"error,omitempty"`
}

func NewHealthService(model *Model, metrics *Metrics, logger *logrus.Logger) *HealthService {
	return &HealthService{
		model:   model,
		metrics: metrics,
		logger:  logger,
	}
}

// AddDependency registers a non-critical backing service, such as the result cache.
func (s *HealthService) AddDependency(name string, check func(ctx context.Context) error) {
	s.dependencies = append(s.dependencies, dependency{name: name, check: check})
}

func (s *HealthService) CheckHealth(ctx context.Context) *HealthStatus {
	start := time.Now()
	status := &HealthStatus{
		Timestamp: start,
		Model:     s.modelHealth(),
		Services:  make(map[string]string),
	}
	s.metrics.SetHealth("model", status.Model.Initialized)

	for _, dep := range s.dependencies {
		checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		err := dep.check(checkCtx)
		cancel()

		if err != nil {
			status.Services[dep.name] = "unhealthy"
			status.NonCritical = append(status.NonCritical, dep.name)
			s.logger.WithError(err).Warnf("Non-critical service %s is unhealthy", dep.name)
			s.metrics.SetHealth(dep.name, false)
			continue
		}
		status.Services[dep.name] = "healthy"
		s.metrics.SetHealth(dep.name, true)
	}
	sort.Strings(status.NonCritical)

	switch {
	case !status.Model.Initialized:
		status.Status = "unhealthy"
	case status.Model.State == StateDegraded || len(status.NonCritical) > 0:
		status.Status = "degraded"
	default:
		status.Status = "healthy"
	}

	status.Latency = time.Since(start)
	return status
}

// CheckModel reports the loaded model without probing dependencies.
func (s *HealthService) CheckModel() ModelHealth {
	h := s.modelHealth()
	s.metrics.SetHealth("model", h.Initialized)
	return h
}

func (s *HealthService) modelHealth() ModelHealth {
	m := s.model
	h := ModelHealth{
		Initialized:  m.Ready(),
		State:        m.State(),
		ContentModel: StateNotReady,
		Popularity:   StateNotReady,
	}
	if m == nil {
		h.Error = ErrNotInitialized.Error()
		return h
	}

	h.BuildID = m.BuildID.String()
	builtAt := m.BuiltAt
	h.BuiltAt = &builtAt
	if !m.Ready() {
		h.Error = m.Err().Error()
		return h
	}

	h.ContentModel = m.Similarity.State()
	h.Popularity = m.Popularity.State()
	h.Products = m.Catalog.Len()
	h.Interactions = m.Interactions.Len()
	return h
}
