package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/heatlab/internal/compute"
	"github.com/san-kum/heatlab/internal/diffusion"
	"github.com/san-kum/heatlab/internal/metrics"
	"github.com/san-kum/heatlab/internal/models"
)

// Registry resolves the names used in configuration files.
type Registry struct {
	initials     map[string]func(models.Params) (models.Initial, error)
	coefficients map[string]func(ci float64) (models.Coefficient, error)
	metrics      map[string]func() (diffusion.Metric, error)
}

func NewRegistry() *Registry {
	r := &Registry{
		initials:     make(map[string]func(models.Params) (models.Initial, error)),
		coefficients: make(map[string]func(float64) (models.Coefficient, error)),
		metrics:      make(map[string]func() (diffusion.Metric, error)),
	}

	for _, name := range models.InitialNames() {
		r.initials[name] = func(p models.Params) (models.Initial, error) {
			return models.InitialByName(name, p)
		}
	}
	for _, name := range models.CoefficientNames() {
		r.coefficients[name] = func(ci float64) (models.Coefficient, error) {
			return models.CoefficientByName(name, ci)
		}
	}
	for _, name := range metrics.Names() {
		r.metrics[name] = func() (diffusion.Metric, error) {
			return metrics.New(name)
		}
	}
	return r
}

// RegisterInitial adds or replaces an initial condition.
func (r *Registry) RegisterInitial(name string, fn func(models.Params) (models.Initial, error)) {
	r.initials[name] = fn
}

func (r *Registry) GetInitial(name string, p models.Params) (models.Initial, error) {
	fn, ok := r.initials[name]
	if !ok {
		return nil, fmt.Errorf("unknown initial condition: %s", name)
	}
	return fn(p)
}

func (r *Registry) GetCoefficient(name string, ci float64) (models.Coefficient, error) {
	if name == "" {
		name = "constant"
	}
	fn, ok := r.coefficients[name]
	if !ok {
		return nil, fmt.Errorf("unknown coefficient profile: %s", name)
	}
	return fn(ci)
}

func (r *Registry) GetBackend(name string, wg compute.WorkGroup, workers int) (compute.Backend, error) {
	return compute.ByName(name, wg, workers)
}

func (r *Registry) GetMetric(name string) (diffusion.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn()
}

func (r *Registry) ListInitials() []string {
	return sortedKeys(r.initials)
}

func (r *Registry) ListMetrics() []string {
	return sortedKeys(r.metrics)
}

// DefaultMetrics is attached when a configuration names none.
func (r *Registry) DefaultMetrics() []diffusion.Metric {
	return metrics.Default()
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
