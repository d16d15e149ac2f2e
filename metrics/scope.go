// Package metrics provides a Scope abstraction over Prometheus so the TA
// core can record handler counts and durations without depending on the
// Prometheus API directly.
package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Scope is a stats collector that prefixes the names of the stats it
// collects, and lazily creates the underlying Prometheus collectors the
// first time each stat name is observed.
type Scope interface {
	NewScope(scopes ...string) Scope

	Inc(stat string, value int64)
	Gauge(stat string, value int64)
	GaugeDelta(stat string, value int64)
	TimingDuration(stat string, delta time.Duration)

	MustRegister(...prometheus.Collector)
}

// autoRegisterer lazily creates and registers Prometheus collectors keyed
// by stat name, so callers never have to pre-declare metrics.
type autoRegisterer struct {
	mu        sync.Mutex
	reg       prometheus.Registerer
	counters  map[string]*prometheus.CounterVec
	gauges    map[string]*prometheus.GaugeVec
	summaries map[string]*prometheus.SummaryVec
}

func newAutoRegisterer(reg prometheus.Registerer) *autoRegisterer {
	return &autoRegisterer{
		reg:       reg,
		counters:  map[string]*prometheus.CounterVec{},
		gauges:    map[string]*prometheus.GaugeVec{},
		summaries: map[string]*prometheus.SummaryVec{},
	}
}

func sanitize(name string) string {
	return strings.NewReplacer(".", "_", "-", "_").Replace(name)
}

func (a *autoRegisterer) autoCounter(name string) prometheus.Counter {
	a.mu.Lock()
	defer a.mu.Unlock()
	cv, ok := a.counters[name]
	if !ok {
		cv = prometheus.NewCounterVec(prometheus.CounterOpts{Name: sanitize(name)}, nil)
		a.reg.MustRegister(cv)
		a.counters[name] = cv
	}
	return cv.WithLabelValues()
}

func (a *autoRegisterer) autoGauge(name string) prometheus.Gauge {
	a.mu.Lock()
	defer a.mu.Unlock()
	gv, ok := a.gauges[name]
	if !ok {
		gv = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: sanitize(name)}, nil)
		a.reg.MustRegister(gv)
		a.gauges[name] = gv
	}
	return gv.WithLabelValues()
}

func (a *autoRegisterer) autoSummary(name string) prometheus.Observer {
	a.mu.Lock()
	defer a.mu.Unlock()
	sv, ok := a.summaries[name]
	if !ok {
		sv = prometheus.NewSummaryVec(prometheus.SummaryOpts{Name: sanitize(name)}, nil)
		a.reg.MustRegister(sv)
		a.summaries[name] = sv
	}
	return sv.WithLabelValues()
}

// promScope is a Scope that sends data to Prometheus.
type promScope struct {
	prometheus.Registerer
	*autoRegisterer
	prefix string
}

var _ Scope = &promScope{}

// NewPromScope returns a Scope that sends data to Prometheus.
func NewPromScope(registerer prometheus.Registerer, scopes ...string) Scope {
	return &promScope{
		Registerer:     registerer,
		prefix:         strings.Join(scopes, "."),
		autoRegisterer: newAutoRegisterer(registerer),
	}
}

func (s *promScope) name(stat string) string {
	if s.prefix == "" {
		return stat
	}
	return s.prefix + "." + stat
}

// NewScope generates a new Scope prefixed by this Scope's prefix plus the
// prefixes given, joined by periods.
func (s *promScope) NewScope(scopes ...string) Scope {
	scope := strings.Join(scopes, ".")
	next := scope
	if s.prefix != "" {
		next = s.prefix + "." + scope
	}
	return &promScope{
		Registerer:     s.Registerer,
		prefix:         next,
		autoRegisterer: s.autoRegisterer,
	}
}

// Inc increments the given stat.
func (s *promScope) Inc(stat string, value int64) {
	s.autoCounter(s.name(stat)).Add(float64(value))
}

// Gauge sets a gauge stat.
func (s *promScope) Gauge(stat string, value int64) {
	s.autoGauge(s.name(stat)).Set(float64(value))
}

// GaugeDelta adds to a gauge stat.
func (s *promScope) GaugeDelta(stat string, value int64) {
	s.autoGauge(s.name(stat)).Add(float64(value))
}

// TimingDuration records a latency observation.
func (s *promScope) TimingDuration(stat string, delta time.Duration) {
	s.autoSummary(s.name(stat) + "_seconds").Observe(delta.Seconds())
}

// noopScope is a Scope that discards everything, useful in tests.
type noopScope struct{}

// NewNoopScope returns a Scope that won't collect anything.
func NewNoopScope() Scope { return noopScope{} }

func (ns noopScope) NewScope(scopes ...string) Scope              { return ns }
func (noopScope) Inc(stat string, value int64)                    {}
func (noopScope) Gauge(stat string, value int64)                  {}
func (noopScope) GaugeDelta(stat string, value int64)             {}
func (noopScope) TimingDuration(stat string, delta time.Duration) {}
func (noopScope) MustRegister(...prometheus.Collector)            {}
