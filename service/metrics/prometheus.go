package metrics

import (
	"errors"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

var (
	Service = fx.Provide(New)
)

type Params struct {
	fx.In

	ServiceName string `name:"serviceName"`
}

type PromMetric struct {
	service            string
	registry           *prometheus.Registry
	histogramCollector sync.Map
	counterCollector   sync.Map
	mutex              sync.Mutex
}

func New(p Params) Metrics {
	return &PromMetric{
		service:  p.ServiceName,
		registry: prometheus.NewRegistry(),
	}
}

func (p *PromMetric) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *PromMetric) BumpTime(key string, tags ...string) (Endable, error) {
	if len(tags)%2 != 0 {
		return nil, errors.New("tags must be a multiplier of 2")
	}

	id := p.service + key

	// First check without a lock
	if collector, ok := p.histogramCollector.Load(id); ok {
		duration := collector.(*prometheus.HistogramVec)
		timer := prometheus.NewTimer(duration.With(tagsToLabels(tags)))
		return &promTimer{timer: timer}, nil
	}

	// Lock to handle concurrent registrations
	p.mutex.Lock()
	defer p.mutex.Unlock()

	// Double-check after acquiring the lock
	if collector, ok := p.histogramCollector.Load(id); ok {
		duration := collector.(*prometheus.HistogramVec)
		timer := prometheus.NewTimer(duration.With(tagsToLabels(tags)))
		return &promTimer{timer: timer}, nil
	}

	// Create and register the new metric
	promOpts := prometheus.HistogramOpts{
		Namespace: p.service,
		Name:      key,
	}

	keyArr, _ := tagsToKeyAndVals(tags)
	duration := prometheus.NewHistogramVec(promOpts, keyArr)
	if err := p.registry.Register(duration); err != nil {
		return nil, err
	}
	p.histogramCollector.Store(id, duration)

	timer := prometheus.NewTimer(duration.With(tagsToLabels(tags)))
	return &promTimer{timer: timer}, nil
}

func (p *PromMetric) BumpCount(key string, val float64, tags ...string) error {
	if len(tags)%2 != 0 {
		return errors.New("tags must be a multiplier of 2")
	}

	id := p.service + key

	// First check without a lock
	if collector, ok := p.counterCollector.Load(id); ok {
		counter := collector.(*prometheus.CounterVec)
		counter.With(tagsToLabels(tags)).Add(val)
		return nil
	}

	// Lock to handle concurrent registrations
	p.mutex.Lock()
	defer p.mutex.Unlock()

	// Double-check after acquiring the lock
	if collector, ok := p.counterCollector.Load(id); ok {
		counter := collector.(*prometheus.CounterVec)
		counter.With(tagsToLabels(tags)).Add(val)
		return nil
	}

	// Create and register the new metric
	promOpts := prometheus.CounterOpts{
		Namespace: p.service,
		Name:      key,
	}

	keyArr, _ := tagsToKeyAndVals(tags)
	counter := prometheus.NewCounterVec(promOpts, keyArr)
	if err := p.registry.Register(counter); err != nil {
		return err
	}
	p.counterCollector.Store(id, counter)

	counter.With(tagsToLabels(tags)).Add(val)
	return nil
}

func tagsToKeyAndVals(tags []string) ([]string, []string) {
	keyArr := []string{}
	valArr := []string{}

	if len(tags)%2 != 0 {
		return keyArr, valArr
	}

	for i := 0; i < len(tags); i += 2 {
		keyArr = append(keyArr, tags[i])
		valArr = append(valArr, tags[i+1])
	}
	return keyArr, valArr
}

func tagsToLabels(tags []string) prometheus.Labels {
	newLabels := prometheus.Labels{}
	for i := 0; i < len(tags); i += 2 {
		newLabels[tags[i]] = tags[i+1]
	}
	return newLabels
}

type promTimer struct {
	timer *prometheus.Timer
}

func (p *promTimer) End() {
	p.timer.ObserveDuration()
}
