package observe

import (
	"math"
	"strconv"
	"sync"
	"time"
)

const (
	// TargetAttr carries the numeric value a counter animates up to.
	TargetAttr = "data-target"

	counterThreshold = 0.5

	// ~60 stepped updates per second.
	counterStepInterval = 16 * time.Millisecond

	// DefaultCounterDuration is the full animation length.
	DefaultCounterDuration = 2 * time.Second
)

// Interval runs fn every interval until fn returns false. The returned stop
// cancels any outstanding runs.
type Interval func(interval time.Duration, fn func() bool) (stop func())

func defaultInterval(interval time.Duration, fn func() bool) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	var once sync.Once
	stop := func() {
		once.Do(func() { close(done) })
	}

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if !fn() {
					stop()
					return
				}
			}
		}
	}()
	return stop
}

// Counter animates an element's text from zero up to its data-target value
// the first time half of it becomes visible.
type Counter struct {
	observer ViewportObserver
	duration time.Duration
	interval Interval

	mu      sync.Mutex
	started map[Element]bool
}

type CounterOptions struct {
	Observer ViewportObserver
	Duration time.Duration
	Interval Interval
}

func NewCounter(opts CounterOptions) *Counter {
	duration := opts.Duration
	if duration <= 0 {
		duration = DefaultCounterDuration
	}
	interval := opts.Interval
	if interval == nil {
		interval = defaultInterval
	}
	return &Counter{
		observer: opts.Observer,
		duration: duration,
		interval: interval,
		started:  map[Element]bool{},
	}
}

func (c *Counter) Watch(el Element) {
	c.observer.Observe(el, Options{Threshold: counterThreshold}, func(in Intersection) {
		if !in.Intersecting || in.Ratio < counterThreshold {
			return
		}

		c.mu.Lock()
		if c.started[el] {
			c.mu.Unlock()
			return
		}
		c.started[el] = true
		c.mu.Unlock()

		c.observer.Unobserve(el)
		c.animate(el)
	})
}

// ShowFinal renders the target value directly, for pages that skip the
// animation. Elements without a usable target keep their static text.
func (c *Counter) ShowFinal(el Element) {
	raw, ok := el.Attr(TargetAttr)
	if !ok {
		return
	}
	target, err := strconv.Atoi(raw)
	if err != nil || target <= 0 {
		el.SetText("0")
		return
	}
	el.SetText(strconv.Itoa(target))
}

func (c *Counter) animate(el Element) {
	raw, ok := el.Attr(TargetAttr)
	if !ok {
		return
	}
	target, err := strconv.Atoi(raw)
	if err != nil || target <= 0 {
		el.SetText("0")
		return
	}

	steps := float64(c.duration) / float64(counterStepInterval)
	increment := float64(target) / steps
	current := 0.0

	c.interval(counterStepInterval, func() bool {
		current += increment
		if current >= float64(target) {
			// terminate on the exact target, never past it
			el.SetText(strconv.Itoa(target))
			return false
		}
		el.SetText(strconv.Itoa(int(math.Floor(current))))
		return true
	})
}
