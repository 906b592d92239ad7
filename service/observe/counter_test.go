package observe

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func startCounter(t *testing.T, target string, duration time.Duration) (*fakeElement, *manualInterval, *fakeObserver) {
	t.Helper()

	obs := newFakeObserver()
	interval := &manualInterval{}
	counter := NewCounter(CounterOptions{
		Observer: obs,
		Duration: duration,
		Interval: interval.run,
	})

	attrs := map[string]string{}
	if target != "" {
		attrs[TargetAttr] = target
	}
	el := newFakeElement(attrs)
	counter.Watch(el)
	obs.fire(el, Intersection{Ratio: 0.6, Intersecting: true})
	return el, interval, obs
}

func TestCounterTerminatesExactlyOnTarget(t *testing.T) {
	el, interval, obs := startCounter(t, "1000", 2*time.Second)
	require.Equal(t, []Element{el}, obs.unobserved)
	require.NotNil(t, interval.fn)

	for i := 0; i < 10000; i++ {
		if !interval.tick() {
			break
		}
	}

	require.Equal(t, "1000", el.lastText())
	for _, text := range el.texts {
		val, err := strconv.Atoi(text)
		require.NoError(t, err)
		require.LessOrEqual(t, val, 1000)
	}
}

func TestCounterRendersFloorOfIntermediateValues(t *testing.T) {
	// 10 over 2s at 16ms steps: increment 0.08 per tick
	el, interval, _ := startCounter(t, "10", 2*time.Second)

	require.True(t, interval.tick())
	require.Equal(t, "0", el.lastText())

	for i := 0; i < 12; i++ {
		require.True(t, interval.tick())
	}
	// 13 ticks * 0.08 = 1.04
	require.Equal(t, "1", el.lastText())
}

func TestCounterStartsOnlyOnce(t *testing.T) {
	obs := newFakeObserver()
	starts := 0
	counter := NewCounter(CounterOptions{
		Observer: obs,
		Interval: func(time.Duration, func() bool) func() {
			starts++
			return func() {}
		},
	})

	el := newFakeElement(map[string]string{TargetAttr: "42"})
	counter.Watch(el)
	obs.fire(el, Intersection{Ratio: 0.7, Intersecting: true})
	obs.fire(el, Intersection{Ratio: 0.9, Intersecting: true})
	require.Equal(t, 1, starts)
}

func TestCounterIgnoresHalfHiddenElements(t *testing.T) {
	el, interval, _ := func() (*fakeElement, *manualInterval, *fakeObserver) {
		obs := newFakeObserver()
		interval := &manualInterval{}
		counter := NewCounter(CounterOptions{Observer: obs, Interval: interval.run})
		el := newFakeElement(map[string]string{TargetAttr: "5"})
		counter.Watch(el)
		obs.fire(el, Intersection{Ratio: 0.3, Intersecting: true})
		return el, interval, obs
	}()

	require.Nil(t, interval.fn)
	require.Empty(t, el.texts)
}

func TestCounterWithoutTargetAttribute(t *testing.T) {
	el, interval, _ := startCounter(t, "", 2*time.Second)
	require.Nil(t, interval.fn)
	require.Empty(t, el.texts)
}

func TestCounterShowFinal(t *testing.T) {
	counter := NewCounter(CounterOptions{})

	el := newFakeElement(map[string]string{TargetAttr: "1000"})
	counter.ShowFinal(el)
	require.Equal(t, []string{"1000"}, el.texts)

	plain := newFakeElement(nil)
	counter.ShowFinal(plain)
	require.Empty(t, plain.texts)

	bad := newFakeElement(map[string]string{TargetAttr: "-3"})
	counter.ShowFinal(bad)
	require.Equal(t, "0", bad.lastText())
}

func TestCounterWithBadTarget(t *testing.T) {
	el, interval, _ := startCounter(t, "not-a-number", 2*time.Second)
	require.Nil(t, interval.fn)
	require.Equal(t, "0", el.lastText())
}
