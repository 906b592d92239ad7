package observe

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRevealFiresOnce(t *testing.T) {
	obs := newFakeObserver()
	reveal := NewReveal(obs)
	el := newFakeElement(nil)

	reveal.Watch(el)
	require.Equal(t, revealThreshold, obs.options[Element(el)].Threshold)
	require.Equal(t, revealMarginPx, obs.options[Element(el)].MarginPx)

	// below threshold: nothing happens
	obs.fire(el, Intersection{Ratio: 0.05, Intersecting: true})
	require.Empty(t, el.classes)

	// not intersecting: nothing happens
	obs.fire(el, Intersection{Ratio: 0.5, Intersecting: false})
	require.Empty(t, el.classes)

	obs.fire(el, Intersection{Ratio: 0.15, Intersecting: true})
	require.Equal(t, []string{RevealClass}, el.classes)
	require.Equal(t, []Element{el}, obs.unobserved)

	// the observer misbehaves and fires again after unobserve
	obs.fire(el, Intersection{Ratio: 0.9, Intersecting: true})
	require.Equal(t, []string{RevealClass}, el.classes)
}

func TestMarkRevealedSkipsObservation(t *testing.T) {
	obs := newFakeObserver()
	reveal := NewReveal(obs)
	el := newFakeElement(nil)

	reveal.MarkRevealed(el)
	require.Equal(t, []string{RevealClass}, el.classes)
	require.Empty(t, obs.callbacks)
}
