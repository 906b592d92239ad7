package observe

import "sync"

const (
	// RevealClass marks an element as revealed. The transition is
	// one-directional: the class is never removed.
	RevealClass = "revealed"

	revealThreshold = 0.1
	revealMarginPx  = 50
)

// Reveal marks elements revealed the first time they enter the viewport,
// then stops tracking them.
type Reveal struct {
	observer ViewportObserver

	mu   sync.Mutex
	done map[Element]bool
}

func NewReveal(observer ViewportObserver) *Reveal {
	return &Reveal{
		observer: observer,
		done:     map[Element]bool{},
	}
}

func (r *Reveal) Watch(el Element) {
	r.observer.Observe(el, Options{Threshold: revealThreshold, MarginPx: revealMarginPx}, func(in Intersection) {
		if !in.Intersecting || in.Ratio < revealThreshold {
			return
		}

		r.mu.Lock()
		if r.done[el] {
			r.mu.Unlock()
			return
		}
		r.done[el] = true
		r.mu.Unlock()

		el.AddClass(RevealClass)
		r.observer.Unobserve(el)
	})
}

// MarkRevealed applies the revealed state without observing. Used when
// reduced motion disables the animation but content must still show.
func (r *Reveal) MarkRevealed(el Element) {
	r.mu.Lock()
	r.done[el] = true
	r.mu.Unlock()
	el.AddClass(RevealClass)
}
