package observe

import "sync"

// SrcAttr is the deferred image source attribute.
const SrcAttr = "data-src"

const lazyMarginPx = 50

// LazyImages promotes an image's deferred source to its real source the
// first time it approaches the viewport.
type LazyImages struct {
	observer ViewportObserver

	mu   sync.Mutex
	done map[Element]bool
}

func NewLazyImages(observer ViewportObserver) *LazyImages {
	return &LazyImages{
		observer: observer,
		done:     map[Element]bool{},
	}
}

func (l *LazyImages) Watch(el Element) {
	l.observer.Observe(el, Options{MarginPx: lazyMarginPx}, func(in Intersection) {
		if !in.Intersecting {
			return
		}

		l.mu.Lock()
		if l.done[el] {
			l.mu.Unlock()
			return
		}
		l.done[el] = true
		l.mu.Unlock()

		if src, ok := el.Attr(SrcAttr); ok {
			el.SetAttr("src", src)
		}
		l.observer.Unobserve(el)
	})
}
