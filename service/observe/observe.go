// Package observe turns passive page signals (viewport intersection, scroll
// offset, OS presentation preferences) into one-shot state transitions and
// analytics events. The browser capabilities it needs arrive as small
// interfaces so every trigger runs against fakes in tests.
package observe

// Scheme is a color scheme. SchemeSystem only ever appears as a stored
// preference; an effective scheme is always light or dark.
type Scheme string

const (
	SchemeLight  Scheme = "light"
	SchemeDark   Scheme = "dark"
	SchemeSystem Scheme = "system"
)

// Element is the minimal handle a trigger needs on a page element.
type Element interface {
	AddClass(name string)
	Attr(name string) (string, bool)
	SetAttr(name, value string)
	SetText(text string)
	SetOpacity(opacity float64)
}

// Intersection reports one visibility change of an observed element.
type Intersection struct {
	Ratio        float64
	Intersecting bool
}

// Options tune a single observation.
type Options struct {
	// Threshold is the visible ratio at which the callback fires.
	Threshold float64
	// MarginPx extends the viewport so the transition anticipates scroll.
	MarginPx int
}

// ViewportObserver watches elements for viewport intersection.
type ViewportObserver interface {
	Observe(el Element, opts Options, fn func(Intersection))
	Unobserve(el Element)
}

// PreferenceWatcher reports OS-level presentation preferences.
type PreferenceWatcher interface {
	ColorScheme() Scheme
	ReducedMotion() bool

	// OnColorSchemeChange registers fn for OS color scheme changes and
	// returns a cancel func.
	OnColorSchemeChange(fn func(Scheme)) (cancel func())
}
