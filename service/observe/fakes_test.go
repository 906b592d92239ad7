package observe

import "time"

type fakeElement struct {
	classes []string
	attrs   map[string]string
	texts   []string
	opacity []float64
}

func newFakeElement(attrs map[string]string) *fakeElement {
	if attrs == nil {
		attrs = map[string]string{}
	}
	return &fakeElement{attrs: attrs}
}

func (e *fakeElement) AddClass(name string) { e.classes = append(e.classes, name) }

func (e *fakeElement) Attr(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

func (e *fakeElement) SetAttr(name, value string) { e.attrs[name] = value }

func (e *fakeElement) SetText(text string) { e.texts = append(e.texts, text) }

func (e *fakeElement) SetOpacity(opacity float64) { e.opacity = append(e.opacity, opacity) }

func (e *fakeElement) lastText() string {
	if len(e.texts) == 0 {
		return ""
	}
	return e.texts[len(e.texts)-1]
}

// fakeObserver keeps callbacks around even after Unobserve so tests can
// simulate a misbehaving observer that keeps firing.
type fakeObserver struct {
	callbacks  map[Element]func(Intersection)
	options    map[Element]Options
	unobserved []Element
}

func newFakeObserver() *fakeObserver {
	return &fakeObserver{
		callbacks: map[Element]func(Intersection){},
		options:   map[Element]Options{},
	}
}

func (o *fakeObserver) Observe(el Element, opts Options, fn func(Intersection)) {
	o.callbacks[el] = fn
	o.options[el] = opts
}

func (o *fakeObserver) Unobserve(el Element) { o.unobserved = append(o.unobserved, el) }

func (o *fakeObserver) fire(el Element, in Intersection) {
	if fn, ok := o.callbacks[el]; ok {
		fn(in)
	}
}

type fakePrefs struct {
	scheme    Scheme
	reduced   bool
	listeners map[int]func(Scheme)
	nextID    int
}

func newFakePrefs(scheme Scheme) *fakePrefs {
	return &fakePrefs{scheme: scheme, listeners: map[int]func(Scheme){}}
}

func (p *fakePrefs) ColorScheme() Scheme { return p.scheme }

func (p *fakePrefs) ReducedMotion() bool { return p.reduced }

func (p *fakePrefs) OnColorSchemeChange(fn func(Scheme)) func() {
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	return func() { delete(p.listeners, id) }
}

func (p *fakePrefs) changeScheme(s Scheme) {
	p.scheme = s
	for _, fn := range p.listeners {
		fn(s)
	}
}

// manualInterval hands tick control to the test.
type manualInterval struct {
	fn      func() bool
	stopped bool
}

func (m *manualInterval) run(_ time.Duration, fn func() bool) func() {
	m.fn = fn
	return func() { m.stopped = true }
}

func (m *manualInterval) tick() bool { return m.fn() }

// manualFrames queues frame callbacks until the test flushes them.
type manualFrames struct {
	queue []func()
}

func (f *manualFrames) Request(fn func()) { f.queue = append(f.queue, fn) }

func (f *manualFrames) flush() {
	queue := f.queue
	f.queue = nil
	for _, fn := range queue {
		fn()
	}
}
