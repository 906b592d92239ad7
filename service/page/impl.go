package page

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/smallhouse123/biolink-analytics/service/event"
	"github.com/smallhouse123/biolink-analytics/service/kvstore"
	"github.com/smallhouse123/biolink-analytics/service/observe"
	"github.com/smallhouse123/biolink-analytics/service/tracker"
)

const noticeTTL = 5 * time.Second

const wiringFailedNotice = "Analytics could not start; the page keeps working without it."

// Page is the per-page-load context object. It owns the tracker, the
// observation triggers and the visibility bookkeeping, and is discarded
// with the page.
type Page struct {
	trk      tracker.Tracker
	theme    *observe.Theme
	fade     *observe.ScrollFade
	notifier Notifier
	sugar    *zap.SugaredLogger
	clock    func() time.Time

	mu       sync.Mutex
	hidden   bool
	lastFlip time.Time

	closeOnce sync.Once
}

// New wires a page context. Wiring problems never propagate: the page
// degrades to whatever subset could be attached and surfaces a transient
// notice.
func New(opts Options) (p *Page) {
	sugar := opts.Sugar
	if sugar == nil {
		sugar = zap.NewNop().Sugar()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	defer func() {
		if r := recover(); r != nil {
			sugar.Errorw("page wiring failed", "panic", r)
			p = &Page{sugar: sugar, clock: clock, notifier: opts.Notifier, lastFlip: clock()}
			p.trk = opts.Trk
			p.notify(wiringFailedNotice)
		}
	}()

	store := opts.Store
	if store == nil {
		// degrade to in-memory persistence rather than fail
		sugar.Warnw("no store configured, events will not survive the page")
		store = kvstore.NewMemory()
	}

	trk := opts.Trk
	if trk == nil {
		trk = tracker.New(tracker.Options{
			Store:   store,
			Sugar:   sugar,
			Metrics: opts.Metrics,
			Info:    opts.Info,
			Clock:   clock,
		})
	}

	prefs := opts.Prefs
	if prefs == nil {
		prefs = staticPrefs{}
	}

	p = &Page{
		trk:      trk,
		notifier: opts.Notifier,
		sugar:    sugar,
		clock:    clock,
		lastFlip: clock(),
	}

	p.theme = observe.NewTheme(observe.ThemeOptions{
		Store: store,
		Prefs: prefs,
		Trk:   trk,
		Apply: opts.Doc.ApplyTheme,
		Sugar: sugar,
	})

	p.attachTriggers(opts, prefs)
	return p
}

// attachTriggers wires the animation triggers, honoring the one-time
// reduced-motion gate: when the platform asks for reduced motion, none of
// the visual animations are registered at all.
func (p *Page) attachTriggers(opts Options, prefs observe.PreferenceWatcher) {
	reduced := prefs.ReducedMotion()

	if opts.Observer != nil {
		lazy := observe.NewLazyImages(opts.Observer)
		for _, el := range opts.Doc.LazyImages {
			lazy.Watch(el)
		}
	}

	if reduced {
		// content must still show without the animation
		reveal := observe.NewReveal(opts.Observer)
		for _, el := range opts.Doc.RevealTargets {
			reveal.MarkRevealed(el)
		}
		counter := observe.NewCounter(observe.CounterOptions{Observer: opts.Observer})
		for _, el := range opts.Doc.CounterTargets {
			counter.ShowFinal(el)
		}
		return
	}

	if opts.Observer != nil {
		reveal := observe.NewReveal(opts.Observer)
		for _, el := range opts.Doc.RevealTargets {
			reveal.Watch(el)
		}

		counter := observe.NewCounter(observe.CounterOptions{
			Observer: opts.Observer,
			Duration: opts.CounterDuration,
		})
		for _, el := range opts.Doc.CounterTargets {
			counter.Watch(el)
		}
	}

	if opts.Doc.Header != nil {
		p.fade = observe.NewScrollFade(opts.Doc.Header, opts.Frames)
	}
}

// LinkClicked records a link card activation.
func (p *Page) LinkClicked(category, title, href string) {
	if p.trk == nil {
		return
	}
	p.trk.Record(event.LinkClick{Category: category, Title: title, Href: href})
}

// VisibilityChanged records page_hidden/page_visible flips with the length
// of the span that just ended. Repeated reports of the same state are
// ignored.
func (p *Page) VisibilityChanged(hidden bool) {
	if p.trk == nil {
		return
	}

	p.mu.Lock()
	if p.hidden == hidden {
		p.mu.Unlock()
		return
	}
	now := p.clock()
	elapsed := now.Sub(p.lastFlip).Milliseconds()
	p.hidden = hidden
	p.lastFlip = now
	p.mu.Unlock()

	if hidden {
		p.trk.Record(event.PageHidden{VisibleForMS: elapsed})
	} else {
		p.trk.Record(event.PageVisible{HiddenForMS: elapsed})
	}
}

// ReportError records an uncaught error as best-effort telemetry.
func (p *Page) ReportError(source string, err error) {
	if p.trk == nil || err == nil {
		return
	}
	p.trk.Record(event.ErrorEvent{Source: source, Message: err.Error()})
}

// ReportTiming records one performance measurement.
func (p *Page) ReportTiming(metric string, ms float64) {
	if p.trk == nil {
		return
	}
	p.trk.Record(event.Performance{Metric: metric, ValueMS: ms})
}

// OnScroll forwards a scroll offset to the header fade.
func (p *Page) OnScroll(offsetPx float64) {
	if p.fade != nil {
		p.fade.OnScroll(offsetPx)
	}
}

// ToggleTheme flips the explicit theme.
func (p *Page) ToggleTheme() {
	if p.theme != nil {
		p.theme.Toggle()
	}
}

// ThemeState returns the stored theme preference.
func (p *Page) ThemeState() observe.Scheme {
	if p.theme == nil {
		return observe.SchemeSystem
	}
	return p.theme.State()
}

// Tracker exposes the session's tracker.
func (p *Page) Tracker() tracker.Tracker {
	return p.trk
}

// Close ends the session: the session_end event is recorded and listeners
// detach. Idempotent, synchronous, safe during teardown.
func (p *Page) Close() {
	p.closeOnce.Do(func() {
		if p.theme != nil {
			p.theme.Close()
		}
		if p.trk != nil {
			p.trk.End()
		}
	})
}

func (p *Page) notify(message string) {
	if p.notifier == nil {
		return
	}
	dismiss := p.notifier.Show(message)
	if dismiss != nil {
		time.AfterFunc(noticeTTL, dismiss)
	}
}

// staticPrefs is the fallback watcher for embeddings without OS preference
// signals: light scheme, no reduced motion, no change notifications.
type staticPrefs struct{}

func (staticPrefs) ColorScheme() observe.Scheme { return observe.SchemeLight }

func (staticPrefs) ReducedMotion() bool { return false }

func (staticPrefs) OnColorSchemeChange(func(observe.Scheme)) func() { return func() {} }
