package page

import (
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallhouse123/biolink-analytics/service/kvstore"
	"github.com/smallhouse123/biolink-analytics/service/metrics"
	"github.com/smallhouse123/biolink-analytics/service/observe"
	"github.com/smallhouse123/biolink-analytics/service/tracker"
)

var (
	Service = fx.Provide(NewService)
)

// Document lists the addressable targets the triggers act on. Any of them
// may be absent; the matching trigger is simply not attached.
type Document struct {
	Header         observe.Element
	RevealTargets  []observe.Element
	CounterTargets []observe.Element
	LazyImages     []observe.Element

	// ApplyTheme pushes the effective color scheme onto the document.
	ApplyTheme func(observe.Scheme)
}

// Notifier surfaces a transient user-visible notice. The returned dismiss
// func removes it; the page dismisses automatically after a fixed delay.
type Notifier interface {
	Show(message string) (dismiss func())
}

type Options struct {
	Store    kvstore.KVStore
	Trk      tracker.Tracker
	Info     tracker.PageInfo
	Doc      Document
	Observer observe.ViewportObserver
	Prefs    observe.PreferenceWatcher
	Frames   observe.FrameScheduler
	Notifier Notifier
	Sugar    *zap.SugaredLogger
	Metrics  metrics.Metrics
	Clock    func() time.Time

	CounterDuration time.Duration
}

type Params struct {
	fx.In

	Store    kvstore.KVStore
	Trk      tracker.Tracker
	Sugar    *zap.SugaredLogger
	Metrics  metrics.Metrics
	Doc      Document                  `optional:"true"`
	Observer observe.ViewportObserver  `optional:"true"`
	Prefs    observe.PreferenceWatcher `optional:"true"`
	Frames   observe.FrameScheduler    `optional:"true"`
	Notifier Notifier                  `optional:"true"`
}

func NewService(p Params) *Page {
	return New(Options{
		Store:    p.Store,
		Trk:      p.Trk,
		Doc:      p.Doc,
		Observer: p.Observer,
		Prefs:    p.Prefs,
		Frames:   p.Frames,
		Notifier: p.Notifier,
		Sugar:    p.Sugar,
		Metrics:  p.Metrics,
	})
}
