package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallhouse123/biolink-analytics/service/config"
	"github.com/smallhouse123/biolink-analytics/service/event"
	"github.com/smallhouse123/biolink-analytics/service/kvstore"
	"github.com/smallhouse123/biolink-analytics/service/metrics"
)

var (
	Service = fx.Provide(NewService)
)

const (
	// DefaultMaxLogSize caps the persisted log: the oldest events are
	// dropped past it. Every append rewrites the whole log, so an
	// unbounded log would make appends ever more expensive.
	DefaultMaxLogSize = 1000

	persistTimeout = 2 * time.Second
)

type Options struct {
	Store      kvstore.KVStore
	Sugar      *zap.SugaredLogger
	Metrics    metrics.Metrics
	Info       PageInfo
	Clock      func() time.Time
	MaxLogSize int
}

type Impl struct {
	store   kvstore.KVStore
	sugar   *zap.SugaredLogger
	metrics metrics.Metrics
	info    PageInfo
	clock   func() time.Time
	maxLog  int

	mu      sync.Mutex
	session event.Session
	events  []event.Event
	endOnce sync.Once
}

type Params struct {
	fx.In

	Store   kvstore.KVStore
	Sugar   *zap.SugaredLogger
	Metrics metrics.Metrics
	Config  config.Config
	Info    PageInfo
}

func NewService(p Params) Tracker {
	return New(Options{
		Store:      p.Store,
		Sugar:      p.Sugar,
		Metrics:    p.Metrics,
		Info:       p.Info,
		MaxLogSize: getConfigInt(p.Config, "maxLogSize", DefaultMaxLogSize),
	})
}

func getConfigInt(configService config.Config, key string, defaultValue int) int {
	val, err := configService.Get(key)
	if err != nil {
		return defaultValue
	}
	if valInt, ok := val.(int); ok {
		return valInt
	}
	return defaultValue
}

// New starts a session: it assigns the session id, captures the start time
// and records the initial page_view.
func New(opts Options) Tracker {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	sugar := opts.Sugar
	if sugar == nil {
		sugar = zap.NewNop().Sugar()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.NewNop()
	}
	maxLog := opts.MaxLogSize
	if maxLog <= 0 {
		maxLog = DefaultMaxLogSize
	}

	now := clock()
	im := &Impl{
		store:   opts.Store,
		sugar:   sugar,
		metrics: m,
		info:    opts.Info,
		clock:   clock,
		maxLog:  maxLog,
		session: event.Session{ID: uuid.NewString(), StartTime: now},
	}

	im.Record(event.PageView{
		Referrer: opts.Info.Referrer,
		Device:   opts.Info.Device,
	})
	return im
}

func (im *Impl) Record(p event.Payload) {
	if p == nil {
		return
	}

	evt := event.Event{
		ID:        uuid.NewString(),
		SessionID: im.session.ID,
		Name:      p.EventName(),
		Data: event.Data{
			Timestamp: im.clock().UnixMilli(),
			URL:       im.info.URL,
			Payload:   p,
		},
	}

	im.mu.Lock()
	im.events = append(im.events, evt)
	if len(im.events) > im.maxLog {
		im.events = im.events[len(im.events)-im.maxLog:]
	}
	im.persistLocked()
	im.mu.Unlock()

	if err := im.metrics.BumpCount("events_recorded_total", 1, "name", string(evt.Name)); err != nil {
		im.sugar.Warnw("bump event counter failed", "err", err)
	}
}

// persistLocked mirrors the whole in-memory sequence to the store. Callers
// hold im.mu, which keeps persisted writes in append order.
func (im *Impl) persistLocked() {
	if timer, err := im.metrics.BumpTime("persist_duration_seconds"); err == nil {
		defer timer.End()
	}

	b, err := event.EncodeLog(im.events)
	if err != nil {
		im.warnPersist("encode event log failed", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := im.store.Set(ctx, kvstore.KeyEvents, b); err != nil {
		im.warnPersist("write event log failed", err)
	}
}

func (im *Impl) warnPersist(msg string, err error) {
	im.sugar.Warnw(msg, "sessionId", im.session.ID, "err", err)
	if err := im.metrics.BumpCount("persist_failures_total", 1); err != nil {
		im.sugar.Warnw("bump persist failure counter failed", "err", err)
	}
}

func (im *Impl) Session() event.Session {
	return im.session
}

func (im *Impl) Events() []event.Event {
	im.mu.Lock()
	defer im.mu.Unlock()

	out := make([]event.Event, len(im.events))
	copy(out, im.events)
	return out
}

func (im *Impl) LoadPersisted(ctx context.Context) []event.Event {
	b, err := im.store.Get(ctx, kvstore.KeyEvents)
	if errors.Is(err, kvstore.ErrNotFound) {
		return []event.Event{}
	}
	if err != nil {
		im.sugar.Warnw("read event log failed", "err", err)
		return []event.Event{}
	}

	events, err := event.DecodeLog(b)
	if err != nil {
		// corruption is not fatal, the log just starts over
		im.sugar.Warnw("persisted event log corrupt", "err", err)
		return []event.Event{}
	}
	return events
}

func (im *Impl) End() {
	im.endOnce.Do(func() {
		im.mu.Lock()
		count := len(im.events)
		im.mu.Unlock()

		im.Record(event.SessionEnd{
			DurationMS:  im.clock().Sub(im.session.StartTime).Milliseconds(),
			EventsCount: count,
		})
	})
}
