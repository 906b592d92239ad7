package summary

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	pkgerrors "github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallhouse123/biolink-analytics/service/event"
	"github.com/smallhouse123/biolink-analytics/service/kvstore"
)

var (
	Service = fx.Provide(NewService)
)

type Impl struct {
	store kvstore.KVStore
	sugar *zap.SugaredLogger
	clock func() time.Time
}

type Options struct {
	Store kvstore.KVStore
	Sugar *zap.SugaredLogger
	Clock func() time.Time
}

type Params struct {
	fx.In

	Store kvstore.KVStore
	Sugar *zap.SugaredLogger
}

func NewService(p Params) Summarizer {
	return New(Options{Store: p.Store, Sugar: p.Sugar})
}

func New(opts Options) Summarizer {
	sugar := opts.Sugar
	if sugar == nil {
		sugar = zap.NewNop().Sugar()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Impl{store: opts.Store, sugar: sugar, clock: clock}
}

func (im *Impl) Summarize(ctx context.Context) Report {
	report := Report{Categories: map[string]int{}}

	events := im.load(ctx)
	report.TotalEvents = len(events)

	var durationSumMS int64
	var sessions int
	for _, evt := range events {
		switch p := evt.Data.Payload.(type) {
		case event.LinkClick:
			report.TotalClicks++
			if p.Category != "" {
				report.Categories[p.Category]++
			}
		case event.SessionEnd:
			durationSumMS += p.DurationMS
			sessions++
		}
	}

	if sessions > 0 {
		report.AvgSessionDurationSec = int(math.Round(float64(durationSumMS) / float64(sessions) / 1000))
	}
	return report
}

func (im *Impl) Export(ctx context.Context, dir string) (string, error) {
	raw, err := im.store.Get(ctx, kvstore.KeyEvents)
	if pkgerrors.Is(err, kvstore.ErrNotFound) {
		raw = []byte("[]")
	} else if err != nil {
		return "", pkgerrors.Wrap(err, "read event log")
	}

	name := fmt.Sprintf("analytics-export-%s.json", im.clock().Format("2006-01-02"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", pkgerrors.Wrap(err, "write export file")
	}

	im.sugar.Infow("event log exported", "path", path, "bytes", len(raw))
	return path, nil
}

func (im *Impl) load(ctx context.Context) []event.Event {
	raw, err := im.store.Get(ctx, kvstore.KeyEvents)
	if pkgerrors.Is(err, kvstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		im.sugar.Warnw("read event log failed", "err", err)
		return nil
	}

	events, err := event.DecodeLog(raw)
	if err != nil {
		im.sugar.Warnw("persisted event log corrupt", "err", err)
		return nil
	}
	return events
}
