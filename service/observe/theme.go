package observe

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/smallhouse123/biolink-analytics/service/event"
	"github.com/smallhouse123/biolink-analytics/service/kvstore"
	"github.com/smallhouse123/biolink-analytics/service/tracker"
)

const themeStoreTimeout = 2 * time.Second

// Theme is the light/dark/system state machine. The stored preference
// starts as system; the first explicit toggle leaves system for good.
type Theme struct {
	store kvstore.KVStore
	prefs PreferenceWatcher
	trk   tracker.Tracker
	apply func(Scheme)
	sugar *zap.SugaredLogger

	mu          sync.Mutex
	state       Scheme
	cancelWatch func()
}

type ThemeOptions struct {
	Store kvstore.KVStore
	Prefs PreferenceWatcher
	Trk   tracker.Tracker

	// Apply pushes the effective scheme onto the document.
	Apply func(Scheme)

	Sugar *zap.SugaredLogger
}

func NewTheme(opts ThemeOptions) *Theme {
	sugar := opts.Sugar
	if sugar == nil {
		sugar = zap.NewNop().Sugar()
	}
	apply := opts.Apply
	if apply == nil {
		apply = func(Scheme) {}
	}

	t := &Theme{
		store: opts.Store,
		prefs: opts.Prefs,
		trk:   opts.Trk,
		apply: apply,
		sugar: sugar,
		state: SchemeSystem,
	}

	ctx, cancel := context.WithTimeout(context.Background(), themeStoreTimeout)
	defer cancel()
	if raw, err := t.store.Get(ctx, kvstore.KeyTheme); err == nil {
		switch Scheme(raw) {
		case SchemeLight, SchemeDark, SchemeSystem:
			t.state = Scheme(raw)
		default:
			sugar.Warnw("ignoring unknown stored theme", "value", string(raw))
		}
	} else if !errors.Is(err, kvstore.ErrNotFound) {
		sugar.Warnw("read theme preference failed", "err", err)
	}

	t.apply(t.Effective())

	// While in system state, OS changes re-resolve the effective scheme
	// without touching the stored preference. After an explicit toggle the
	// notification is ignored.
	t.cancelWatch = t.prefs.OnColorSchemeChange(func(s Scheme) {
		t.mu.Lock()
		inSystem := t.state == SchemeSystem
		t.mu.Unlock()
		if inSystem {
			t.apply(s)
		}
	})
	return t
}

// State returns the stored preference, which may be system.
func (t *Theme) State() Scheme {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Effective resolves the scheme actually displayed.
func (t *Theme) Effective() Scheme {
	t.mu.Lock()
	state := t.state
	t.mu.Unlock()

	if state == SchemeSystem {
		return t.prefs.ColorScheme()
	}
	return state
}

// Toggle flips the explicit theme and persists it. The first toggle out of
// system always lands on dark, regardless of the OS preference.
func (t *Theme) Toggle() {
	t.mu.Lock()
	from := t.state
	var to Scheme
	switch from {
	case SchemeDark:
		to = SchemeLight
	default: // light or system
		to = SchemeDark
	}
	t.state = to
	t.mu.Unlock()

	t.apply(to)

	ctx, cancel := context.WithTimeout(context.Background(), themeStoreTimeout)
	defer cancel()
	if err := t.store.Set(ctx, kvstore.KeyTheme, []byte(to)); err != nil {
		t.sugar.Warnw("persist theme preference failed", "theme", to, "err", err)
	}

	if t.trk != nil {
		t.trk.Record(event.ThemeChange{From: string(from), To: string(to)})
	}
}

// Close detaches the OS preference listener.
func (t *Theme) Close() {
	if t.cancelWatch != nil {
		t.cancelWatch()
	}
}
