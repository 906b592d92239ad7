package tracker

import (
	"context"

	"github.com/smallhouse123/biolink-analytics/service/event"
)

// Tracker owns the current session's event sequence and mirrors it to the
// persisted store after every append. The sequence grows in append order up
// to the configured cap; past it the oldest events are dropped, so very long
// sessions keep a bounded tail rather than the full history.
type Tracker interface {
	// Record captures one event. It never fails from the caller's point of
	// view: a persistence problem leaves the in-memory sequence intact and
	// the persisted copy stale.
	Record(p event.Payload)

	// Session returns the identity of the current session.
	Session() event.Session

	// Events returns a snapshot of the in-memory sequence in append order.
	Events() []event.Event

	// LoadPersisted reads the full persisted log. An absent or corrupt
	// value yields an empty sequence.
	LoadPersisted(ctx context.Context) []event.Event

	// End records the terminal session_end event. Safe to call more than
	// once; only the first call records.
	End()
}

// PageInfo is the embedder-supplied snapshot of the page the session runs on.
type PageInfo struct {
	URL      string
	Referrer string
	Device   event.Device
}
