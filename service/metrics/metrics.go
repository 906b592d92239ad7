package metrics

import "net/http"

type Metrics interface {
	// BumpTime wrap prometheus histogram for measuring func time
	BumpTime(key string, tags ...string) (Endable, error)

	// BumpCount wrap prometheus counter for key counting, like event count
	BumpCount(key string, val float64, tags ...string) error

	// Handler exposes the collected metrics for scraping
	Handler() http.Handler
}

type Endable interface {
	// End close the timer
	End()
}
