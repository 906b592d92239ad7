package metrics

import "net/http"

// NewNop returns a Metrics that records nothing. Used by embedders that do
// not scrape and by tests.
func NewNop() Metrics {
	return nopMetrics{}
}

type nopMetrics struct{}

func (nopMetrics) BumpTime(string, ...string) (Endable, error) { return nopTimer{}, nil }
func (nopMetrics) BumpCount(string, float64, ...string) error  { return nil }
func (nopMetrics) Handler() http.Handler                       { return http.NotFoundHandler() }

type nopTimer struct{}

func (nopTimer) End() {}
