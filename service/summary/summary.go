package summary

import "context"

// Report is the aggregate view derived from the persisted log.
type Report struct {
	TotalEvents           int            `json:"totalEvents"`
	TotalClicks           int            `json:"totalClicks"`
	Categories            map[string]int `json:"categories"`
	AvgSessionDurationSec int            `json:"avgSessionDurationSec"`
}

// Summarizer reads the persisted log back on demand. It never watches the
// log continuously.
type Summarizer interface {
	// Summarize aggregates the persisted log. An absent or corrupt log
	// yields a zero report.
	Summarize(ctx context.Context) Report

	// Export writes the raw persisted log to a dated JSON file under dir
	// and returns the file path.
	Export(ctx context.Context, dir string) (string, error)
}
