package event

import "time"

// Name identifies the kind of an event. The set below is the vocabulary the
// page produces today; unknown names still round-trip through the codec so
// the log stays open to new kinds.
type Name string

const (
	NamePageView    Name = "page_view"
	NameLinkClick   Name = "link_click"
	NameThemeChange Name = "theme_change"
	NamePerformance Name = "performance"
	NameSessionEnd  Name = "session_end"
	NamePageHidden  Name = "page_hidden"
	NamePageVisible Name = "page_visible"
	NameError       Name = "error"
)

// Payload is one typed variant of event data, keyed by its Name.
type Payload interface {
	EventName() Name
}

// Device is a snapshot of the environment taken when the page loads.
type Device struct {
	UserAgent      string  `json:"userAgent"`
	Language       string  `json:"language"`
	Platform       string  `json:"platform"`
	ViewportWidth  int     `json:"viewportWidth"`
	ViewportHeight int     `json:"viewportHeight"`
	PixelRatio     float64 `json:"pixelRatio"`
	EffectiveType  string  `json:"effectiveType,omitempty"`
}

// PageView is recorded once at session start.
type PageView struct {
	Referrer string `json:"referrer"`
	Device
}

func (PageView) EventName() Name { return NamePageView }

// LinkClick is recorded when a link card is activated.
type LinkClick struct {
	Category string `json:"category"`
	Title    string `json:"title,omitempty"`
	Href     string `json:"href,omitempty"`
}

func (LinkClick) EventName() Name { return NameLinkClick }

// ThemeChange is recorded on every explicit theme toggle.
type ThemeChange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (ThemeChange) EventName() Name { return NameThemeChange }

// Performance carries one timing measurement in milliseconds.
type Performance struct {
	Metric  string  `json:"metric"`
	ValueMS float64 `json:"value"`
}

func (Performance) EventName() Name { return NamePerformance }

// SessionEnd is the terminal event of a session.
type SessionEnd struct {
	DurationMS  int64 `json:"duration"`
	EventsCount int   `json:"eventsCount"`
}

func (SessionEnd) EventName() Name { return NameSessionEnd }

// PageHidden is recorded when the page loses visibility.
type PageHidden struct {
	VisibleForMS int64 `json:"visibleFor"`
}

func (PageHidden) EventName() Name { return NamePageHidden }

// PageVisible is recorded when the page regains visibility.
type PageVisible struct {
	HiddenForMS int64 `json:"hiddenFor"`
}

func (PageVisible) EventName() Name { return NamePageVisible }

// ErrorEvent captures an uncaught error as best-effort telemetry.
type ErrorEvent struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

func (ErrorEvent) EventName() Name { return NameError }

// Custom holds an event of a name the typed vocabulary does not know.
type Custom struct {
	Kind   Name
	Fields map[string]any
}

func (c Custom) EventName() Name { return c.Kind }

// Data wraps a payload with the fields injected at capture time.
type Data struct {
	Timestamp int64 // epoch milliseconds
	URL       string
	Payload   Payload
}

// Event is one observed occurrence. Immutable once appended to a log.
type Event struct {
	ID        string
	SessionID string
	Name      Name
	Data      Data
}

// Session is one page-load-to-unload span.
type Session struct {
	ID        string
	StartTime time.Time
}
