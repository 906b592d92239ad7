package observe

import "sync"

// scrollFadeRangePx is the scroll distance over which the header fades out.
const scrollFadeRangePx = 100.0

// FrameScheduler coalesces work to the next animation frame. At most one
// callback may be pending at a time.
type FrameScheduler interface {
	Request(fn func())
}

// ImmediateFrames runs callbacks synchronously. The fallback for embeddings
// without a frame clock.
type ImmediateFrames struct{}

func (ImmediateFrames) Request(fn func()) { fn() }

// ScrollFade derives the header opacity from the scroll offset, recomputing
// at most once per frame no matter how often OnScroll fires.
type ScrollFade struct {
	header Element
	frames FrameScheduler

	mu      sync.Mutex
	offset  float64
	pending bool
}

func NewScrollFade(header Element, frames FrameScheduler) *ScrollFade {
	if frames == nil {
		frames = ImmediateFrames{}
	}
	return &ScrollFade{header: header, frames: frames}
}

func (s *ScrollFade) OnScroll(offsetPx float64) {
	s.mu.Lock()
	s.offset = offsetPx
	if s.pending {
		s.mu.Unlock()
		return
	}
	s.pending = true
	s.mu.Unlock()

	s.frames.Request(func() {
		s.mu.Lock()
		offset := s.offset
		s.pending = false
		s.mu.Unlock()

		s.header.SetOpacity(HeaderOpacity(offset))
	})
}

// HeaderOpacity maps a scroll offset to opacity, clamped to [0, 1].
func HeaderOpacity(offsetPx float64) float64 {
	opacity := 1 - offsetPx/scrollFadeRangePx
	if opacity < 0 {
		return 0
	}
	if opacity > 1 {
		return 1
	}
	return opacity
}
