package editor

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/mzterwalexzyy/bandana-editor/utils"
	"go.uber.org/zap"
)

// DefaultFrameInterval approximates one display refresh.
const DefaultFrameInterval = 16 * time.Millisecond

// Renderer draws the preview for a state.
type Renderer interface {
	Render(State)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(State)

func (f RendererFunc) Render(s State) { f(s) }

// Session owns one editor state. Dispatch, the key methods and the frame
// poll all go through one mutex, so events apply in delivery order.
type Session struct {
	mu       sync.Mutex
	state    State
	keys     Keys
	renderer Renderer
	interval time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// NewSession wraps s. A nil renderer is allowed.
func NewSession(s State, r Renderer) *Session {
	return &Session{
		state:    s,
		renderer: r,
		interval: DefaultFrameInterval,
		stop:     make(chan struct{}),
	}
}

// SetFrameInterval changes the poll cadence used by Run.
func (s *Session) SetFrameInterval(d time.Duration) {
	if d > 0 {
		s.mu.Lock()
		s.interval = d
		s.mu.Unlock()
	}
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch reduces ev into the session state and re-renders on change.
// The renderer runs outside the session lock and may call back into the
// session.
func (s *Session) Dispatch(ev Event) State {
	s.mu.Lock()
	next, render := s.apply(ev)
	s.mu.Unlock()

	if render {
		s.renderer.Render(next)
	}
	return next
}

// apply must be called with mu held.
func (s *Session) apply(ev Event) (State, bool) {
	prev := s.state
	s.state = Reduce(prev, ev)
	_, isLoad := ev.(Load)
	return s.state, s.renderer != nil && (isLoad || changed(prev, s.state))
}

// KeyDown marks a key as held.
func (s *Session) KeyDown(k Keys) {
	s.mu.Lock()
	s.keys |= k
	s.mu.Unlock()
}

// KeyUp releases a key; movement stops on the next frame.
func (s *Session) KeyUp(k Keys) {
	s.mu.Lock()
	s.keys &^= k
	s.mu.Unlock()
}

// Tick runs one animation frame against the keys currently held.
func (s *Session) Tick() State {
	s.mu.Lock()
	next, render := s.apply(Frame{Keys: s.keys})
	s.mu.Unlock()

	if render {
		s.renderer.Render(next)
	}
	return next
}

// Run polls the held keys once per frame until ctx is done or Close is
// called.
func (s *Session) Run(ctx context.Context) error {
	s.mu.Lock()
	interval := s.interval
	s.mu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	utils.Logger.Debug("keyboard poll started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			utils.Logger.Debug("keyboard poll stopped", zap.Error(ctx.Err()))
			return ctx.Err()
		case <-s.stop:
			utils.Logger.Debug("keyboard poll stopped")
			return nil
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Close stops Run. It is safe to call more than once.
func (s *Session) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Export rasterizes the current state.
func (s *Session) Export(overlay image.Image) (*image.RGBA, error) {
	return Export(s.State(), overlay)
}
