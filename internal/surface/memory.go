package surface

import (
	"sync"

	"github.com/jmylchreest/histoast/internal/layout"
	"github.com/jmylchreest/histoast/internal/model"
	"github.com/jmylchreest/histoast/internal/theme"
)

// MemoryBackend keeps surfaces in memory. It backs headless daemons and tests.
type MemoryBackend struct {
	mu       sync.Mutex
	area     layout.Rect
	metrics  Metrics
	surfaces []*MemorySurface
	closed   bool
}

// NewMemoryBackend creates a backend with the given work area.
func NewMemoryBackend(area layout.Rect, metrics Metrics) *MemoryBackend {
	return &MemoryBackend{area: area, metrics: metrics}
}

// Measure implements Backend.
func (b *MemoryBackend) Measure(content model.Content) (int, int) {
	return b.metrics.Size(content)
}

// Create implements Backend.
func (b *MemoryBackend) Create(colors theme.ColorPair, content model.Content) (Surface, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, &BackendError{Backend: "memory", Message: "create surface", Cause: ErrClosed}
	}

	w, h := b.metrics.Size(content)
	s := &MemorySurface{
		colors:  colors,
		content: content,
		minW:    w,
		minH:    h,
	}
	b.surfaces = append(b.surfaces, s)
	return s, nil
}

// WorkArea implements Backend.
func (b *MemoryBackend) WorkArea() layout.Rect {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.area
}

// SetWorkArea changes the work area reported to new admissions.
func (b *MemoryBackend) SetWorkArea(area layout.Rect) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.area = area
}

// Close implements Backend. Live surfaces are disposed.
func (b *MemoryBackend) Close() error {
	b.mu.Lock()
	surfaces := b.surfaces
	b.surfaces = nil
	b.closed = true
	b.mu.Unlock()

	for _, s := range surfaces {
		s.Dispose()
	}
	return nil
}

// Surfaces returns every surface created and not yet disposed.
func (b *MemoryBackend) Surfaces() []*MemorySurface {
	b.mu.Lock()
	defer b.mu.Unlock()

	live := make([]*MemorySurface, 0, len(b.surfaces))
	for _, s := range b.surfaces {
		if !s.Disposed() {
			live = append(live, s)
		}
	}
	return live
}

// Created returns the number of surfaces ever created.
func (b *MemoryBackend) Created() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.surfaces)
}

// MemorySurface is a Surface that only records its geometry.
type MemorySurface struct {
	mu       sync.Mutex
	colors   theme.ColorPair
	content  model.Content
	minW     int
	minH     int
	x, y     int
	w, h     int
	visible  bool
	disposed bool
	onClick  func()
}

// MinSize implements Surface.
func (s *MemorySurface) MinSize() (int, int) {
	return s.minW, s.minH
}

// Position implements Surface.
func (s *MemorySurface) Position() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.x, s.y
}

// SetPosition implements Surface.
func (s *MemorySurface) SetPosition(x, y int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.x, s.y = x, y
}

// Size implements Surface.
func (s *MemorySurface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w, s.h
}

// SetSize implements Surface.
func (s *MemorySurface) SetSize(w, h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w, s.h = w, h
}

// Visible implements Surface.
func (s *MemorySurface) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// SetVisible implements Surface.
func (s *MemorySurface) SetVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.visible = visible
}

// OnClick implements Surface.
func (s *MemorySurface) OnClick(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClick = fn
}

// Click simulates a user click. Disposed surfaces ignore clicks.
func (s *MemorySurface) Click() {
	s.mu.Lock()
	fn := s.onClick
	if s.disposed {
		fn = nil
	}
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Dispose implements Surface.
func (s *MemorySurface) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disposed = true
	s.visible = false
	s.onClick = nil
}

// Disposed reports whether Dispose was called.
func (s *MemorySurface) Disposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

// Colors returns the colors the surface was created with.
func (s *MemorySurface) Colors() theme.ColorPair {
	return s.colors
}

// Content returns the content the surface was created with.
func (s *MemorySurface) Content() model.Content {
	return s.content
}
