package toast

import (
	"sort"
	"time"

	"github.com/jmylchreest/histoast/internal/layout"
	"github.com/jmylchreest/histoast/internal/model"
)

// Entry describes one toast in a Snapshot.
type Entry struct {
	ID       model.ID
	Kind     model.Kind
	State    model.State
	Text     string
	SlotY    int // Assigned offset within the work area
	X, Y     int // Current surface position
	Width    int
	Height   int
	QueuedAt time.Time // Zero unless the toast waited in the queue
}

// Snapshot is a consistent copy of the manager state.
type Snapshot struct {
	WorkArea layout.Rect
	Spacing  int
	Active   []Entry // Stacking order, oldest first
	Removing []Entry // Ordered by id
	Queued   []Entry // Queue order
}

// Stats summarizes the manager state.
type Stats struct {
	Active       int
	Removing     int
	Queued       int
	OldestQueued time.Time // Zero when the queue is empty
	Theme        string
	StartedAt    time.Time
}

// Snapshot returns a copy of the active, removing and queued sets.
func (m *Manager) Snapshot() Snapshot {
	area := m.backend.WorkArea()

	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		WorkArea: area,
		Spacing:  m.spacing,
		Active:   make([]Entry, 0, len(m.reg.active)),
		Removing: make([]Entry, 0, len(m.reg.removing)),
		Queued:   make([]Entry, 0, m.reg.queue.Len()),
	}
	for _, n := range m.reg.active {
		snap.Active = append(snap.Active, n.entrySnapshot())
	}
	for _, n := range m.reg.removing {
		snap.Removing = append(snap.Removing, n.entrySnapshot())
	}
	sort.Slice(snap.Removing, func(i, j int) bool {
		return snap.Removing[i].ID < snap.Removing[j].ID
	})
	for _, n := range m.reg.queued() {
		snap.Queued = append(snap.Queued, n.entrySnapshot())
	}
	return snap
}

// Stats returns counts of the active, removing and queued sets.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := Stats{
		Active:    len(m.reg.active),
		Removing:  len(m.reg.removing),
		Queued:    m.reg.queue.Len(),
		Theme:     m.theme.Name,
		StartedAt: m.startedAt,
	}
	for _, n := range m.reg.queued() {
		if stats.OldestQueued.IsZero() || n.queuedAt.Before(stats.OldestQueued) {
			stats.OldestQueued = n.queuedAt
		}
	}
	return stats
}

func (n *notification) entrySnapshot() Entry {
	e := Entry{
		ID:       n.id,
		Kind:     n.cfg.Kind,
		State:    n.state,
		Text:     n.cfg.Content.Text,
		SlotY:    n.y,
		Width:    n.width,
		Height:   n.height,
		QueuedAt: n.queuedAt,
	}
	if n.surface != nil {
		e.X, e.Y = n.surface.Position()
	}
	return e
}
