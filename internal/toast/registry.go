package toast

import (
	"container/list"
	"slices"
	"time"

	"github.com/jmylchreest/histoast/internal/layout"
	"github.com/jmylchreest/histoast/internal/model"
)

// registry holds the active, removing and queued sets. Every method is a
// complete transition that keeps a toast in exactly one set. The manager
// lock guards it.
type registry struct {
	active     []*notification // Stacking order, oldest first
	removing   map[model.ID]*notification
	queue      *list.List // *notification, FIFO
	queueIndex map[model.ID]*list.Element
	index      map[model.ID]*notification // Every toast not yet removed
}

func newRegistry() *registry {
	r := &registry{queue: list.New()}
	r.reset()
	return r
}

// reset forgets every toast and returns the ones that were known.
func (r *registry) reset() []*notification {
	all := make([]*notification, 0, len(r.index))
	for _, n := range r.index {
		all = append(all, n)
	}
	r.active = nil
	r.removing = make(map[model.ID]*notification)
	r.queue.Init()
	r.queueIndex = make(map[model.ID]*list.Element)
	r.index = make(map[model.ID]*notification)
	return all
}

func (r *registry) get(id model.ID) *notification {
	return r.index[id]
}

// admit appends n to the top of the stack at slot y.
func (r *registry) admit(n *notification, y int) {
	n.y = y
	n.state = model.StateEntering
	r.active = append(r.active, n)
	r.index[n.id] = n
}

// enqueue inserts n before mark, or at the back when mark is nil.
func (r *registry) enqueue(n *notification, mark *list.Element) {
	n.state = model.StateQueued
	if n.queuedAt.IsZero() {
		n.queuedAt = time.Now()
	}
	if mark != nil {
		r.queueIndex[n.id] = r.queue.InsertBefore(n, mark)
	} else {
		r.queueIndex[n.id] = r.queue.PushBack(n)
	}
	r.index[n.id] = n
}

// unqueue takes n out of the queue without changing its state.
func (r *registry) unqueue(n *notification) {
	if e, ok := r.queueIndex[n.id]; ok {
		r.queue.Remove(e)
		delete(r.queueIndex, n.id)
	}
}

// drop removes a queued toast for good.
func (r *registry) drop(n *notification) {
	r.unqueue(n)
	n.state = model.StateRemoved
	delete(r.index, n.id)
}

// promoteToExiting moves n from the stack to the removing set.
func (r *registry) promoteToExiting(n *notification) {
	n.state = model.StateExiting
	r.active = slices.DeleteFunc(r.active, func(a *notification) bool { return a == n })
	r.removing[n.id] = n
}

// finalizeRemoval forgets an exiting toast. It returns nil if id is not
// exiting.
func (r *registry) finalizeRemoval(id model.ID) *notification {
	n, ok := r.removing[id]
	if !ok {
		return nil
	}
	delete(r.removing, id)
	delete(r.index, id)
	n.state = model.StateRemoved
	return n
}

// consolidate reassigns packed slots to the stack and returns the toasts
// that moved, with their new slots.
func (r *registry) consolidate(area layout.Rect, spacing int) []layout.Move {
	placements := make([]layout.Placement, len(r.active))
	for i, n := range r.active {
		placements[i] = layout.Placement{ID: string(n.id), Y: n.y, Height: n.height}
	}

	moves := layout.Moves(area, placements, spacing)
	for _, mv := range moves {
		if n := r.index[model.ID(mv.ID)]; n != nil {
			n.y = mv.ToY
		}
	}
	return moves
}

func (r *registry) activeHeights() []int {
	heights := make([]int, len(r.active))
	for i, n := range r.active {
		heights[i] = n.height
	}
	return heights
}

// queued returns the queued toasts in order.
func (r *registry) queued() []*notification {
	out := make([]*notification, 0, r.queue.Len())
	for e := r.queue.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(*notification))
	}
	return out
}
