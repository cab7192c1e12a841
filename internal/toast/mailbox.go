package toast

import (
	"sync"

	"github.com/jmylchreest/histoast/internal/model"
)

type transitionKind int

const (
	// transitionActivate follows a completed entry animation.
	transitionActivate transitionKind = iota
	// transitionRemove follows a completed exit animation.
	transitionRemove
)

type transition struct {
	kind transitionKind
	id   model.ID
}

// mailbox carries transitions from animation hooks to the transition
// goroutine. Posting never blocks.
type mailbox struct {
	mu     sync.Mutex
	items  []transition
	notify chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{notify: make(chan struct{}, 1)}
}

func (b *mailbox) post(t transition) {
	b.mu.Lock()
	b.items = append(b.items, t)
	b.mu.Unlock()

	select {
	case b.notify <- struct{}{}:
	default:
	}
}

func (b *mailbox) drain() []transition {
	b.mu.Lock()
	defer b.mu.Unlock()
	items := b.items
	b.items = nil
	return items
}
