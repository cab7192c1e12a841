package toast

import "github.com/jmylchreest/histoast/internal/model"

// Handle refers to a toast returned by Show. It stays valid after the toast
// is removed.
type Handle struct {
	id model.ID
	m  *Manager
}

// ID returns the toast id.
func (h Handle) ID() model.ID {
	return h.id
}

// State returns the current lifecycle state.
func (h Handle) State() model.State {
	if h.m == nil {
		return model.StateRemoved
	}
	return h.m.State(h.id)
}

// Hide dismisses the toast. See Manager.Hide.
func (h Handle) Hide() {
	if h.m != nil {
		h.m.Hide(h)
	}
}
