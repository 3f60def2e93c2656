package pagination

import (
	"github.com/Sternrassler/photo-gallery-client/pkg/client"
)

// State is a consistent snapshot of the List State. Items is a copy and may
// be kept by the caller.
type State struct {
	SessionID   string         `json:"session_id"`
	Items       []client.Photo `json:"items"`
	CurrentPage int            `json:"current_page"`
	IsLoading   bool           `json:"is_loading"`
	HasMore     bool           `json:"has_more"`

	// Err is the error of the last list fetch, nil after a success.
	Err error `json:"-"`
}

// Phase names the controller state machine position.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseLoading   Phase = "loading"
	PhaseError     Phase = "error"
	PhaseExhausted Phase = "exhausted"
)

// Phase derives the state machine position from the snapshot.
func (s State) Phase() Phase {
	switch {
	case s.IsLoading:
		return PhaseLoading
	case s.Err != nil:
		return PhaseError
	case !s.HasMore:
		return PhaseExhausted
	default:
		return PhaseIdle
	}
}

// IDs returns the photo ids in arrival order.
func (s State) IDs() []int {
	ids := make([]int, len(s.Items))
	for i, p := range s.Items {
		ids[i] = p.ID
	}
	return ids
}
