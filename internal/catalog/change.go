package catalog

import "fmt"

// ChangeOp names a catalog mutation.
type ChangeOp string

const (
	OpSuspend ChangeOp = "suspend"
	OpRemove  ChangeOp = "remove"
)

// Change describes one mutation so another instance can replay it.
type Change struct {
	Op ChangeOp `json:"op"`
	ID string   `json:"id"`
}

// Apply replays ch on the store. It fails with ErrNotFound when the enterprise
// is already gone.
func (s *Store) Apply(ch Change) error {
	switch ch.Op {
	case OpSuspend:
		_, err := s.Suspend(ch.ID)
		return err
	case OpRemove:
		return s.Remove(ch.ID)
	default:
		return fmt.Errorf("unknown catalog change %q", ch.Op)
	}
}
