package session

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ContextSessionID is the gin context key for the session id.
	ContextSessionID = "session_id"
	// ContextSession is the gin context key for the *State.
	ContextSession = "session"
)

// FromGin returns the session the middleware attached to c. Both values are
// zero when none is attached.
func FromGin(c *gin.Context) (uuid.UUID, *State) {
	var (
		id uuid.UUID
		st *State
	)
	if v, ok := c.Get(ContextSessionID); ok {
		id, _ = v.(uuid.UUID)
	}
	if v, ok := c.Get(ContextSession); ok {
		st, _ = v.(*State)
	}
	return id, st
}
