package store

import (
	"sync"
	"time"
)

var (
	idMu   sync.Mutex
	lastID int64
)

// NextID returns a new unique document id derived from unix milliseconds.
// IDs are strictly increasing within a process: two generations in the same
// millisecond bump instead of colliding.
func NextID() int64 {
	idMu.Lock()
	defer idMu.Unlock()

	id := time.Now().UnixMilli()
	if id <= lastID {
		id = lastID + 1
	}
	lastID = id
	return id
}
