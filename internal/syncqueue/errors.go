package syncqueue

import (
	"errors"
	"fmt"
)

// ErrExecutorClosed is returned by Submit after Stop has been called.
var ErrExecutorClosed = errors.New("syncqueue: executor closed")

// QueueFullError reports a shard whose buffer stayed full past the enqueue
// timeout; callers treat it as back-pressure.
type QueueFullError struct {
	Shard    int
	Length   int
	Capacity int
}

func (e *QueueFullError) Error() string {
	return fmt.Sprintf("syncqueue: shard %d full (%d/%d)", e.Shard, e.Length, e.Capacity)
}
