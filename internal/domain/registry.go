package domain

// TaskRegistry is the process-wide source of truth for task state.
// Implementations must make each entry's read-modify-write atomic: no poller
// may ever observe a partially applied update.
type TaskRegistry interface {
	// Create registers a new task in the queued state and returns it
	Create() *Task

	// Get returns a snapshot of the task, or ErrTaskNotFound
	Get(id string) (*Task, error)

	// Update applies a partial update to the task, or ErrTaskNotFound
	Update(id string, update TaskUpdate) error
}
