package infrastructure

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

// MemoryTaskRegistry is an in-memory TaskRegistry backed by a TTL cache so
// finished tasks eventually expire and memory stays bounded. A single mutex
// guards every read-modify-write, so pollers never observe a partially
// applied update.
type MemoryTaskRegistry struct {
	mu    sync.Mutex
	tasks *gocache.Cache
}

// NewMemoryTaskRegistry creates a registry whose entries expire after ttl
func NewMemoryTaskRegistry(ttl, cleanupInterval time.Duration) *MemoryTaskRegistry {
	return &MemoryTaskRegistry{
		tasks: gocache.New(ttl, cleanupInterval),
	}
}

// Create registers a new task in the queued state and returns a snapshot of it
func (r *MemoryTaskRegistry) Create() *domain.Task {
	task := domain.NewTask()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks.Set(task.ID, task, gocache.DefaultExpiration)

	snapshot := *task
	return &snapshot
}

// Get returns a snapshot of the task, or ErrTaskNotFound
func (r *MemoryTaskRegistry) Get(id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, found := r.tasks.Get(id)
	if !found {
		return nil, domain.ErrTaskNotFound
	}

	snapshot := *(item.(*domain.Task))
	return &snapshot, nil
}

// Update applies a partial update to the task, or ErrTaskNotFound.
// Updating refreshes the entry's TTL so active tasks never expire mid-flight.
func (r *MemoryTaskRegistry) Update(id string, update domain.TaskUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, found := r.tasks.Get(id)
	if !found {
		return domain.ErrTaskNotFound
	}

	task := item.(*domain.Task)
	update.Apply(task)
	r.tasks.Set(id, task, gocache.DefaultExpiration)
	return nil
}

// Count returns the number of live tasks
func (r *MemoryTaskRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tasks.ItemCount()
}
