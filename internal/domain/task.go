package domain

import (
	"github.com/google/uuid"
)

// TaskStatus represents the current status of a task
type TaskStatus string

const (
	StatusQueued          TaskStatus = "queued"
	StatusFetchingFormats TaskStatus = "fetching_formats"
	StatusReady           TaskStatus = "ready"
	StatusDownloading     TaskStatus = "downloading"
	StatusFinished        TaskStatus = "finished"
	StatusError           TaskStatus = "error"
)

// Task represents one asynchronous job: either a catalog fetch or a download.
// Progress is a percentage in [0, 100]. Filename and Filepath are populated
// only when the task is finished.
type Task struct {
	ID               string     `json:"id"`
	Status           TaskStatus `json:"status"`
	Progress         float64    `json:"progress"`
	Filename         string     `json:"filename,omitempty"`
	Filepath         string     `json:"filepath,omitempty"`
	Speed            *float64   `json:"speed"`
	ETA              *float64   `json:"eta"`
	Message          string     `json:"message,omitempty"`
	FailedAtProgress *float64   `json:"failed_at_progress,omitempty"`
}

// NewTask creates a new task in the queued state
func NewTask() *Task {
	return &Task{
		ID:     uuid.New().String(),
		Status: StatusQueued,
	}
}

// TaskUpdate is a partial update applied to a task. Nil fields are left
// untouched by the registry.
type TaskUpdate struct {
	Status           *TaskStatus
	Progress         *float64
	Filename         *string
	Filepath         *string
	Speed            *float64
	ETA              *float64
	Message          *string
	FailedAtProgress *float64
}

// Apply merges the update into the task
func (u *TaskUpdate) Apply(t *Task) {
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.Progress != nil {
		t.Progress = *u.Progress
	}
	if u.Filename != nil {
		t.Filename = *u.Filename
	}
	if u.Filepath != nil {
		t.Filepath = *u.Filepath
	}
	if u.Speed != nil {
		t.Speed = u.Speed
	}
	if u.ETA != nil {
		t.ETA = u.ETA
	}
	if u.Message != nil {
		t.Message = *u.Message
	}
	if u.FailedAtProgress != nil {
		t.FailedAtProgress = u.FailedAtProgress
	}
}

// StatusUpdate builds an update that only changes the status
func StatusUpdate(status TaskStatus) TaskUpdate {
	return TaskUpdate{Status: &status}
}

// IsTerminal checks if the task is in a terminal state
func (t *Task) IsTerminal() bool {
	return t.Status == StatusFinished || t.Status == StatusError ||
		t.Status == StatusReady
}

// FileReady returns ErrFileNotReady unless the task has finished and
// recorded an output path
func (t *Task) FileReady() error {
	if t.Status != StatusFinished || t.Filepath == "" {
		return ErrFileNotReady
	}
	return nil
}

// Float64Ptr returns a pointer to v, for building partial updates
func Float64Ptr(v float64) *float64 { return &v }

// StringPtr returns a pointer to s, for building partial updates
func StringPtr(s string) *string { return &s }
