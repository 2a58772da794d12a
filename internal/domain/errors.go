package domain

import "errors"

var (
	// ErrTaskNotFound is returned when a task id is unknown to the registry
	ErrTaskNotFound = errors.New("unknown task")

	// ErrInvalidRequest is returned when a required request field is missing or empty
	ErrInvalidRequest = errors.New("invalid request")

	// ErrExtractionFailed is returned when the engine cannot list or fetch streams
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrFileNotReady is returned when a file is requested before the task finished
	ErrFileNotReady = errors.New("file not ready")
)
