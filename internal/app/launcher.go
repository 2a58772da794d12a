package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

// videoOnlyAudioFallback is appended to a video-only stream's selector so
// the engine pairs it with an audio track instead of producing silent video
const videoOnlyAudioFallback = "+bestaudio[acodec^=opus]/bestaudio[acodec^=aac]/bestaudio"

// Launcher creates download tasks and hands them to workers. Launch returns
// as soon as the task is registered; a semaphore bounds how many workers
// fetch at once, and tasks wait in the queued state for a slot.
type Launcher struct {
	registry domain.TaskRegistry
	worker   *Worker
	logger   *zap.Logger
	sem      chan struct{}
}

// NewLauncher creates a new job launcher with the given concurrency limit
func NewLauncher(registry domain.TaskRegistry, worker *Worker, concurrentLimit int, logger *zap.Logger) *Launcher {
	if concurrentLimit < 1 {
		concurrentLimit = 1
	}
	return &Launcher{
		registry: registry,
		worker:   worker,
		logger:   logger,
		sem:      make(chan struct{}, concurrentLimit),
	}
}

// Launch validates the request, adjusts the format selector for the chosen
// stream type, creates a task and starts a worker bound to it. It returns
// the task id immediately without waiting for completion.
func (l *Launcher) Launch(url, formatID string, audioOnly bool, formatType domain.FormatType) (string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", fmt.Errorf("%w: no URL provided", domain.ErrInvalidRequest)
	}
	if formatID == "" {
		return "", fmt.Errorf("%w: no format selected", domain.ErrInvalidRequest)
	}

	selector := ResolveSelector(formatID, audioOnly, formatType)

	task := l.registry.Create()
	l.logger.Info("download launched",
		zap.String("task_id", task.ID),
		zap.String("url", url),
		zap.String("selector", selector),
		zap.Bool("audio_only", audioOnly))

	go func() {
		l.sem <- struct{}{}
		defer func() { <-l.sem }()
		l.worker.Run(context.Background(), task.ID, url, selector, audioOnly)
	}()

	return task.ID, nil
}

// ResolveSelector maps the chosen stream's handle to the selector expression
// passed to the engine. Video-only streams get a best-audio fallback
// appended; combined streams and MP3 conversions pass through unchanged.
func ResolveSelector(formatID string, audioOnly bool, formatType domain.FormatType) string {
	if formatType == domain.TypeVideoOnly && !audioOnly {
		return formatID + videoOnlyAudioFallback
	}
	return formatID
}
