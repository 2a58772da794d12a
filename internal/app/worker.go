package app

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

// Format selector expressions understood by the extraction engine.
// defaultFormatSelector favors modern codecs at the highest available
// resolution with audio present, degrading to "best available".
const (
	defaultFormatSelector = "bestvideo[vcodec^=av01][height>=1080]+bestaudio[acodec^=opus]/" +
		"bestvideo[vcodec^=av01][height>=1080]+bestaudio[acodec^=aac]/" +
		"bestvideo[vcodec^=vp9.2][height>=1080]+bestaudio[acodec^=opus]/" +
		"bestvideo[vcodec^=vp9.2][height>=1080]+bestaudio[acodec^=aac]/" +
		"bestvideo[vcodec^=vp9][height>=1080]+bestaudio[acodec^=opus]/" +
		"bestvideo[vcodec^=vp9][height>=1080]+bestaudio[acodec^=aac]/" +
		"bestvideo[height>=1080]+bestaudio/best"

	bestAudioSelector = "bestaudio[acodec^=opus]/bestaudio[acodec^=aac]/bestaudio[abr>=256]/bestaudio"

	// outputTemplate names output files after the title and the
	// engine-assigned id, which file resolution falls back on
	outputTemplate = "%(title).200s-%(id)s.%(ext)s"

	mergeContainer = "mkv"

	// progressBuffer bounds the event channel between the engine callback
	// and the registry updater; progress is best-effort telemetry, so
	// events may be dropped under pressure
	progressBuffer = 64
)

// Worker executes one fetch-and-produce-file job to completion or failure,
// keeping the task registry current along the way
type Worker struct {
	registry    domain.TaskRegistry
	engine      domain.Extractor
	downloadDir string
	logger      *zap.Logger
}

// NewWorker creates a new download worker executor
func NewWorker(registry domain.TaskRegistry, engine domain.Extractor, downloadDir string, logger *zap.Logger) *Worker {
	return &Worker{
		registry:    registry,
		engine:      engine,
		downloadDir: downloadDir,
		logger:      logger,
	}
}

// Run executes the job bound to taskID. It blocks until the engine returns
// and always leaves the task in a terminal state. Failures are not retried.
func (w *Worker) Run(ctx context.Context, taskID, url, selector string, audioOnly bool) {
	w.registry.Update(taskID, domain.StatusUpdate(domain.StatusDownloading))

	req := domain.FetchRequest{
		URL:            url,
		OutputTemplate: filepath.Join(w.downloadDir, outputTemplate),
	}
	if audioOnly {
		req.FormatSelector = bestAudioSelector
		req.ExtractAudio = true
	} else {
		req.FormatSelector = selector
		if req.FormatSelector == "" {
			req.FormatSelector = defaultFormatSelector
		}
		req.MergeContainer = mergeContainer
	}

	// Progress events flow through a bounded channel so the engine's
	// callback never contends on registry locking
	events := make(chan domain.ProgressEvent, progressBuffer)
	pumpDone := make(chan float64, 1)
	go func() {
		pumpDone <- w.pumpProgress(taskID, events)
	}()

	result, err := w.engine.Fetch(ctx, req, func(event domain.ProgressEvent) {
		select {
		case events <- event:
		default:
		}
	})
	close(events)
	lastProgress := <-pumpDone

	if err != nil {
		w.logger.Error("download failed",
			zap.String("task_id", taskID),
			zap.String("url", url),
			zap.Float64("progress", lastProgress),
			zap.Error(err))
		w.registry.Update(taskID, domain.TaskUpdate{
			Status:           statusPtr(domain.StatusError),
			Message:          domain.StringPtr("Error: " + err.Error()),
			Progress:         domain.Float64Ptr(0.0),
			FailedAtProgress: domain.Float64Ptr(lastProgress),
		})
		return
	}

	path := w.resolveFile(result)
	if path == "" {
		w.logger.Error("downloaded file not found",
			zap.String("task_id", taskID),
			zap.String("engine_id", result.ID))
		w.registry.Update(taskID, domain.TaskUpdate{
			Status:  statusPtr(domain.StatusError),
			Message: domain.StringPtr("Downloaded but file not found."),
		})
		return
	}

	w.logger.Info("download complete",
		zap.String("task_id", taskID),
		zap.String("file", path))
	w.registry.Update(taskID, domain.TaskUpdate{
		Status:   statusPtr(domain.StatusFinished),
		Progress: domain.Float64Ptr(100.0),
		Filename: domain.StringPtr(filepath.Base(path)),
		Filepath: domain.StringPtr(path),
		Message:  domain.StringPtr("Download complete"),
	})
}

// pumpProgress drains engine progress events into the registry and returns
// the last percentage it recorded. Progress never moves backwards while the
// task is downloading, even when the engine's size estimate shrinks.
func (w *Worker) pumpProgress(taskID string, events <-chan domain.ProgressEvent) float64 {
	last := 0.0

	for event := range events {
		percent := last
		switch event.Phase {
		case domain.PhaseFinished:
			percent = 100.0
		case domain.PhaseDownloading:
			total := event.TotalBytes
			if total <= 0 {
				total = event.TotalBytesEstimate
			}
			if total > 0 {
				percent = float64(event.DownloadedBytes) * 100.0 / float64(total)
			}
			percent = math.Round(percent*100) / 100
			if percent > 100 {
				percent = 100
			}
			if percent < last {
				percent = last
			}
		default:
			continue
		}

		last = percent
		w.registry.Update(taskID, domain.TaskUpdate{
			Progress: domain.Float64Ptr(percent),
			Speed:    event.Speed,
			ETA:      event.ETA,
		})
	}

	return last
}

// resolveFile locates the produced file: the exact path reported by the
// engine when it exists, otherwise the first directory entry whose name
// embeds the engine-assigned id
func (w *Worker) resolveFile(result *domain.FetchResult) string {
	if result.Filepath != "" {
		if _, err := os.Stat(result.Filepath); err == nil {
			return result.Filepath
		}
	}

	if result.ID == "" {
		return ""
	}

	entries, err := os.ReadDir(w.downloadDir)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.Contains(entry.Name(), result.ID) {
			return filepath.Join(w.downloadDir, entry.Name())
		}
	}
	return ""
}
