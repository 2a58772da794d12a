package app

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/domain"
	"github.com/yourusername/mediagrab-go/internal/infrastructure"
)

func newLauncher(t *testing.T, engine domain.Extractor, limit int) (*Launcher, *infrastructure.MemoryTaskRegistry, string) {
	t.Helper()
	registry := infrastructure.NewMemoryTaskRegistry(time.Hour, time.Hour)
	dir := t.TempDir()
	worker := NewWorker(registry, engine, dir, zap.NewNop())
	return NewLauncher(registry, worker, limit, zap.NewNop()), registry, dir
}

func TestLauncher_Launch_Validation(t *testing.T) {
	launcher, _, _ := newLauncher(t, nil, 1)

	_, err := launcher.Launch("", "22", false, domain.TypeVideoAudio)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = launcher.Launch("   ", "22", false, domain.TypeVideoAudio)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = launcher.Launch("https://example.com/v/x", "", false, domain.TypeVideoAudio)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestLauncher_Launch_ReturnsImmediately(t *testing.T) {
	release := make(chan struct{})
	engine := &fakeExtractor{
		fetchFn: func(ctx context.Context, req domain.FetchRequest, fn domain.ProgressFunc) (*domain.FetchResult, error) {
			<-release
			return &domain.FetchResult{ID: "abc123"}, nil
		},
	}
	launcher, registry, dir := newLauncher(t, engine, 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "v-abc123.mkv"), []byte("data"), 0644))

	taskID, err := launcher.Launch("https://example.com/v/abc123", "22", false, domain.TypeVideoAudio)
	require.NoError(t, err)
	require.NotEmpty(t, taskID)

	// The task exists right away, before the worker completes
	task, err := registry.Get(taskID)
	require.NoError(t, err)
	assert.NotEqual(t, domain.StatusFinished, task.Status)

	close(release)
	require.Eventually(t, func() bool {
		task, err := registry.Get(taskID)
		return err == nil && task.Status == domain.StatusFinished
	}, 2*time.Second, 10*time.Millisecond)
}

func TestLauncher_BoundedConcurrency(t *testing.T) {
	release := make(chan struct{})
	var active atomic.Int32
	engine := &fakeExtractor{
		fetchFn: func(ctx context.Context, req domain.FetchRequest, fn domain.ProgressFunc) (*domain.FetchResult, error) {
			active.Add(1)
			defer active.Add(-1)
			<-release
			return &domain.FetchResult{ID: "abc123"}, nil
		},
	}
	launcher, registry, dir := newLauncher(t, engine, 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "v-abc123.mkv"), []byte("data"), 0644))

	first, err := launcher.Launch("https://example.com/v/1", "22", false, domain.TypeVideoAudio)
	require.NoError(t, err)
	second, err := launcher.Launch("https://example.com/v/2", "22", false, domain.TypeVideoAudio)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return active.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)

	// The second job waits in the queued state for a slot
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), active.Load())

	close(release)
	require.Eventually(t, func() bool {
		a, errA := registry.Get(first)
		b, errB := registry.Get(second)
		return errA == nil && errB == nil &&
			a.Status == domain.StatusFinished && b.Status == domain.StatusFinished
	}, 2*time.Second, 10*time.Millisecond)
}

func TestResolveSelector(t *testing.T) {
	tests := []struct {
		name       string
		formatID   string
		audioOnly  bool
		formatType domain.FormatType
		expected   string
	}{
		{
			name:       "video only gets audio fallback",
			formatID:   "303",
			formatType: domain.TypeVideoOnly,
			expected:   "303+bestaudio[acodec^=opus]/bestaudio[acodec^=aac]/bestaudio",
		},
		{
			name:       "combined passes through",
			formatID:   "22",
			formatType: domain.TypeVideoAudio,
			expected:   "22",
		},
		{
			name:       "mp3 conversion passes through",
			formatID:   "251",
			audioOnly:  true,
			formatType: domain.TypeVideoOnly,
			expected:   "251",
		},
		{
			name:       "audio only passes through",
			formatID:   "251",
			formatType: domain.TypeAudioOnly,
			expected:   "251",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveSelector(tt.formatID, tt.audioOnly, tt.formatType))
		})
	}
}
