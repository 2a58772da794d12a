package infrastructure

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

func TestParseProgressLine_Downloading(t *testing.T) {
	event, ok := parseProgressLine("grab|downloading|524288|1048576|NA|131072.5|8")
	require.True(t, ok)

	assert.Equal(t, domain.PhaseDownloading, event.Phase)
	assert.Equal(t, int64(524288), event.DownloadedBytes)
	assert.Equal(t, int64(1048576), event.TotalBytes)
	assert.Equal(t, int64(0), event.TotalBytesEstimate)
	require.NotNil(t, event.Speed)
	assert.Equal(t, 131072.5, *event.Speed)
	require.NotNil(t, event.ETA)
	assert.Equal(t, 8.0, *event.ETA)
}

func TestParseProgressLine_EstimateOnly(t *testing.T) {
	event, ok := parseProgressLine("grab|downloading|1000|NA|2000.0|NA|NA")
	require.True(t, ok)

	assert.Equal(t, int64(1000), event.DownloadedBytes)
	assert.Equal(t, int64(0), event.TotalBytes)
	assert.Equal(t, int64(2000), event.TotalBytesEstimate)
	assert.Nil(t, event.Speed)
	assert.Nil(t, event.ETA)
}

func TestParseProgressLine_Finished(t *testing.T) {
	event, ok := parseProgressLine("grab|finished|1048576|1048576|NA|NA|NA")
	require.True(t, ok)
	assert.Equal(t, domain.PhaseFinished, event.Phase)
}

func TestParseProgressLine_Rejects(t *testing.T) {
	tests := []string{
		"",
		"[download]  42.5% of 10.00MiB",
		"grab|downloading|1|2",
		"unrelated|downloading|1|2|3|4|5",
	}

	for _, line := range tests {
		_, ok := parseProgressLine(line)
		assert.False(t, ok, "line: %q", line)
	}
}

func TestParseDestinationLine(t *testing.T) {
	tests := []struct {
		line     string
		expected string
	}{
		{`[download] Destination: /tmp/video-abc123.webm`, "/tmp/video-abc123.webm"},
		{`[download] /tmp/video-abc123.webm has already been downloaded`, "/tmp/video-abc123.webm"},
		{`[Merger] Merging formats into "/tmp/video-abc123.mkv"`, "/tmp/video-abc123.mkv"},
		{`[ExtractAudio] Destination: /tmp/track-abc123.mp3`, "/tmp/track-abc123.mp3"},
		{`[MoveFiles] Moving file "/tmp/a.mkv" to "/downloads/a.mkv"`, "/downloads/a.mkv"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			path, ok := parseDestinationLine(tt.line)
			require.True(t, ok)
			assert.Equal(t, tt.expected, path)
		})
	}

	_, ok := parseDestinationLine("[youtube] abc123: Downloading webpage")
	assert.False(t, ok)
}

func TestBuildFetchArgs_Video(t *testing.T) {
	engine := NewYTDLPEngine(&domain.EngineConfig{YTDLPBinary: "yt-dlp"}, nil)

	args := engine.buildFetchArgs(domain.FetchRequest{
		URL:            "https://example.com/watch?v=abc",
		FormatSelector: "303+bestaudio",
		OutputTemplate: "/downloads/%(title).200s-%(id)s.%(ext)s",
		MergeContainer: "mkv",
	})

	assert.Contains(t, args, "-f")
	assert.Contains(t, args, "303+bestaudio")
	assert.Contains(t, args, "--merge-output-format")
	assert.Contains(t, args, "mkv")
	assert.NotContains(t, args, "-x")
	assert.Equal(t, "https://example.com/watch?v=abc", args[len(args)-1])
}

func TestBuildFetchArgs_ExtractAudio(t *testing.T) {
	engine := NewYTDLPEngine(&domain.EngineConfig{YTDLPBinary: "yt-dlp"}, nil)

	args := engine.buildFetchArgs(domain.FetchRequest{
		URL:            "https://example.com/watch?v=abc",
		FormatSelector: "bestaudio",
		OutputTemplate: "/downloads/%(title).200s-%(id)s.%(ext)s",
		ExtractAudio:   true,
	})

	assert.Contains(t, args, "-x")
	assert.Contains(t, args, "--audio-format")
	assert.Contains(t, args, "mp3")
	assert.Contains(t, args, "--audio-quality")
	assert.Contains(t, args, "320K")
	assert.NotContains(t, args, "--merge-output-format")
}

func TestStderrSummary(t *testing.T) {
	err := errors.New("exit status 1")

	assert.Equal(t, "Video unavailable",
		stderrSummary("WARNING: something\nERROR: Video unavailable\n", err))
	assert.Equal(t, "network unreachable",
		stderrSummary("network unreachable", err))
	assert.Equal(t, "exit status 1", stderrSummary("", err))
}
