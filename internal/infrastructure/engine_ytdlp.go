package infrastructure

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

// progressTemplate makes yt-dlp emit machine-readable progress lines carrying
// the raw byte counters instead of the human-readable percentage output.
const progressTemplate = "grab|%(progress.status)s|%(progress.downloaded_bytes)s|" +
	"%(progress.total_bytes)s|%(progress.total_bytes_estimate)s|" +
	"%(progress.speed)s|%(progress.eta)s"

// audioQuality is the fixed bitrate requested for MP3 extraction
const audioQuality = "320K"

var (
	mergerRegex       = regexp.MustCompile(`\[Merger\] Merging formats into "(.+)"`)
	extractAudioRegex = regexp.MustCompile(`\[ExtractAudio\] Destination: (.+)`)
	destinationRegex  = regexp.MustCompile(`\[download\] Destination: (.+)`)
	alreadyRegex      = regexp.MustCompile(`\[download\] (.+) has already been downloaded`)
	moveFilesRegex    = regexp.MustCompile(`\[MoveFiles\] Moving file "(.+)" to "(.+)"`)
)

// YTDLPEngine implements domain.Extractor by shelling out to yt-dlp
type YTDLPEngine struct {
	config *domain.EngineConfig
	logger *zap.Logger
}

// NewYTDLPEngine creates a new yt-dlp backed extraction engine
func NewYTDLPEngine(config *domain.EngineConfig, logger *zap.Logger) *YTDLPEngine {
	return &YTDLPEngine{
		config: config,
		logger: logger,
	}
}

// ytdlpInfo is the subset of yt-dlp's info JSON the engine consumes
type ytdlpInfo struct {
	ID      string              `json:"id"`
	Title   string              `json:"title"`
	Formats []*domain.RawFormat `json:"formats"`
}

// ListStreams runs yt-dlp in dump-json mode and returns the raw stream descriptors
func (e *YTDLPEngine) ListStreams(ctx context.Context, url string) (*domain.MediaInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, e.config.ListTimeout)
	defer cancel()

	args := []string{"-J", "--no-warnings", "--no-playlist", url}
	cmd := exec.CommandContext(ctx, e.config.YTDLPBinary, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("stream listing timed out")
		}
		return nil, fmt.Errorf("%s", stderrSummary(stderr.String(), err))
	}

	var info ytdlpInfo
	if err := json.Unmarshal(output, &info); err != nil {
		return nil, fmt.Errorf("failed to parse stream metadata: %w", err)
	}

	return &domain.MediaInfo{
		ID:      info.ID,
		Title:   info.Title,
		Formats: info.Formats,
	}, nil
}

// Fetch downloads and post-processes the selected streams, blocking until
// yt-dlp exits. Progress events parsed from stdout are delivered to fn on
// the calling goroutine.
func (e *YTDLPEngine) Fetch(ctx context.Context, req domain.FetchRequest, fn domain.ProgressFunc) (*domain.FetchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	args := e.buildFetchArgs(req)
	cmd := exec.CommandContext(ctx, e.config.YTDLPBinary, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", e.config.YTDLPBinary, err)
	}

	e.logger.Debug("engine fetch started",
		zap.String("url", req.URL),
		zap.String("selector", req.FormatSelector),
		zap.Bool("extract_audio", req.ExtractAudio))

	result := &domain.FetchResult{}
	scanner := bufio.NewScanner(stdout)
	// The info JSON line can run to several megabytes
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		if event, ok := parseProgressLine(line); ok {
			if fn != nil {
				fn(event)
			}
			continue
		}

		if strings.HasPrefix(line, "{") {
			var info ytdlpInfo
			if json.Unmarshal([]byte(line), &info) == nil {
				result.ID = info.ID
				result.Title = info.Title
			}
			continue
		}

		if path, ok := parseDestinationLine(line); ok {
			result.Filepath = path
		}
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("download timed out")
		}
		return nil, fmt.Errorf("%s", stderrSummary(stderr.String(), err))
	}

	return result, nil
}

// buildFetchArgs translates a FetchRequest into a yt-dlp invocation
func (e *YTDLPEngine) buildFetchArgs(req domain.FetchRequest) []string {
	args := []string{
		"--newline",
		"--no-warnings",
		"--no-playlist",
		"--print-json",
		"--progress-template", "download:" + progressTemplate,
		"-o", req.OutputTemplate,
	}

	if req.FormatSelector != "" {
		args = append(args, "-f", req.FormatSelector)
	}

	if req.ExtractAudio {
		args = append(args, "-x", "--audio-format", "mp3", "--audio-quality", audioQuality)
	} else if req.MergeContainer != "" {
		args = append(args, "--merge-output-format", req.MergeContainer)
	}

	return append(args, req.URL)
}

// parseProgressLine decodes one templated progress line. Lines that do not
// match the template are ignored.
func parseProgressLine(line string) (domain.ProgressEvent, bool) {
	if !strings.HasPrefix(line, "grab|") {
		return domain.ProgressEvent{}, false
	}

	parts := strings.Split(line, "|")
	if len(parts) != 7 {
		return domain.ProgressEvent{}, false
	}

	event := domain.ProgressEvent{
		Phase:              domain.ProgressPhase(parts[1]),
		DownloadedBytes:    parseBytes(parts[2]),
		TotalBytes:         parseBytes(parts[3]),
		TotalBytesEstimate: parseBytes(parts[4]),
	}
	if v, err := strconv.ParseFloat(parts[5], 64); err == nil {
		event.Speed = &v
	}
	if v, err := strconv.ParseFloat(parts[6], 64); err == nil {
		event.ETA = &v
	}

	return event, true
}

// parseBytes parses a byte counter that yt-dlp may emit as an integer,
// a float, or the literal "NA"
func parseBytes(s string) int64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(v)
}

// parseDestinationLine extracts the output path from yt-dlp's merger,
// post-processor and download destination lines. Later lines supersede
// earlier ones; the MoveFiles destination is the most accurate.
func parseDestinationLine(line string) (string, bool) {
	if m := moveFilesRegex.FindStringSubmatch(line); len(m) > 2 {
		return strings.TrimSpace(m[2]), true
	}
	if m := mergerRegex.FindStringSubmatch(line); len(m) > 1 {
		return strings.TrimSpace(m[1]), true
	}
	if m := extractAudioRegex.FindStringSubmatch(line); len(m) > 1 {
		return strings.TrimSpace(m[1]), true
	}
	if m := alreadyRegex.FindStringSubmatch(line); len(m) > 1 {
		return strings.TrimSpace(m[1]), true
	}
	if m := destinationRegex.FindStringSubmatch(line); len(m) > 1 {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}

// stderrSummary condenses yt-dlp's stderr into a single displayable line
func stderrSummary(stderr string, err error) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		return strings.TrimPrefix(line, "ERROR: ")
	}
	return err.Error()
}
