package domain

import "context"

// ProgressPhase identifies the stage a progress event belongs to
type ProgressPhase string

const (
	PhaseDownloading ProgressPhase = "downloading"
	PhaseFinished    ProgressPhase = "finished"
)

// ProgressEvent carries one telemetry update from the extraction engine.
// TotalBytes may be zero when the engine only has an estimate, and both may
// be zero when the size is unknown.
type ProgressEvent struct {
	Phase              ProgressPhase
	DownloadedBytes    int64
	TotalBytes         int64
	TotalBytesEstimate int64
	Speed              *float64 // bytes per second
	ETA                *float64 // seconds
}

// ProgressFunc receives progress events during a fetch. It is invoked
// synchronously on the fetch's goroutine and must not block for long.
type ProgressFunc func(ProgressEvent)

// MediaInfo is the result of listing streams for a URL
type MediaInfo struct {
	ID      string
	Title   string
	Formats []*RawFormat
}

// FetchRequest describes one fetch-and-produce-file job for the engine
type FetchRequest struct {
	URL            string
	FormatSelector string // opaque selector expression, empty for engine default
	OutputTemplate string
	MergeContainer string // container for merged output, e.g. "mkv"
	ExtractAudio   bool   // transcode the result to MP3 after download
}

// FetchResult is the engine's resolved metadata after a successful fetch
type FetchResult struct {
	ID       string // engine-assigned id, embedded in the output filename
	Title    string
	Filepath string // exact output path when the engine reported one
}

// Extractor is the external engine that lists encoded streams for a URL and
// performs the actual network fetch plus optional transcoding
type Extractor interface {
	// ListStreams inspects the URL and returns its raw stream descriptors
	ListStreams(ctx context.Context, url string) (*MediaInfo, error)

	// Fetch downloads and post-processes the selected streams, reporting
	// progress through fn until it returns
	Fetch(ctx context.Context, req FetchRequest, fn ProgressFunc) (*FetchResult, error)
}
