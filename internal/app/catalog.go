package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

// Per-type caps keep the catalog from overwhelming users; the ranked list
// already puts the best options first.
const (
	maxVideoAudio = 15
	maxVideoOnly  = 3
	maxAudioOnly  = 3
	maxMP3        = 3

	mp3ScoreBonus = 100
	mp3Label      = "MP3 320kbps High Quality (Audio only)"
)

// Catalog is one ranked format listing for a URL
type Catalog struct {
	TaskID  string                   `json:"task_id"`
	Title   string                   `json:"title"`
	Formats []domain.FormatCandidate `json:"formats"`
}

// cachedListing is the URL-keyed part of a catalog that can be reused
// across requests
type cachedListing struct {
	title   string
	formats []domain.FormatCandidate
}

// CatalogService builds ranked format catalogs by querying the extraction
// engine. Each build runs through its own registry task so clients can
// observe the fetching_formats lifecycle.
type CatalogService struct {
	registry domain.TaskRegistry
	engine   domain.Extractor
	cache    *gocache.Cache
	logger   *zap.Logger
}

// NewCatalogService creates a new catalog service. Listings are cached per
// URL for the configured TTL so repeated lookups skip the engine.
func NewCatalogService(registry domain.TaskRegistry, engine domain.Extractor, config *domain.CatalogConfig, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		registry: registry,
		engine:   engine,
		cache:    gocache.New(config.CacheTTL, config.CacheTTL),
		logger:   logger,
	}
}

// Build queries the engine for the URL's streams and returns the ranked
// catalog. The caller blocks until the engine responds.
func (s *CatalogService) Build(ctx context.Context, url string) (*Catalog, error) {
	task := s.registry.Create()
	s.registry.Update(task.ID, domain.StatusUpdate(domain.StatusFetchingFormats))

	if item, found := s.cache.Get(url); found {
		listing := item.(*cachedListing)
		s.markReady(task.ID)
		s.logger.Debug("catalog served from cache", zap.String("url", url))
		return &Catalog{TaskID: task.ID, Title: listing.title, Formats: listing.formats}, nil
	}

	info, err := s.engine.ListStreams(ctx, url)
	if err != nil {
		s.registry.Update(task.ID, domain.TaskUpdate{
			Status:  statusPtr(domain.StatusError),
			Message: domain.StringPtr(fmt.Sprintf("Error fetching formats: %v", err)),
		})
		s.logger.Error("stream listing failed", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}

	formats := RankFormats(info.Formats)
	s.cache.Set(url, &cachedListing{title: info.Title, formats: formats}, gocache.DefaultExpiration)
	s.markReady(task.ID)

	s.logger.Info("catalog built",
		zap.String("url", url),
		zap.String("title", info.Title),
		zap.Int("candidates", len(formats)))

	return &Catalog{TaskID: task.ID, Title: info.Title, Formats: formats}, nil
}

func (s *CatalogService) markReady(taskID string) {
	s.registry.Update(taskID, domain.TaskUpdate{
		Status:  statusPtr(domain.StatusReady),
		Message: domain.StringPtr("Formats fetched"),
	})
}

// RankFormats turns raw engine descriptors into the final ranked candidate
// list: deduplicated, scored, capped per type and extended with synthesized
// MP3-conversion entries.
func RankFormats(raw []*domain.RawFormat) []domain.FormatCandidate {
	seen := make(map[string]bool)
	var scored []domain.FormatCandidate

	for _, f := range raw {
		if f.FormatID == "" || seen[f.FormatID] {
			continue
		}
		seen[f.FormatID] = true

		if candidate, ok := domain.ScoreFormat(f); ok {
			scored = append(scored, candidate)
		}
	}

	sortByScore(scored)

	var videoAudio, videoOnly, audioOnly []domain.FormatCandidate
	for _, c := range scored {
		switch c.Type {
		case domain.TypeVideoAudio:
			if len(videoAudio) < maxVideoAudio {
				videoAudio = append(videoAudio, c)
			}
		case domain.TypeVideoOnly:
			if len(videoOnly) < maxVideoOnly {
				videoOnly = append(videoOnly, c)
			}
		case domain.TypeAudioOnly:
			if len(audioOnly) < maxAudioOnly {
				audioOnly = append(audioOnly, c)
			}
		}
	}

	result := make([]domain.FormatCandidate, 0, len(videoAudio)+len(videoOnly)+len(audioOnly)+maxMP3)
	result = append(result, videoAudio...)
	result = append(result, videoOnly...)
	result = append(result, audioOnly...)

	// Synthesize MP3-conversion entries from the best audio streams of the
	// full scored set, before the per-type cap was applied
	result = append(result, synthesizeMP3(scored)...)

	sortByScore(result)
	return result
}

// synthesizeMP3 derives one MP3-conversion candidate from each of the top
// audio-only streams
func synthesizeMP3(scored []domain.FormatCandidate) []domain.FormatCandidate {
	var derived []domain.FormatCandidate
	for _, c := range scored {
		if c.Type != domain.TypeAudioOnly {
			continue
		}

		label := mp3Label
		if i := strings.LastIndex(c.Label, " — "); i >= 0 {
			label += c.Label[i:]
		}

		derived = append(derived, domain.FormatCandidate{
			FormatID:     c.FormatID,
			Ext:          "mp3",
			Label:        label,
			ACodec:       c.ACodec,
			VCodec:       "none",
			QualityScore: c.QualityScore + mp3ScoreBonus,
			Type:         domain.TypeAudioOnly,
			AudioOnlyMP3: true,
		})
		if len(derived) == maxMP3 {
			break
		}
	}
	return derived
}

// sortByScore sorts candidates by descending score; ties keep their
// original relative order
func sortByScore(candidates []domain.FormatCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].QualityScore > candidates[j].QualityScore
	})
}

func statusPtr(s domain.TaskStatus) *domain.TaskStatus { return &s }
