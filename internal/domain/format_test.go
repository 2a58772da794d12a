package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreFormat_FiltersLowResolution(t *testing.T) {
	_, ok := ScoreFormat(&RawFormat{FormatID: "1", Ext: "mp4", Height: 144, VCodec: "avc1", ACodec: "none"})
	assert.False(t, ok)

	_, ok = ScoreFormat(&RawFormat{FormatID: "2", Ext: "mp4", Height: 239, VCodec: "avc1", ACodec: "none"})
	assert.False(t, ok)

	_, ok = ScoreFormat(&RawFormat{FormatID: "3", Ext: "mp4", Height: 240, VCodec: "avc1", ACodec: "none"})
	assert.True(t, ok)
}

func TestScoreFormat_FiltersLowAudioBitrate(t *testing.T) {
	_, ok := ScoreFormat(&RawFormat{FormatID: "1", Ext: "m4a", ACodec: "mp4a.40.2", VCodec: "none", ABR: 48})
	assert.False(t, ok)

	_, ok = ScoreFormat(&RawFormat{FormatID: "2", Ext: "m4a", ACodec: "mp4a.40.2", VCodec: "none", ABR: 96})
	assert.True(t, ok)

	// Unknown bitrate is not filtered
	_, ok = ScoreFormat(&RawFormat{FormatID: "3", Ext: "m4a", ACodec: "mp4a.40.2", VCodec: "none"})
	assert.True(t, ok)
}

func TestScoreFormat_TypeClassification(t *testing.T) {
	tests := []struct {
		name     string
		format   RawFormat
		expected FormatType
	}{
		{"combined", RawFormat{FormatID: "1", Height: 720, VCodec: "avc1", ACodec: "opus", ABR: 128}, TypeVideoAudio},
		{"video only", RawFormat{FormatID: "2", Height: 720, VCodec: "avc1", ACodec: "none"}, TypeVideoOnly},
		{"audio only", RawFormat{FormatID: "3", VCodec: "none", ACodec: "opus", ABR: 128}, TypeAudioOnly},
		{"neither", RawFormat{FormatID: "4", VCodec: "none", ACodec: "none"}, TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate, ok := ScoreFormat(&tt.format)
			require.True(t, ok)
			assert.Equal(t, tt.expected, candidate.Type)
		})
	}
}

func TestScoreFormat_HighQualityOutranksLowQuality(t *testing.T) {
	uhd, ok := ScoreFormat(&RawFormat{
		FormatID: "uhd", Ext: "webm", Height: 2160,
		VCodec: "av01.0.12M.08", ACodec: "opus", ABR: 160, FPS: 60,
	})
	require.True(t, ok)

	fhd, ok := ScoreFormat(&RawFormat{
		FormatID: "fhd", Ext: "mp4", Height: 1080,
		VCodec: "h264", ACodec: "aac", ABR: 128, FPS: 30,
	})
	require.True(t, ok)

	assert.Greater(t, uhd.QualityScore, fhd.QualityScore)
}

func TestScoreFormat_CombinedOutranksSeparateTracks(t *testing.T) {
	combined, ok := ScoreFormat(&RawFormat{
		FormatID: "c", Ext: "mp4", Height: 1080, VCodec: "avc1", ACodec: "aac", ABR: 128,
	})
	require.True(t, ok)

	videoOnly, ok := ScoreFormat(&RawFormat{
		FormatID: "v", Ext: "mp4", Height: 1080, VCodec: "avc1", ACodec: "none",
	})
	require.True(t, ok)

	audioOnly, ok := ScoreFormat(&RawFormat{
		FormatID: "a", Ext: "m4a", VCodec: "none", ACodec: "aac", ABR: 128,
	})
	require.True(t, ok)

	assert.Greater(t, combined.QualityScore, videoOnly.QualityScore)
	assert.Greater(t, combined.QualityScore, audioOnly.QualityScore)
}

func TestScoreFormat_ResolutionTiers(t *testing.T) {
	score := func(height int) int {
		c, ok := ScoreFormat(&RawFormat{FormatID: "x", Height: height, VCodec: "vp9", ACodec: "none"})
		require.True(t, ok)
		return c.QualityScore
	}

	// height + tier bonus + vp9 bonus
	assert.Equal(t, 2160+4000+200, score(2160))
	assert.Equal(t, 1440+2500+200, score(1440))
	assert.Equal(t, 1080+1500+200, score(1080))
	assert.Equal(t, 720+400+200, score(720))
	assert.Equal(t, 480+200, score(480))
}

func TestScoreFormat_FrameRateBonus(t *testing.T) {
	score := func(fps float64) int {
		c, ok := ScoreFormat(&RawFormat{FormatID: "x", Height: 480, VCodec: "vp9", ACodec: "none", FPS: fps})
		require.True(t, ok)
		return c.QualityScore
	}

	base := 480 + 200
	assert.Equal(t, base+360, score(120))
	assert.Equal(t, base+120, score(60))
	assert.Equal(t, base+72, score(48))
	assert.Equal(t, base, score(30))
}

func TestScoreFormat_Label(t *testing.T) {
	candidate, ok := ScoreFormat(&RawFormat{
		FormatID: "303", Ext: "webm", Height: 1080,
		VCodec: "vp9", ACodec: "none", FPS: 60,
		Filesize: 150 * 1024 * 1024,
	})
	require.True(t, ok)
	assert.Equal(t, "WEBM 1080p FHD 60fps (VP9) (Video only) — 150.0MB", candidate.Label)
}

func TestScoreFormat_AudioOnlyLabel(t *testing.T) {
	candidate, ok := ScoreFormat(&RawFormat{
		FormatID: "251", Ext: "webm",
		VCodec: "none", ACodec: "opus", ABR: 160,
		FilesizeApprox: 3 * 1024 * 1024,
	})
	require.True(t, ok)
	assert.Equal(t, "WEBM  (Audio only) 160kbps — 3.0MB", candidate.Label)
}

func TestHumanSize(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0.0B"},
		{512, "512.0B"},
		{1024, "1.0KB"},
		{1536, "1.5KB"},
		{5 * 1024 * 1024, "5.0MB"},
		{2 * 1024 * 1024 * 1024, "2.0GB"},
		{3 * 1024 * 1024 * 1024 * 1024, "3.0TB"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, HumanSize(tt.bytes))
		})
	}
}
