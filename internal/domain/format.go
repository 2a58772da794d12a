package domain

import (
	"fmt"
	"strings"
)

// FormatType classifies a stream candidate by which tracks it carries
type FormatType string

const (
	TypeVideoAudio FormatType = "Video+Audio"
	TypeVideoOnly  FormatType = "Video only"
	TypeAudioOnly  FormatType = "Audio only"
	TypeUnknown    FormatType = "Unknown"
)

// RawFormat is one stream descriptor as reported by the extraction engine.
// Field names follow the engine's JSON output; a codec value of "none" means
// the track is absent.
type RawFormat struct {
	FormatID       string  `json:"format_id"`
	Ext            string  `json:"ext"`
	Height         int     `json:"height"`
	Width          int     `json:"width"`
	ACodec         string  `json:"acodec"`
	VCodec         string  `json:"vcodec"`
	ABR            float64 `json:"abr"`
	VBR            float64 `json:"vbr"`
	FPS            float64 `json:"fps"`
	Filesize       int64   `json:"filesize"`
	FilesizeApprox int64   `json:"filesize_approx"`
	FormatNote     string  `json:"format_note"`
}

// HasAudio reports whether the descriptor carries an audio track
func (f *RawFormat) HasAudio() bool {
	return f.ACodec != "" && f.ACodec != "none"
}

// HasVideo reports whether the descriptor carries a video track
func (f *RawFormat) HasVideo() bool {
	return f.VCodec != "" && f.VCodec != "none"
}

// Size returns the known or estimated size in bytes, 0 if unknown
func (f *RawFormat) Size() int64 {
	if f.Filesize > 0 {
		return f.Filesize
	}
	return f.FilesizeApprox
}

// FormatCandidate is one encoded stream option surfaced to the user,
// ephemeral to a single catalog response
type FormatCandidate struct {
	FormatID     string     `json:"format_id"`
	Ext          string     `json:"ext"`
	Height       int        `json:"height,omitempty"`
	Label        string     `json:"note"`
	ACodec       string     `json:"acodec,omitempty"`
	VCodec       string     `json:"vcodec,omitempty"`
	QualityScore int        `json:"quality_score"`
	Type         FormatType `json:"type_label"`
	AudioOnlyMP3 bool       `json:"audio_only_mp3,omitempty"`
}

// ScoreFormat derives a quality-ranked candidate from a raw descriptor.
// It returns false when the descriptor falls below the quality floor
// (height under 240p, or an audio track under 96 kbps) and must be dropped.
func ScoreFormat(f *RawFormat) (FormatCandidate, bool) {
	if f.Height > 0 && f.Height < 240 {
		return FormatCandidate{}, false
	}
	if f.HasAudio() && f.ABR > 0 && f.ABR < 96 {
		return FormatCandidate{}, false
	}

	score := 0
	quality := ""

	if f.Height > 0 {
		quality = fmt.Sprintf("%dp", f.Height)
		score += f.Height

		switch {
		case f.Height >= 2160:
			quality += " 4K"
			score += 4000
		case f.Height >= 1440:
			quality += " 2K"
			score += 2500
		case f.Height >= 1080:
			quality += " FHD"
			score += 1500
		case f.Height >= 720:
			quality += " HD"
			score += 400
		}

		switch {
		case f.FPS >= 120:
			score += int(3 * f.FPS)
		case f.FPS >= 60:
			score += int(2 * f.FPS)
		case f.FPS > 30:
			score += int(1.5 * f.FPS)
		}
		if f.FPS > 30 {
			quality += fmt.Sprintf(" %gfps", f.FPS)
		}
	} else if f.FormatNote != "" {
		quality = f.FormatNote
	}

	switch {
	case strings.Contains(f.VCodec, "av01"):
		score += 300
		quality += " (AV1)"
	case strings.Contains(f.VCodec, "vp9"):
		score += 200
		quality += " (VP9)"
	case strings.Contains(f.VCodec, "h264"), strings.Contains(f.VCodec, "avc"):
		score += 100
		quality += " (H.264)"
	}

	if f.HasAudio() {
		if strings.Contains(f.ACodec, "opus") {
			score += 50
		} else if strings.Contains(f.ACodec, "aac") {
			score += 30
		}
		score += int(f.ABR) / 10
	}

	var ftype FormatType
	switch {
	case f.HasAudio() && f.HasVideo():
		ftype = TypeVideoAudio
		score += 5000
		switch {
		case f.Height >= 2160:
			score += 3000
		case f.Height >= 1440:
			score += 2000
		case f.Height >= 1080:
			score += 1500
		}
		switch {
		case f.FPS >= 120:
			score += 800
		case f.FPS >= 60:
			score += 500
		case f.FPS >= 50:
			score += 300
		}
	case f.HasAudio():
		ftype = TypeAudioOnly
	case f.HasVideo():
		ftype = TypeVideoOnly
	default:
		ftype = TypeUnknown
	}

	bitrate := ""
	if f.VBR > 1000 {
		bitrate = fmt.Sprintf(" %dMbps", int(f.VBR)/1000)
	} else if f.ABR > 0 && ftype == TypeAudioOnly {
		bitrate = fmt.Sprintf(" %dkbps", int(f.ABR))
	}

	sizeStr := ""
	if size := f.Size(); size > 0 {
		sizeStr = " — " + HumanSize(size)
	}

	label := fmt.Sprintf("%s %s (%s)%s%s", strings.ToUpper(f.Ext), quality, ftype, bitrate, sizeStr)

	return FormatCandidate{
		FormatID:     f.FormatID,
		Ext:          f.Ext,
		Height:       f.Height,
		Label:        label,
		ACodec:       f.ACodec,
		VCodec:       f.VCodec,
		QualityScore: score,
		Type:         ftype,
	}, true
}

// HumanSize formats a byte count with binary units and one decimal place
func HumanSize(num int64) string {
	value := float64(num)
	for _, unit := range []string{"", "K", "M", "G", "T"} {
		if value < 1024.0 && value > -1024.0 {
			return fmt.Sprintf("%.1f%sB", value, unit)
		}
		value /= 1024.0
	}
	return fmt.Sprintf("%.1fPB", value)
}
