// Package selector picks the single best stream out of an extractor's
// format list.
package selector

import (
	"errors"
	"fmt"

	"github.com/denisAlshanov/streamgrab/internal/models"
)

var (
	ErrNoSuitableFormat = errors.New("no suitable format")
	ErrInvalidMediaType = errors.New("Invalid media type")
)

// NoSuitableFormatError matches ErrNoSuitableFormat and names the media type
// in its message.
type NoSuitableFormatError struct {
	MediaType models.MediaType
}

func (e *NoSuitableFormatError) Error() string {
	return fmt.Sprintf("No suitable %s format found", e.MediaType)
}

func (e *NoSuitableFormatError) Is(target error) bool {
	return target == ErrNoSuitableFormat
}

// Select filters formats down to the candidates for mediaType and returns
// the best one alongside every candidate, in source order.
//
// Audio candidates have an audio track and no video track; the best has the
// highest sample rate. Video candidates must carry both tracks, so
// video-only adaptive streams are never offered; the best has the greatest
// height, then frame rate. Ties keep the earliest entry.
func Select(formats []models.RawFormat, mediaType models.MediaType) (models.CandidateStream, []models.CandidateStream, error) {
	var candidates []models.CandidateStream

	switch mediaType {
	case models.MediaTypeAudio:
		for _, f := range formats {
			if f.HasAudio() && !f.HasVideo() {
				candidates = append(candidates, audioCandidate(f))
			}
		}
	case models.MediaTypeVideo:
		for _, f := range formats {
			if f.HasAudio() && f.HasVideo() {
				candidates = append(candidates, videoCandidate(f))
			}
		}
	default:
		return models.CandidateStream{}, nil, ErrInvalidMediaType
	}

	if len(candidates) == 0 {
		return models.CandidateStream{}, nil, &NoSuitableFormatError{MediaType: mediaType}
	}

	best := 0
	for i := 1; i < len(candidates); i++ {
		if better(candidates[i], candidates[best], mediaType) {
			best = i
		}
	}

	return candidates[best], candidates, nil
}

// better reports whether a strictly outranks b.
func better(a, b models.CandidateStream, mediaType models.MediaType) bool {
	if mediaType == models.MediaTypeAudio {
		return floatOrZero(a.ASR) > floatOrZero(b.ASR)
	}

	ah, bh := intOrZero(a.Height), intOrZero(b.Height)
	if ah != bh {
		return ah > bh
	}
	return floatOrZero(a.FPS) > floatOrZero(b.FPS)
}

func audioCandidate(f models.RawFormat) models.CandidateStream {
	return models.CandidateStream{
		Kind:     models.MediaTypeAudio,
		FormatID: f.FormatID,
		Ext:      f.Ext,
		FileSize: f.FileSize,
		ASR:      f.ASR,
		URL:      f.URL,
	}
}

func videoCandidate(f models.RawFormat) models.CandidateStream {
	return models.CandidateStream{
		Kind:     models.MediaTypeVideo,
		FormatID: f.FormatID,
		Ext:      f.Ext,
		Width:    f.Width,
		Height:   f.Height,
		FileSize: f.FileSize,
		FPS:      f.FPS,
		URL:      f.URL,
	}
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
