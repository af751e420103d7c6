package media

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/denisAlshanov/streamgrab/internal/models"
	"github.com/denisAlshanov/streamgrab/internal/services/extractor"
	"github.com/denisAlshanov/streamgrab/internal/services/selector"
	"github.com/denisAlshanov/streamgrab/internal/utils"
)

var ErrExtractionTimeout = errors.New("extraction timed out")

type Service struct {
	provider extractor.MetadataProvider
	timeout  time.Duration
}

func NewService(provider extractor.MetadataProvider, timeout time.Duration) *Service {
	return &Service{
		provider: provider,
		timeout:  timeout,
	}
}

// Resolve extracts url once and returns its metadata with the best stream
// of the requested kind selected. Extraction is bounded by the service
// timeout; there are no retries.
func (s *Service) Resolve(ctx context.Context, url string, mediaType models.MediaType) (*models.MediaResult, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	info, err := s.provider.Fetch(fetchCtx, url, mediaType)
	if err != nil {
		timedOut := errors.Is(err, context.DeadlineExceeded) || errors.Is(fetchCtx.Err(), context.DeadlineExceeded)
		if timedOut && ctx.Err() == nil {
			return nil, fmt.Errorf("%w after %s", ErrExtractionTimeout, s.timeout)
		}
		utils.LogError(ctx, "Error extracting info", err, utils.Fields{
			"url":     url,
			"backend": s.provider.Name(),
		})
		return nil, err
	}
	if info == nil {
		return nil, &extractor.ExtractionError{URL: url}
	}

	best, candidates, err := selector.Select(info.Formats, mediaType)
	if err != nil {
		utils.LogWarn(ctx, "No format selected", utils.Fields{
			"url":        url,
			"media_type": mediaType,
			"formats":    len(info.Formats),
			"error":      err.Error(),
		})
		return nil, err
	}

	utils.LogInfo(ctx, "Media resolved", utils.Fields{
		"url":         url,
		"media_type":  mediaType,
		"backend":     s.provider.Name(),
		"format_id":   best.FormatID,
		"candidates":  len(candidates),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return buildResult(info, mediaType, best, candidates), nil
}

// Check reports whether the extraction backend is usable.
func (s *Service) Check(ctx context.Context) error {
	return s.provider.Check(ctx)
}

func (s *Service) Backend() string {
	return s.provider.Name()
}

func buildResult(info *models.RawMediaInfo, mediaType models.MediaType, best models.CandidateStream, candidates []models.CandidateStream) *models.MediaResult {
	tags := info.Tags
	if tags == nil {
		tags = []string{}
	}
	categories := info.Categories
	if categories == nil {
		categories = []string{}
	}

	return &models.MediaResult{
		Title:            info.Title,
		ID:               info.ID,
		Duration:         info.Duration,
		DurationString:   info.DurationString,
		Uploader:         info.Uploader,
		ChannelURL:       info.ChannelURL,
		Thumbnail:        info.Thumbnail,
		Description:      info.Description,
		Tags:             tags,
		Categories:       categories,
		ViewCount:        info.ViewCount,
		LikeCount:        info.LikeCount,
		WebpageURL:       info.WebpageURL,
		UploadDate:       info.UploadDate,
		MediaType:        mediaType,
		StreamURL:        best.URL,
		AvailableFormats: candidates,
	}
}
