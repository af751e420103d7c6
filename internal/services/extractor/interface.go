package extractor

import (
	"context"
	"errors"

	"github.com/denisAlshanov/streamgrab/internal/models"
)

// MetadataProvider interface for media metadata extraction backends
type MetadataProvider interface {
	// Name identifies the backend in logs and health checks
	Name() string

	// Fetch extracts metadata and candidate formats for url without
	// downloading any media
	Fetch(ctx context.Context, url string, mediaType models.MediaType) (*models.RawMediaInfo, error)

	// Check verifies the backend is usable
	Check(ctx context.Context) error
}

// ErrExtraction matches every failure caused by the source URL itself:
// unreachable, unsupported or without parseable metadata.
var ErrExtraction = errors.New("extraction failed")

const extractionFailedMessage = "Could not extract video information"

type ExtractionError struct {
	URL string
	Err error
}

func (e *ExtractionError) Error() string {
	if e.Err == nil {
		return extractionFailedMessage
	}
	return extractionFailedMessage + ": " + e.Err.Error()
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtraction
}
