package extractor

import (
	"fmt"

	"github.com/denisAlshanov/streamgrab/internal/config"
)

// NewProvider creates the metadata provider selected by configuration
func NewProvider(cfg *config.ExtractorConfig) (MetadataProvider, error) {
	switch cfg.Backend {
	case config.BackendYtDlp:
		return NewYtDlpProvider(cfg.YtDlpPath), nil
	case config.BackendYouTube:
		return NewYouTubeProvider(cfg.HTTPTimeout), nil
	default:
		return nil, fmt.Errorf("unsupported extractor backend %q", cfg.Backend)
	}
}
