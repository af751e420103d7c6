package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/denisAlshanov/streamgrab/internal/models"
	"github.com/denisAlshanov/streamgrab/internal/services/extractor"
	"github.com/denisAlshanov/streamgrab/internal/services/media"
)

type probeOptions struct {
	mediaType string
	info      bool
}

func newProbeCmd(a *app) *cobra.Command {
	opts := &probeOptions{}

	cmd := &cobra.Command{
		Use:   "probe <url>",
		Short: "Resolve a single URL and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		Annotations: map[string]string{
			stdoutResultsAnnotation: "true",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := extractor.NewProvider(&a.cfg.Extractor)
			if err != nil {
				return fmt.Errorf("initializing extractor: %w", err)
			}
			svc := media.NewService(provider, a.cfg.Extractor.Timeout)
			return runProbe(cmd.Context(), svc, cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.mediaType, "type", "t", string(models.MediaTypeAudio), "Stream kind: audio | video")
	cmd.Flags().BoolVar(&opts.info, "info", false, "Metadata only, as served by /api/info")
	return cmd
}

type resolver interface {
	Resolve(ctx context.Context, url string, mediaType models.MediaType) (*models.MediaResult, error)
}

func runProbe(ctx context.Context, svc resolver, out io.Writer, url string, opts *probeOptions) error {
	mediaType, ok := models.ParseMediaType(opts.mediaType)
	if !ok {
		return fmt.Errorf("invalid --type %q: use audio or video", opts.mediaType)
	}
	if opts.info {
		mediaType = models.MediaTypeVideo
	}

	result, err := svc.Resolve(ctx, url, mediaType)
	if err != nil {
		return err
	}
	if opts.info {
		result.StreamURL = ""
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
