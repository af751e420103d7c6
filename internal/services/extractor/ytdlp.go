package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/denisAlshanov/streamgrab/internal/models"
	"github.com/denisAlshanov/streamgrab/internal/utils"
)

// CommandRunner runs an external program and returns its captured output.
type CommandRunner func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// ytDlpArgs never download, skip playlists and keep going past broken
// formats so one bad entry does not fail the whole call.
var ytDlpArgs = []string{
	"-J",
	"--skip-download",
	"--no-playlist",
	"--geo-bypass",
	"--ignore-errors",
	"--no-check-certificate",
	"--no-warnings",
	"-f", "bestvideo+bestaudio/best",
}

type YtDlpProvider struct {
	binary string
	run    CommandRunner
}

// NewYtDlpProvider creates a provider that shells out to the yt-dlp binary
func NewYtDlpProvider(binary string) *YtDlpProvider {
	return &YtDlpProvider{
		binary: binary,
		run:    execRunner,
	}
}

// WithRunner swaps the process runner, mainly for tests.
func (p *YtDlpProvider) WithRunner(run CommandRunner) *YtDlpProvider {
	p.run = run
	return p
}

func (p *YtDlpProvider) Name() string {
	return "yt-dlp"
}

// ytDlpJSON keeps formats raw so each entry can be decoded on its own
type ytDlpJSON struct {
	models.RawMediaInfo
	Formats []json.RawMessage `json:"formats"`
}

func (p *YtDlpProvider) Fetch(ctx context.Context, url string, mediaType models.MediaType) (*models.RawMediaInfo, error) {
	args := append(append([]string{}, ytDlpArgs...), "--", url)

	stdout, stderr, err := p.run(ctx, p.binary, args...)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	stdout = bytes.TrimSpace(stdout)
	if len(stdout) == 0 || bytes.Equal(stdout, []byte("null")) {
		if err == nil {
			err = errors.New("yt-dlp returned no metadata")
		} else if msg := lastLine(stderr); msg != "" {
			err = fmt.Errorf("%s", msg)
		}
		return nil, &ExtractionError{URL: url, Err: err}
	}

	if err != nil {
		// --ignore-errors can exit non-zero after printing usable JSON
		utils.LogDebug(ctx, "yt-dlp exited with an error but produced metadata", utils.Fields{
			"url":    url,
			"error":  err.Error(),
			"stderr": lastLine(stderr),
		})
	}

	var data ytDlpJSON
	if err := json.Unmarshal(stdout, &data); err != nil {
		return nil, &ExtractionError{URL: url, Err: fmt.Errorf("invalid yt-dlp output: %w", err)}
	}

	info := data.RawMediaInfo
	info.Formats = make([]models.RawFormat, 0, len(data.Formats))
	skipped := 0
	for _, raw := range data.Formats {
		var f models.RawFormat
		if err := json.Unmarshal(raw, &f); err != nil || f.URL == "" {
			skipped++
			continue
		}
		info.Formats = append(info.Formats, f)
	}

	if skipped > 0 {
		utils.LogDebug(ctx, "Skipped malformed formats", utils.Fields{
			"url":        url,
			"skipped":    skipped,
			"media_type": mediaType,
		})
	}

	return &info, nil
}

func (p *YtDlpProvider) Check(ctx context.Context) error {
	stdout, stderr, err := p.run(ctx, p.binary, "--version")
	if err != nil {
		if msg := lastLine(stderr); msg != "" {
			return fmt.Errorf("yt-dlp unavailable: %w (%s)", err, msg)
		}
		return fmt.Errorf("yt-dlp unavailable: %w", err)
	}
	if len(bytes.TrimSpace(stdout)) == 0 {
		return errors.New("yt-dlp unavailable: empty version output")
	}
	return nil
}

func lastLine(output []byte) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
