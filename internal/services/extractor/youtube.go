package extractor

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"

	"github.com/denisAlshanov/streamgrab/internal/models"
	"github.com/denisAlshanov/streamgrab/internal/utils"
)

// videoClient is the part of *youtube.Client the provider needs
type videoClient interface {
	GetVideoContext(ctx context.Context, url string) (*youtube.Video, error)
	GetStreamURLContext(ctx context.Context, video *youtube.Video, format *youtube.Format) (string, error)
}

type YouTubeProvider struct {
	client videoClient
}

// NewYouTubeProvider creates a provider backed by the native YouTube client
func NewYouTubeProvider(httpTimeout time.Duration) *YouTubeProvider {
	httpClient := &http.Client{
		Timeout: httpTimeout,
	}

	return &YouTubeProvider{
		client: &youtube.Client{HTTPClient: httpClient},
	}
}

func (p *YouTubeProvider) Name() string {
	return "youtube"
}

func (p *YouTubeProvider) Fetch(ctx context.Context, url string, mediaType models.MediaType) (*models.RawMediaInfo, error) {
	video, err := p.client.GetVideoContext(ctx, url)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &ExtractionError{URL: url, Err: err}
	}

	info := &models.RawMediaInfo{
		ID:          video.ID,
		Title:       video.Title,
		Uploader:    video.Author,
		Description: video.Description,
		WebpageURL:  "https://www.youtube.com/watch?v=" + video.ID,
		Formats:     make([]models.RawFormat, 0, len(video.Formats)),
	}

	if video.Duration > 0 {
		seconds := video.Duration.Seconds()
		info.Duration = &seconds
		info.DurationString = formatDuration(video.Duration)
	}
	if video.ChannelID != "" {
		info.ChannelURL = "https://www.youtube.com/channel/" + video.ChannelID
	}
	if !video.PublishDate.IsZero() {
		info.UploadDate = video.PublishDate.Format("20060102")
	}
	views := int64(video.Views)
	info.ViewCount = &views

	// Pick the widest thumbnail
	var widest uint
	for _, thumb := range video.Thumbnails {
		if info.Thumbnail == "" || thumb.Width > widest {
			info.Thumbnail = thumb.URL
			widest = thumb.Width
		}
	}

	skipped := 0
	for i := range video.Formats {
		f, err := p.convertFormat(ctx, video, &video.Formats[i])
		if err != nil {
			skipped++
			continue
		}
		info.Formats = append(info.Formats, f)
	}

	// Stream URL resolution fails per format once the deadline passes.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	if skipped > 0 {
		utils.LogDebug(ctx, "Skipped unusable YouTube formats", utils.Fields{
			"video_id":   video.ID,
			"skipped":    skipped,
			"media_type": mediaType,
		})
	}

	return info, nil
}

// Check has nothing local to verify; reachability is tested per request.
func (p *YouTubeProvider) Check(ctx context.Context) error {
	return nil
}

// convertFormat maps a YouTube format onto yt-dlp's vocabulary: codecs come
// from the MIME type, and ciphered URLs are resolved through the client.
func (p *YouTubeProvider) convertFormat(ctx context.Context, video *youtube.Video, format *youtube.Format) (models.RawFormat, error) {
	mediaType, params, err := mime.ParseMediaType(format.MimeType)
	if err != nil {
		return models.RawFormat{}, fmt.Errorf("invalid mime type %q: %w", format.MimeType, err)
	}

	major, subtype, _ := strings.Cut(mediaType, "/")
	var codecs []string
	for _, codec := range strings.Split(params["codecs"], ",") {
		if codec = strings.TrimSpace(codec); codec != "" {
			codecs = append(codecs, codec)
		}
	}

	raw := models.RawFormat{
		FormatID: strconv.Itoa(format.ItagNo),
		Ext:      subtype,
		ACodec:   models.CodecNone,
		VCodec:   models.CodecNone,
		URL:      format.URL,
	}

	switch major {
	case "audio":
		if len(codecs) > 0 {
			raw.ACodec = codecs[0]
		}
		if subtype == "mp4" {
			raw.Ext = "m4a"
		}
	case "video":
		if len(codecs) > 0 {
			raw.VCodec = codecs[0]
		}
		if len(codecs) > 1 {
			raw.ACodec = codecs[1]
		}
	default:
		return models.RawFormat{}, fmt.Errorf("unsupported mime type %q", format.MimeType)
	}

	if format.ContentLength > 0 {
		size := format.ContentLength
		raw.FileSize = &size
	}
	if format.AudioSampleRate != "" {
		if asr, err := strconv.ParseFloat(format.AudioSampleRate, 64); err == nil {
			raw.ASR = &asr
		}
	}
	if format.Width > 0 {
		width := format.Width
		raw.Width = &width
	}
	if format.Height > 0 {
		height := format.Height
		raw.Height = &height
	}
	if format.FPS > 0 {
		fps := float64(format.FPS)
		raw.FPS = &fps
	}

	if raw.URL == "" {
		streamURL, err := p.client.GetStreamURLContext(ctx, video, format)
		if err != nil {
			return models.RawFormat{}, fmt.Errorf("failed to resolve stream url: %w", err)
		}
		raw.URL = streamURL
	}

	return raw, nil
}

// formatDuration renders durations the way yt-dlp's duration_string does:
// "45", "3:07", "1:02:03".
func formatDuration(d time.Duration) string {
	total := int(d.Round(time.Second).Seconds())
	hours, minutes, seconds := total/3600, (total%3600)/60, total%60

	switch {
	case hours > 0:
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%d:%02d", minutes, seconds)
	default:
		return strconv.Itoa(seconds)
	}
}
