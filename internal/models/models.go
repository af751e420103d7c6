package models

import (
	"encoding/json"
	"strings"
)

type MediaType string

const (
	MediaTypeAudio MediaType = "audio"
	MediaTypeVideo MediaType = "video"
)

// ParseMediaType matches case-insensitively and returns the canonical value.
func ParseMediaType(value string) (MediaType, bool) {
	switch MediaType(strings.ToLower(strings.TrimSpace(value))) {
	case MediaTypeAudio:
		return MediaTypeAudio, true
	case MediaTypeVideo:
		return MediaTypeVideo, true
	}
	return "", false
}

// CodecNone marks an absent track, as reported by yt-dlp.
const CodecNone = "none"

// RawMediaInfo is what an extraction backend reports for a single URL.
type RawMediaInfo struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Duration       *float64    `json:"duration"`
	DurationString string      `json:"duration_string"`
	Uploader       string      `json:"uploader"`
	ChannelURL     string      `json:"channel_url"`
	Thumbnail      string      `json:"thumbnail"`
	Description    string      `json:"description"`
	Tags           []string    `json:"tags"`
	Categories     []string    `json:"categories"`
	ViewCount      *int64      `json:"view_count"`
	LikeCount      *int64      `json:"like_count"`
	WebpageURL     string      `json:"webpage_url"`
	UploadDate     string      `json:"upload_date"`
	Formats        []RawFormat `json:"-"`
}

type RawFormat struct {
	FormatID string   `json:"format_id"`
	Ext      string   `json:"ext"`
	FileSize *int64   `json:"filesize"`
	ACodec   string   `json:"acodec"`
	VCodec   string   `json:"vcodec"`
	ASR      *float64 `json:"asr"`
	Width    *int     `json:"width"`
	Height   *int     `json:"height"`
	FPS      *float64 `json:"fps"`
	URL      string   `json:"url"`
}

// HasAudio treats an unknown codec as present; only "none" means absent.
func (f RawFormat) HasAudio() bool { return f.ACodec != CodecNone }

func (f RawFormat) HasVideo() bool { return f.VCodec != CodecNone }

// CandidateStream is a format offered to the client. Its JSON shape depends
// on Kind: audio streams carry asr, video streams carry width/height/fps.
type CandidateStream struct {
	Kind     MediaType
	FormatID string
	Ext      string
	FileSize *int64
	ASR      *float64
	Width    *int
	Height   *int
	FPS      *float64
	URL      string
}

type audioStreamJSON struct {
	FormatID string   `json:"format_id"`
	Ext      string   `json:"ext"`
	FileSize *int64   `json:"filesize"`
	ASR      *float64 `json:"asr"`
	URL      string   `json:"url"`
}

type videoStreamJSON struct {
	FormatID string   `json:"format_id"`
	Ext      string   `json:"ext"`
	Width    *int     `json:"width"`
	Height   *int     `json:"height"`
	FileSize *int64   `json:"filesize"`
	FPS      *float64 `json:"fps"`
	URL      string   `json:"url"`
}

func (c CandidateStream) MarshalJSON() ([]byte, error) {
	if c.Kind == MediaTypeAudio {
		return json.Marshal(audioStreamJSON{
			FormatID: c.FormatID,
			Ext:      c.Ext,
			FileSize: c.FileSize,
			ASR:      c.ASR,
			URL:      c.URL,
		})
	}
	return json.Marshal(videoStreamJSON{
		FormatID: c.FormatID,
		Ext:      c.Ext,
		Width:    c.Width,
		Height:   c.Height,
		FileSize: c.FileSize,
		FPS:      c.FPS,
		URL:      c.URL,
	})
}

// MediaResult is the normalized description returned by the API.
type MediaResult struct {
	Title            string            `json:"title"`
	ID               string            `json:"id"`
	Duration         *float64          `json:"duration"`
	DurationString   string            `json:"duration_string"`
	Uploader         string            `json:"uploader"`
	ChannelURL       string            `json:"channel_url"`
	Thumbnail        string            `json:"thumbnail"`
	Description      string            `json:"description"`
	Tags             []string          `json:"tags"`
	Categories       []string          `json:"categories"`
	ViewCount        *int64            `json:"view_count"`
	LikeCount        *int64            `json:"like_count"`
	WebpageURL       string            `json:"webpage_url"`
	UploadDate       string            `json:"upload_date"`
	MediaType        MediaType         `json:"media_type"`
	StreamURL        string            `json:"stream_url,omitempty"`
	AvailableFormats []CandidateStream `json:"available_formats"`
}

// DownloadRequest is the body of POST /api/download.
type DownloadRequest struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

type EndpointDoc struct {
	Method      string            `json:"method"`
	Headers     map[string]string `json:"headers"`
	Body        map[string]string `json:"body,omitempty"`
	QueryParams map[string]string `json:"query_params,omitempty"`
}

// CapabilityResponse is served unauthenticated at GET /.
type CapabilityResponse struct {
	Message    string                 `json:"message"`
	Version    string                 `json:"version"`
	Endpoints  map[string]EndpointDoc `json:"endpoints"`
	RateLimits map[string]string      `json:"rate_limits"`
}
