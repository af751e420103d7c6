package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/denisAlshanov/streamgrab/internal/models"
	"github.com/denisAlshanov/streamgrab/internal/services/extractor"
	"github.com/denisAlshanov/streamgrab/internal/services/media"
	"github.com/denisAlshanov/streamgrab/internal/services/selector"
	"github.com/denisAlshanov/streamgrab/internal/utils"
)

// MediaResolver is satisfied by *media.Service.
type MediaResolver interface {
	Resolve(ctx context.Context, url string, mediaType models.MediaType) (*models.MediaResult, error)
}

type MediaHandler struct {
	media MediaResolver
}

func NewMediaHandler(media MediaResolver) *MediaHandler {
	return &MediaHandler{media: media}
}

// Download godoc
// @Summary Resolve a direct stream URL
// @Description Extract metadata for a media page and select the best audio or video stream
// @Tags media
// @Accept json
// @Produce json
// @Param X-API-Key header string true "API key"
// @Param request body models.DownloadRequest true "Media page URL and stream type (audio or video, default audio)"
// @Success 200 {object} models.MediaResult
// @Failure 400 {object} utils.AppError
// @Failure 401 {object} utils.AppError
// @Failure 429 {object} utils.AppError
// @Failure 500 {object} utils.AppError
// @Failure 504 {object} utils.AppError
// @Router /api/download [post]
// @Security ApiKeyAuth
func (h *MediaHandler) Download(c *gin.Context) {
	ctx := c.Request.Context()

	url, mediaType, appErr := parseDownloadRequest(c.Request.Body)
	if appErr != nil {
		h.errorResponse(c, appErr)
		return
	}

	utils.LogInfo(ctx, "Processing download request", utils.Fields{
		"url":        url,
		"media_type": mediaType,
	})

	result, err := h.media.Resolve(ctx, url, mediaType)
	if err != nil {
		h.errorResponse(c, downloadError(err))
		return
	}

	c.JSON(http.StatusOK, result)
}

// Info godoc
// @Summary Get media metadata
// @Description Extract metadata and video stream candidates without a selected stream URL
// @Tags media
// @Produce json
// @Param X-API-Key header string true "API key"
// @Param url query string true "Media page URL"
// @Success 200 {object} models.MediaResult
// @Failure 400 {object} utils.AppError
// @Failure 401 {object} utils.AppError
// @Failure 429 {object} utils.AppError
// @Failure 500 {object} utils.AppError
// @Failure 504 {object} utils.AppError
// @Router /api/info [get]
// @Security ApiKeyAuth
func (h *MediaHandler) Info(c *gin.Context) {
	ctx := c.Request.Context()

	url := c.Query("url")
	if url == "" {
		h.errorResponse(c, utils.NewValidationError("Missing 'url' parameter"))
		return
	}

	result, err := h.media.Resolve(ctx, url, models.MediaTypeVideo)
	if err != nil {
		h.errorResponse(c, infoError(err))
		return
	}

	result.StreamURL = ""
	c.JSON(http.StatusOK, result)
}

// parseDownloadRequest validates the body in the order clients see errors:
// body, url, type, url scheme.
func parseDownloadRequest(body io.Reader) (string, models.MediaType, *utils.AppError) {
	var data map[string]interface{}
	if body != nil {
		if err := json.NewDecoder(body).Decode(&data); err != nil && !errors.Is(err, io.EOF) {
			appErr := utils.NewValidationError("Invalid JSON body")
			appErr.Details = err.Error()
			return "", "", appErr
		}
	}
	if len(data) == 0 {
		return "", "", utils.NewValidationError("Missing request body")
	}

	url, _ := data["url"].(string)
	if url == "" {
		return "", "", utils.NewValidationError("Missing 'url' in request")
	}

	mediaType := models.MediaTypeAudio
	if raw, ok := data["type"]; ok {
		value, _ := raw.(string)
		parsed, valid := models.ParseMediaType(value)
		if !valid {
			return "", "", utils.NewValidationError("Invalid 'type'. Use 'audio' or 'video'.")
		}
		mediaType = parsed
	}

	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "", "", utils.NewValidationError("Invalid URL format")
	}

	return url, mediaType, nil
}

func downloadError(err error) *utils.AppError {
	switch {
	case errors.Is(err, media.ErrExtractionTimeout):
		return utils.NewExtractionTimeoutError(err)
	case errors.Is(err, extractor.ErrExtraction):
		return utils.NewExtractionError(err)
	case errors.Is(err, selector.ErrNoSuitableFormat):
		return utils.NewNoSuitableFormatError(err)
	default:
		return utils.NewInternalError(err)
	}
}

// infoError reports every non-timeout failure as a 500 carrying the
// failure message.
func infoError(err error) *utils.AppError {
	if errors.Is(err, media.ErrExtractionTimeout) {
		return utils.NewExtractionTimeoutError(err)
	}
	return utils.NewError(utils.ErrorCodeInternalError, err.Error(), http.StatusInternalServerError)
}

func (h *MediaHandler) errorResponse(c *gin.Context, err *utils.AppError) {
	if err.StatusCode >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(err.StatusCode, err)
}
