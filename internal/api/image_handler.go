package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/article-image-api/internal/config"
	"github.com/article-image-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Multipart field names of the upload endpoint
const (
	imageField    = "image"
	filenameField = "filename"
)

// ImageHandler handles image upload and listing endpoints
type ImageHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewImageHandler creates a new ImageHandler
func NewImageHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *ImageHandler {
	return &ImageHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "image").Logger(),
	}
}

// UploadImage handles POST /api/upload/image
// Accepts multipart field "image" and an optional "filename"
func (h *ImageHandler) UploadImage(c *gin.Context) {
	if limit := h.cfg.ImageHost.MaxUploadSize; limit > 0 {
		// leave room for the multipart envelope and the filename field
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+64*1024)
	}

	in := &service.ImageUpload{APIKey: c.GetHeader(apiKeyHeader)}

	file, header, err := c.Request.FormFile(imageField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds the maximum upload size"})
			return
		}
		// no file: the service decides which required input to report first
	} else {
		defer file.Close()
		if h.cfg.ImageHost.MaxUploadSize > 0 && header.Size > h.cfg.ImageHost.MaxUploadSize {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds the maximum upload size"})
			return
		}
		in.File = file
		in.Size = header.Size
		in.Filename = header.Filename
	}

	if name := strings.TrimSpace(c.PostForm(filenameField)); name != "" {
		in.Filename = name
	}

	resp, err := h.services.Upload.UploadImage(c.Request.Context(), in)
	if err != nil {
		h.writeUploadError(c, err)
		return
	}

	h.log.Info().
		Str("hash", resp.Hash).
		Str("filename", in.Filename).
		Int64("size_bytes", in.Size).
		Bool("duplicate", resp.Duplicate).
		Msg("Image upload handled")

	c.JSON(http.StatusOK, resp)
}

func (h *ImageHandler) writeUploadError(c *gin.Context, err error) {
	var uploadErr *service.UploadError
	switch {
	case errors.Is(err, service.ErrBadRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &uploadErr):
		status := http.StatusBadGateway
		if errors.Is(err, service.ErrGatewayTimeout) {
			status = http.StatusGatewayTimeout
		}
		body := gin.H{"error": uploadErr.Kind.Error(), "detail": uploadErr.Detail}
		if uploadErr.RemoteStatus != 0 {
			body["remote_status"] = uploadErr.RemoteStatus
		}
		c.JSON(status, body)
	case errors.Is(err, service.ErrHash):
		h.log.Error().Err(err).Msg("Failed to hash upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": service.ErrHash.Error()})
	default:
		h.log.Error().Err(err).Msg("Image upload failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process upload"})
	}
}

// ListImages handles GET /api/images
func (h *ImageHandler) ListImages(c *gin.Context) {
	images, err := h.services.Image.ListImages(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list images")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list images"})
		return
	}

	c.JSON(http.StatusOK, images)
}

// GetStats handles GET /api/images/stats
func (h *ImageHandler) GetStats(c *gin.Context) {
	stats, err := h.services.Image.Stats(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute image stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
