package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/article-image-api/internal/imagehost"
	"github.com/article-image-api/internal/metrics"
	"github.com/article-image-api/internal/models"
	"github.com/rs/zerolog"
)

// Response messages
const (
	msgUploaded        = "image uploaded"
	msgDuplicate       = "image already uploaded, returning existing url"
	msgRemoteDuplicate = "image already exists on the image host"
)

// uploadService is the concrete implementation of UploadService
type uploadService struct {
	index         ImageIndex
	host          ImageHost
	defaultAPIKey string
	log           zerolog.Logger
}

func newUploadService(index ImageIndex, host ImageHost, defaultAPIKey string, log zerolog.Logger) *uploadService {
	return &uploadService{
		index:         index,
		host:          host,
		defaultAPIKey: defaultAPIKey,
		log:           log.With().Str("service", "upload").Logger(),
	}
}

// UploadImage runs the upload flow: validate, hash, dedup check, remote
// upload, record. The dedup check happens before the remote call so a known
// image never reaches the host again.
func (s *uploadService) UploadImage(ctx context.Context, in *ImageUpload) (*models.UploadResponse, error) {
	// 1. Validate
	apiKey := strings.TrimSpace(in.APIKey)
	if apiKey == "" {
		apiKey = s.defaultAPIKey
	}
	if apiKey == "" {
		metrics.RecordUpload(metrics.ResultBadRequest)
		return nil, fmt.Errorf("%w: API key is required", ErrBadRequest)
	}
	if in.File == nil || in.Size <= 0 {
		metrics.RecordUpload(metrics.ResultBadRequest)
		return nil, fmt.Errorf("%w: image file is required", ErrBadRequest)
	}

	// 2. Hash
	hash, err := s.index.ComputeHash(in.File)
	if err != nil {
		metrics.RecordUpload(metrics.ResultHashError)
		return nil, err
	}

	// 3. Dedup check
	existing, err := s.index.FindByHash(ctx, hash)
	if err != nil {
		metrics.RecordUpload(metrics.ResultStoreError)
		return nil, err
	}
	if existing != nil {
		metrics.RecordUpload(metrics.ResultDuplicate)
		s.log.Info().
			Str("hash", hash).
			Str("filename", in.Filename).
			Str("original_filename", existing.Filename).
			Msg("Duplicate image, skipping remote upload")
		return duplicateResponse(existing), nil
	}

	// 4. Remote upload
	start := time.Now()
	result, err := s.host.Upload(ctx, &imagehost.UploadRequest{
		APIKey:   apiKey,
		Filename: in.Filename,
		File:     in.File,
	})
	metrics.RemoteUploadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		uploadErr := classifyHostError(err)
		if errors.Is(uploadErr, ErrGatewayTimeout) {
			metrics.RecordUpload(metrics.ResultGatewayTimeout)
		} else {
			metrics.RecordUpload(metrics.ResultBadGateway)
		}
		s.log.Warn().Err(err).Str("hash", hash).Msg("Remote upload failed")
		return nil, uploadErr
	}

	// 5. Normalize and persist
	record, err := s.index.RecordUpload(ctx, models.NewImageRecord{
		Hash:       hash,
		URL:        result.URL,
		DisplayURL: result.DisplayURL,
		ImageID:    result.ID,
		Filename:   in.Filename,
		Size:       result.Size,
		Width:      result.Width,
		Height:     result.Height,
	})
	if err != nil {
		metrics.RecordUpload(metrics.ResultStoreError)
		return nil, err
	}

	resp := &models.UploadResponse{
		URL:        record.URL,
		DisplayURL: result.DisplayURL,
		ID:         result.ID,
		Width:      result.Width,
		Height:     result.Height,
		Size:       result.Size,
		Duplicate:  false,
		Hash:       hash,
		UploadTime: record.UploadTime,
		Message:    msgUploaded,
	}
	if result.Outcome == imagehost.OutcomeDuplicate {
		resp.Duplicate = true
		resp.Message = msgRemoteDuplicate
		metrics.RecordUpload(metrics.ResultRemoteDup)
	} else {
		metrics.RecordUpload(metrics.ResultUploaded)
	}

	return resp, nil
}

func duplicateResponse(record *models.ImageRecord) *models.UploadResponse {
	displayURL := record.DisplayURL
	if displayURL == "" {
		displayURL = record.URL
	}
	return &models.UploadResponse{
		URL:        record.URL,
		DisplayURL: displayURL,
		ID:         record.ImageID,
		Width:      record.Width,
		Height:     record.Height,
		Size:       record.Size,
		Duplicate:  true,
		Hash:       record.Hash,
		UploadTime: record.UploadTime,
		Message:    msgDuplicate,
	}
}

// classifyHostError maps an image host failure to ErrGatewayTimeout or ErrBadGateway
func classifyHostError(err error) *UploadError {
	var hostErr *imagehost.Error
	if errors.As(err, &hostErr) {
		switch hostErr.Kind {
		case imagehost.KindTimeout:
			return &UploadError{Kind: ErrGatewayTimeout, Detail: hostErr.Detail, Err: err}
		case imagehost.KindStatus:
			return &UploadError{Kind: ErrBadGateway, RemoteStatus: hostErr.StatusCode, Detail: hostErr.Detail, Err: err}
		default:
			return &UploadError{Kind: ErrBadGateway, Detail: hostErr.Detail, Err: err}
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &UploadError{Kind: ErrGatewayTimeout, Detail: err.Error(), Err: err}
	}
	return &UploadError{Kind: ErrBadGateway, Detail: err.Error(), Err: err}
}
