package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"github.com/article-image-api/internal/models"
	"github.com/article-image-api/internal/repository"
	"github.com/rs/zerolog"
)

// hashChunkSize is the read size used when hashing uploads
const hashChunkSize = 4096

const bytesPerMB = 1024 * 1024

// imageIndex is the concrete implementation of ImageIndex
type imageIndex struct {
	store repository.ImageStore
	now   func() time.Time
	log   zerolog.Logger
}

func newImageIndex(store repository.ImageStore, now func() time.Time, log zerolog.Logger) *imageIndex {
	return &imageIndex{
		store: store,
		now:   now,
		log:   log.With().Str("service", "image_index").Logger(),
	}
}

// ComputeHash returns the hex MD5 digest of r, read from the start in
// fixed-size chunks. r is rewound afterwards so the same bytes can be read
// again for the forwarded upload.
func (x *imageIndex) ComputeHash(r io.ReadSeeker) (string, error) {
	if r == nil {
		return "", fmt.Errorf("%w: no data", ErrHash)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHash, err)
	}

	h := md5.New()
	buf := make([]byte, hashChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrHash, err)
		}
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHash, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// FindByHash returns the first record with the given hash, or nil
func (x *imageIndex) FindByHash(ctx context.Context, hash string) (*models.ImageRecord, error) {
	records, err := x.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load image records: %w", err)
	}

	for i := range records {
		if records[i].Hash == hash {
			record := records[i]
			return &record, nil
		}
	}
	return nil, nil
}

// RecordUpload appends a new image record stamped with the current time
func (x *imageIndex) RecordUpload(ctx context.Context, in models.NewImageRecord) (*models.ImageRecord, error) {
	records, err := x.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load image records: %w", err)
	}

	record := models.ImageRecord{
		Hash:       in.Hash,
		URL:        in.URL,
		DisplayURL: in.DisplayURL,
		ImageID:    in.ImageID,
		Filename:   in.Filename,
		UploadTime: x.now().Format(models.TimeLayout),
		Size:       in.Size,
		Width:      in.Width,
		Height:     in.Height,
	}

	records = append(records, record)
	if err := x.store.Save(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to save image records: %w", err)
	}

	x.log.Info().
		Str("hash", record.Hash).
		Str("url", record.URL).
		Str("filename", record.Filename).
		Int("total_images", len(records)).
		Msg("Image recorded")

	return &record, nil
}

// ListImages returns all image records, newest first
func (x *imageIndex) ListImages(ctx context.Context) ([]models.ImageRecord, error) {
	records, err := x.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load image records: %w", err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].UploadTime > records[j].UploadTime
	})
	return records, nil
}

// Stats aggregates count and total size. Records without a size count as 0.
func (x *imageIndex) Stats(ctx context.Context) (*models.ImageStats, error) {
	records, err := x.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load image records: %w", err)
	}

	var total int64
	for _, r := range records {
		if r.Size != nil {
			total += *r.Size
		}
	}

	return &models.ImageStats{
		TotalImages: len(records),
		TotalSize:   total,
		TotalSizeMB: math.Round(float64(total)/bytesPerMB*100) / 100,
	}, nil
}
