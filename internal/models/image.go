package models

// ImageRecord is a previously uploaded image, keyed by content hash
type ImageRecord struct {
	Hash       string `json:"hash"`
	URL        string `json:"url"`
	DisplayURL string `json:"display_url,omitempty"`
	ImageID    string `json:"image_id,omitempty"`
	Filename   string `json:"filename"`
	UploadTime string `json:"upload_time"`
	Size       *int64 `json:"size,omitempty"`
	Width      *int   `json:"width,omitempty"`
	Height     *int   `json:"height,omitempty"`
}

// NewImageRecord holds the fields of an upload that is about to be recorded
type NewImageRecord struct {
	Hash       string
	URL        string
	DisplayURL string
	ImageID    string
	Filename   string
	Size       *int64
	Width      *int
	Height     *int
}

// UploadResponse is the API response for POST /api/upload/image
type UploadResponse struct {
	URL        string `json:"url"`
	DisplayURL string `json:"display_url"`
	ID         string `json:"id,omitempty"`
	Width      *int   `json:"width,omitempty"`
	Height     *int   `json:"height,omitempty"`
	Size       *int64 `json:"size,omitempty"`
	Duplicate  bool   `json:"duplicate"`
	Hash       string `json:"hash,omitempty"`
	UploadTime string `json:"upload_time"`
	Message    string `json:"message"`
}

// ImageStats aggregates the stored image records
type ImageStats struct {
	TotalImages int     `json:"total_images"`
	TotalSize   int64   `json:"total_size"`
	TotalSizeMB float64 `json:"total_size_mb"`
}
