package imagehost

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Multipart field names understood by the host
const (
	FieldKey   = "key"
	FieldImage = "image"
	FieldName  = "name"
)

// maxResponseSize bounds how much of a host response is read
const maxResponseSize = 1 << 20

// Outcome tells how the host accepted an upload
type Outcome int

const (
	// OutcomeUploaded means the host stored the image and returned its descriptor
	OutcomeUploaded Outcome = iota
	// OutcomeDuplicate means the host refused the image as already uploaded
	// but its error body still carried a usable URL
	OutcomeDuplicate
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUploaded:
		return "uploaded"
	case OutcomeDuplicate:
		return "duplicate"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Config holds client settings
type Config struct {
	URL            string
	Timeout        time.Duration
	DuplicateCodes []int
}

// UploadRequest is one image to forward to the host
type UploadRequest struct {
	APIKey   string
	Filename string
	File     io.Reader
}

// UploadResult is the normalized image descriptor returned by the host
type UploadResult struct {
	Outcome    Outcome
	ID         string
	URL        string
	DisplayURL string
	Width      *int
	Height     *int
	Size       *int64
	StatusCode int
}

// Client uploads images to the remote host over HTTP
type Client struct {
	cfg        Config
	httpClient *http.Client
	dupCodes   map[int]bool
	log        zerolog.Logger
}

// New creates a new Client. The configured timeout bounds the whole call,
// including reading the response body.
func New(cfg Config, log zerolog.Logger) *Client {
	dupCodes := make(map[int]bool, len(cfg.DuplicateCodes))
	for _, code := range cfg.DuplicateCodes {
		dupCodes[code] = true
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		dupCodes:   dupCodes,
		log:        log.With().Str("component", "imagehost").Logger(),
	}
}

// Upload sends the image as multipart/form-data and classifies the response
func (c *Client) Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error) {
	body, contentType, err := buildMultipart(req)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Detail: "failed to build upload body", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Detail: "failed to build upload request", Err: err}
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.transportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, c.transportError(err)
	}

	c.log.Debug().
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Int("body_bytes", len(respBody)).
		Msg("Image host responded")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if result := c.parseDuplicate(respBody); result != nil {
			result.StatusCode = resp.StatusCode
			return result, nil
		}
		return nil, &Error{
			Kind:       KindStatus,
			StatusCode: resp.StatusCode,
			Detail:     snippet(respBody),
		}
	}

	result, err := parseSuccess(respBody)
	if err != nil {
		return nil, err
	}
	result.StatusCode = resp.StatusCode
	return result, nil
}

func (c *Client) transportError(err error) error {
	if isTimeout(err) {
		return &Error{Kind: KindTimeout, Detail: fmt.Sprintf("image host did not respond within %s", c.cfg.Timeout), Err: err}
	}
	return &Error{Kind: KindTransport, Detail: err.Error(), Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func buildMultipart(req *UploadRequest) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField(FieldKey, req.APIKey); err != nil {
		return nil, "", err
	}

	filename := req.Filename
	if filename == "" {
		filename = "image"
	}
	part, err := writer.CreateFormFile(FieldImage, filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, req.File); err != nil {
		return nil, "", err
	}

	if req.Filename != "" {
		if err := writer.WriteField(FieldName, req.Filename); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}

// hostImage is the image descriptor inside a host response
type hostImage struct {
	ID         flexString `json:"id"`
	URL        string     `json:"url"`
	DisplayURL string     `json:"display_url"`
	Width      flexInt    `json:"width"`
	Height     flexInt    `json:"height"`
	Size       flexInt    `json:"size"`
}

type hostResponse struct {
	Data    *hostImage `json:"data"`
	Success *bool      `json:"success"`
}

type hostErrorBody struct {
	Error *struct {
		Message string  `json:"message"`
		Code    flexInt `json:"code"`
		URL     string  `json:"url"`
	} `json:"error"`
	Data *hostImage `json:"data"`
}

func parseSuccess(body []byte) (*UploadResult, error) {
	var resp hostResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &Error{Kind: KindBody, Detail: "image host returned invalid JSON", Err: err}
	}
	if resp.Data == nil {
		return nil, &Error{Kind: KindBody, Detail: "image host response has no data"}
	}

	url := resp.Data.URL
	if url == "" {
		url = resp.Data.DisplayURL
	}
	if url == "" {
		return nil, &Error{Kind: KindBody, Detail: "image host response has no url"}
	}

	return resultFrom(OutcomeUploaded, url, resp.Data), nil
}

// parseDuplicate recognizes an "already uploaded" error body that still
// carries a URL. It returns nil when the body has any other shape.
func (c *Client) parseDuplicate(body []byte) *UploadResult {
	var errBody hostErrorBody
	if err := json.Unmarshal(body, &errBody); err != nil || errBody.Error == nil {
		return nil
	}

	msg := strings.ToLower(errBody.Error.Message)
	isDup := strings.Contains(msg, "duplicate") || strings.Contains(msg, "already")
	if code := errBody.Error.Code.value; code != nil && c.dupCodes[int(*code)] {
		isDup = true
	}
	if !isDup {
		return nil
	}

	var url string
	if errBody.Data != nil {
		url = errBody.Data.URL
		if url == "" {
			url = errBody.Data.DisplayURL
		}
	}
	if url == "" {
		url = errBody.Error.URL
	}
	if url == "" {
		return nil
	}

	c.log.Info().Str("url", url).Msg("Image host reported duplicate upload")
	return resultFrom(OutcomeDuplicate, url, errBody.Data)
}

func resultFrom(outcome Outcome, url string, img *hostImage) *UploadResult {
	result := &UploadResult{Outcome: outcome, URL: url, DisplayURL: url}
	if img == nil {
		return result
	}
	result.ID = string(img.ID)
	if img.DisplayURL != "" {
		result.DisplayURL = img.DisplayURL
	}
	result.Width = img.Width.intPtr()
	result.Height = img.Height.intPtr()
	result.Size = img.Size.value
	return result
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
