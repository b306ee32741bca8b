package imagehost_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/article-image-api/internal/imagehost"
	"github.com/rs/zerolog"
)

func newClient(url string, timeout time.Duration) *imagehost.Client {
	return imagehost.New(imagehost.Config{
		URL:            url,
		Timeout:        timeout,
		DuplicateCodes: []int{101},
	}, zerolog.Nop())
}

func upload(t *testing.T, c *imagehost.Client, data []byte) (*imagehost.UploadResult, error) {
	t.Helper()
	return c.Upload(context.Background(), &imagehost.UploadRequest{
		APIKey:   "secret",
		Filename: "cat.png",
		File:     bytes.NewReader(data),
	})
}

func hostReturning(status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
}

func TestUpload_SendsMultipartFields(t *testing.T) {
	var gotKey, gotName string
	var gotImage []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm failed: %v", err)
		}
		gotKey = r.FormValue("key")
		gotName = r.FormValue("name")
		file, header, err := r.FormFile("image")
		if err != nil {
			t.Errorf("missing image field: %v", err)
		} else {
			gotImage, _ = io.ReadAll(file)
			if header.Filename != "cat.png" {
				t.Errorf("Expected filename cat.png, got %s", header.Filename)
			}
		}
		io.WriteString(w, `{"data":{"id":"abc","url":"https://i.example.com/abc.png","display_url":"https://example.com/abc","width":640,"height":480,"size":1234},"success":true,"status":200}`)
	}))
	defer srv.Close()

	result, err := upload(t, newClient(srv.URL, time.Second), []byte("pixels"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if gotKey != "secret" {
		t.Errorf("Expected api key to be forwarded, got %q", gotKey)
	}
	if gotName != "cat.png" {
		t.Errorf("Expected name field cat.png, got %q", gotName)
	}
	if string(gotImage) != "pixels" {
		t.Errorf("Expected image bytes to be forwarded, got %q", gotImage)
	}

	if result.Outcome != imagehost.OutcomeUploaded {
		t.Errorf("Expected OutcomeUploaded, got %s", result.Outcome)
	}
	if result.URL != "https://i.example.com/abc.png" || result.DisplayURL != "https://example.com/abc" {
		t.Errorf("Unexpected urls: %s %s", result.URL, result.DisplayURL)
	}
	if result.ID != "abc" {
		t.Errorf("Expected id abc, got %s", result.ID)
	}
	if result.Width == nil || *result.Width != 640 || result.Height == nil || *result.Height != 480 {
		t.Errorf("Unexpected dimensions: %v x %v", result.Width, result.Height)
	}
	if result.Size == nil || *result.Size != 1234 {
		t.Errorf("Expected size 1234, got %v", result.Size)
	}
}

func TestUpload_DisplayURLFallbackAndStringDimensions(t *testing.T) {
	srv := hostReturning(http.StatusOK, `{"data":{"display_url":"https://example.com/view","width":"800","height":"600","size":"99"}}`)
	defer srv.Close()

	result, err := upload(t, newClient(srv.URL, time.Second), []byte("x"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if result.URL != "https://example.com/view" {
		t.Errorf("Expected display_url fallback, got %s", result.URL)
	}
	if result.Width == nil || *result.Width != 800 {
		t.Errorf("Expected width 800, got %v", result.Width)
	}
	if result.Size == nil || *result.Size != 99 {
		t.Errorf("Expected size 99, got %v", result.Size)
	}
}

func TestUpload_MissingMetadata(t *testing.T) {
	srv := hostReturning(http.StatusOK, `{"data":{"url":"https://i.example.com/a.png"}}`)
	defer srv.Close()

	result, err := upload(t, newClient(srv.URL, time.Second), []byte("x"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if result.Width != nil || result.Height != nil || result.Size != nil {
		t.Errorf("Expected no metadata, got %v %v %v", result.Width, result.Height, result.Size)
	}
	if result.DisplayURL != result.URL {
		t.Errorf("display url should default to url, got %s", result.DisplayURL)
	}
}

func TestUpload_IDFormats(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		wantID string
	}{
		{"string id", `"abc"`, "abc"},
		{"numeric id", `12345`, "12345"},
		{"large numeric id", `9007199254740993`, "9007199254740993"},
		{"null id", `null`, ""},
		{"object id", `{"v":1}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := hostReturning(http.StatusOK, `{"data":{"id":`+tt.id+`,"url":"https://i.example.com/a.png","width":10},"success":true}`)
			defer srv.Close()

			result, err := upload(t, newClient(srv.URL, time.Second), []byte("x"))
			if err != nil {
				t.Fatalf("Upload failed: %v", err)
			}
			if result.ID != tt.wantID {
				t.Errorf("Expected id %q, got %q", tt.wantID, result.ID)
			}
			if result.URL != "https://i.example.com/a.png" {
				t.Errorf("Unexpected url %s", result.URL)
			}
			if result.Width == nil || *result.Width != 10 {
				t.Errorf("Expected width 10, got %v", result.Width)
			}
		})
	}
}

func TestUpload_Failures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantKind   imagehost.ErrorKind
		wantStatus int
	}{
		{"server error", http.StatusInternalServerError, `{"error":{"message":"boom"}}`, imagehost.KindStatus, 500},
		{"invalid json", http.StatusOK, `<html>oops</html>`, imagehost.KindBody, 0},
		{"no data", http.StatusOK, `{"success":true}`, imagehost.KindBody, 0},
		{"no url", http.StatusOK, `{"data":{"id":"x"}}`, imagehost.KindBody, 0},
		{"duplicate without url", http.StatusBadRequest, `{"error":{"message":"Duplicate upload","code":101}}`, imagehost.KindStatus, 400},
		{"unrelated client error", http.StatusBadRequest, `{"error":{"message":"Invalid API v1 key.","code":100},"data":{"url":"https://i.example.com/a.png"}}`, imagehost.KindStatus, 400},
		{"non json error", http.StatusBadGateway, `Bad Gateway`, imagehost.KindStatus, 502},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := hostReturning(tt.status, tt.body)
			defer srv.Close()

			_, err := upload(t, newClient(srv.URL, time.Second), []byte("x"))
			var hostErr *imagehost.Error
			if !errors.As(err, &hostErr) {
				t.Fatalf("Expected *imagehost.Error, got %v", err)
			}
			if hostErr.Kind != tt.wantKind {
				t.Errorf("Expected kind %s, got %s", tt.wantKind, hostErr.Kind)
			}
			if hostErr.StatusCode != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, hostErr.StatusCode)
			}
		})
	}
}

func TestUpload_DuplicateErrorBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantURL string
	}{
		{
			name:    "duplicate code with data url",
			body:    `{"status_code":400,"error":{"message":"Upload failed","code":101},"data":{"url":"https://i.example.com/old.png","width":10,"height":20}}`,
			wantURL: "https://i.example.com/old.png",
		},
		{
			name:    "duplicate with numeric id",
			body:    `{"error":{"message":"Duplicate image","code":101},"data":{"id":777,"url":"https://i.example.com/num.png"}}`,
			wantURL: "https://i.example.com/num.png",
		},
		{
			name:    "duplicate message with error url",
			body:    `{"error":{"message":"Image already exists","code":"400","url":"https://i.example.com/seen.png"}}`,
			wantURL: "https://i.example.com/seen.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := hostReturning(http.StatusBadRequest, tt.body)
			defer srv.Close()

			result, err := upload(t, newClient(srv.URL, time.Second), []byte("x"))
			if err != nil {
				t.Fatalf("Expected duplicate recovery, got %v", err)
			}
			if result.Outcome != imagehost.OutcomeDuplicate {
				t.Errorf("Expected OutcomeDuplicate, got %s", result.Outcome)
			}
			if result.URL != tt.wantURL {
				t.Errorf("Expected url %s, got %s", tt.wantURL, result.URL)
			}
			if result.StatusCode != http.StatusBadRequest {
				t.Errorf("Expected status 400 recorded, got %d", result.StatusCode)
			}
		})
	}
}

func TestUpload_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := upload(t, newClient(srv.URL, 50*time.Millisecond), []byte("x"))
	var hostErr *imagehost.Error
	if !errors.As(err, &hostErr) {
		t.Fatalf("Expected *imagehost.Error, got %v", err)
	}
	if hostErr.Kind != imagehost.KindTimeout {
		t.Errorf("Expected timeout, got %s (%v)", hostErr.Kind, err)
	}
}

func TestUpload_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := upload(t, newClient(url, time.Second), []byte("x"))
	var hostErr *imagehost.Error
	if !errors.As(err, &hostErr) {
		t.Fatalf("Expected *imagehost.Error, got %v", err)
	}
	if hostErr.Kind != imagehost.KindTransport {
		t.Errorf("Expected transport error, got %s", hostErr.Kind)
	}
	if hostErr.Detail == "" {
		t.Error("Transport error should carry the underlying detail")
	}
}
