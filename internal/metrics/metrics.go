// Package metrics provides Prometheus metrics for the article and image API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "articleapi"

// Upload results
const (
	ResultUploaded       = "uploaded"
	ResultDuplicate      = "duplicate"
	ResultRemoteDup      = "remote_duplicate"
	ResultBadRequest     = "bad_request"
	ResultHashError      = "hash_error"
	ResultGatewayTimeout = "gateway_timeout"
	ResultBadGateway     = "bad_gateway"
	ResultStoreError     = "store_error"
)

var (
	// HTTPRequestsTotal counts handled requests.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration measures request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// UploadsTotal counts image uploads by outcome.
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_uploads_total",
			Help:      "Total number of image upload requests by result",
		},
		[]string{"result"},
	)

	// RemoteUploadDuration measures calls to the image host.
	RemoteUploadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_upload_duration_seconds",
			Help:      "Duration of uploads to the remote image host in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	// ArticlesCreatedTotal counts created articles.
	ArticlesCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_created_total",
			Help:      "Total number of articles created",
		},
	)

	// ArticleViewsTotal counts single-article fetches.
	ArticleViewsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "article_views_total",
			Help:      "Total number of article views",
		},
	)
)

// RecordUpload records the outcome of an upload request.
func RecordUpload(result string) {
	UploadsTotal.WithLabelValues(result).Inc()
}

// RecordRequest records a handled HTTP request.
func RecordRequest(method, route, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration)
}
