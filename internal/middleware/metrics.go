package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/meridianpay/sagelink/internal/metrics"
)

// Metrics observes every request. Transaction ids are collapsed out of the
// path label to keep series cardinality bounded.
func Metrics(m *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			m.Observe(r.Method, normalizePath(r.URL.Path), rec.status, time.Since(start))
		})
	}
}

func normalizePath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 0 || parts[0] != "payments" {
		return path
	}
	switch len(parts) {
	case 2:
		if parts[1] == "authenticate" {
			return "/payments/authenticate"
		}
		return "/payments/{txID}"
	case 3:
		return "/payments/{txID}/" + parts[2]
	default:
		return path
	}
}
