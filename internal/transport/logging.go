package transport

import (
	"log/slog"
	"net/http"
	"time"
)

// Logging is a RoundTripper that logs each request with method, path, status
// code and duration. Headers are never logged. A nil Logger uses slog.Default.
type Logging struct {
	Base   http.RoundTripper
	Logger *slog.Logger
}

func (l *Logging) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	base := l.Base
	if base == nil {
		base = http.DefaultTransport
	}

	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	resp, err := base.RoundTrip(req)

	attrs := []slog.Attr{
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.Duration("duration", time.Since(start)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		logger.LogAttrs(req.Context(), slog.LevelWarn, "request failed", attrs...)
		return nil, err
	}
	attrs = append(attrs, slog.Int("status", resp.StatusCode))

	switch {
	case resp.StatusCode >= 500:
		logger.LogAttrs(req.Context(), slog.LevelError, "request", attrs...)
	case resp.StatusCode >= 400:
		logger.LogAttrs(req.Context(), slog.LevelWarn, "request", attrs...)
	default:
		logger.LogAttrs(req.Context(), slog.LevelDebug, "request", attrs...)
	}
	return resp, nil
}
