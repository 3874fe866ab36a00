package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/flohusson/attitude-emoi/internal/logging"
	"github.com/flohusson/attitude-emoi/pkg/interfaces"
)

// RequestIDHeader carries the request correlation id in and out.
const RequestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(p []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(p)
	s.bytes += n
	return n, err
}

// WithRequestLogging tags each request with a request id, stores it in the
// request context for downstream loggers and logs the outcome. An incoming
// X-Request-ID header is reused.
func WithRequestLogging(next http.Handler, logger interfaces.Logger) http.Handler {
	if logger == nil {
		logger = logging.NoOp()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		ctx := logging.ContextWithFields(r.Context(), map[string]any{"request_id": requestID})
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r.WithContext(ctx))

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		entry := logging.WithFields(logger.WithContext(ctx), map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rec.status,
			"bytes":       rec.bytes,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		switch {
		case rec.status >= http.StatusInternalServerError:
			entry.Error("http.request.failed")
		case rec.status >= http.StatusBadRequest:
			entry.Warn("http.request.rejected")
		default:
			entry.Info("http.request.completed")
		}
	})
}

// NewServer mounts the admin and public routes on one handler with request
// logging around them. Either API may be nil.
func NewServer(admin *AdminAPI, public *PublicAPI, provider interfaces.LoggerProvider) (http.Handler, error) {
	mux := http.NewServeMux()
	if admin != nil {
		if err := admin.Register(mux); err != nil {
			return nil, err
		}
	}
	if public != nil {
		if err := public.Register(mux); err != nil {
			return nil, err
		}
	}
	return WithRequestLogging(mux, logging.HTTPLogger(provider)), nil
}
