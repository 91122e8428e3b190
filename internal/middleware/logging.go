// Package middleware - HTTP-логирование, общее для клиента хранилища и тестового хранилища.
package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

var sugar = zap.NewNop().Sugar()

// SetLogger задаёт логгер для WithLogging.
func SetLogger(l *zap.SugaredLogger) {
	if l == nil {
		l = zap.NewNop().Sugar()
	}
	sugar = l
}

type responseData struct {
	status int
	size   int
}

type loggingResponseWriter struct {
	http.ResponseWriter
	data *responseData
}

func (r *loggingResponseWriter) Write(b []byte) (int, error) {
	size, err := r.ResponseWriter.Write(b)
	r.data.size += size
	return size, err
}

func (r *loggingResponseWriter) WriteHeader(statusCode int) {
	r.ResponseWriter.WriteHeader(statusCode)
	r.data.status = statusCode
}

// WithLogging логирует каждый входящий запрос: uri, метод, статус, длительность и размер ответа.
func WithLogging(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		data := &responseData{status: http.StatusOK}
		lw := &loggingResponseWriter{ResponseWriter: w, data: data}
		h.ServeHTTP(lw, r)

		sugar.Infoln(
			"uri", r.RequestURI,
			"method", r.Method,
			"status", data.status,
			"duration", time.Since(start),
			"size", data.size,
		)
	})
}

// LoggingTransport логирует исходящие запросы клиента к хранилищу.
type LoggingTransport struct {
	Next http.RoundTripper
	Log  *zap.SugaredLogger
}

// NewLoggingTransport оборачивает next (http.DefaultTransport, если nil).
func NewLoggingTransport(next http.RoundTripper, log *zap.SugaredLogger) *LoggingTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &LoggingTransport{Next: next, Log: log}
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.Next.RoundTrip(req)
	if err != nil {
		t.Log.Debugw("store request failed",
			"method", req.Method,
			"url", req.URL.Redacted(),
			"duration", time.Since(start),
			"error", err,
		)
		return nil, err
	}
	t.Log.Debugw("store request",
		"method", req.Method,
		"url", req.URL.Redacted(),
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)
	return resp, nil
}
