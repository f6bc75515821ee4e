package middleware

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/iota-uz/tgbridge/pkg/httpapi"
)

type loggerKey struct{}

type LoggerOptions struct {
	// RequestIDHeader is read for a caller supplied request id.
	RequestIDHeader string
	// RealIPHeader is read for the client address behind a proxy.
	RealIPHeader string
	Repanic      bool
}

func DefaultLoggerOptions() LoggerOptions {
	return LoggerOptions{RequestIDHeader: "X-Request-ID", RealIPHeader: "X-Real-IP"}
}

type statusWriter struct {
	http.ResponseWriter
	statusCode    int
	statusWritten bool
	bytes         int64
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.statusWritten {
		w.statusCode = code
		w.statusWritten = true
		w.ResponseWriter.WriteHeader(code)
	}
}

// Status returns the HTTP status code
func (w *statusWriter) Status() int {
	if w.statusCode == 0 {
		return http.StatusOK
	}
	return w.statusCode
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.statusWritten {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += int64(n)
	return n, err
}

func (w *statusWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := w.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, fmt.Errorf("underlying ResponseWriter does not implement http.Hijacker")
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func realIP(r *http.Request, header string) string {
	if header != "" && r.Header.Get(header) != "" {
		return r.Header.Get(header)
	}
	return r.RemoteAddr
}

func requestID(r *http.Request, header string) string {
	if header != "" && r.Header.Get(header) != "" {
		return r.Header.Get(header)
	}
	return uuid.New().String()
}

var tracer = otel.Tracer("github.com/iota-uz/tgbridge/pkg/middleware")

// Logger returns the request scoped logger stored by WithLogger.
func Logger(ctx context.Context, fallback *logrus.Entry) *logrus.Entry {
	if l, ok := ctx.Value(loggerKey{}).(*logrus.Entry); ok {
		return l
	}
	return fallback
}

// WithLogger logs every request, opens the root span and turns handler panics into
// a JSON 500.
func WithLogger(logger *logrus.Logger, opts LoggerOptions) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := requestID(r, opts.RequestIDHeader)

			fieldsLogger := logger.WithFields(logrus.Fields{
				"request-id": id,
				"path":       r.URL.Path,
				"method":     r.Method,
			})
			fieldsLogger.WithFields(logrus.Fields{
				"ip":         realIP(r, opts.RealIPHeader),
				"user-agent": r.UserAgent(),
				"range":      r.Header.Get("Range"),
			}).Debug("request started")

			propagator := propagation.TraceContext{}
			ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := tracer.Start(
				ctx,
				"http.request",
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.route", r.URL.Path),
					attribute.String("http.request_id", id),
					attribute.String("net.peer.ip", realIP(r, opts.RealIPHeader)),
				),
			)
			defer span.End()

			if sc := span.SpanContext(); sc.HasTraceID() {
				w.Header().Set("X-Trace-Id", sc.TraceID().String())
				fieldsLogger = fieldsLogger.WithField("trace-id", sc.TraceID().String())
			}
			w.Header().Set("X-Request-Id", id)
			ctx = context.WithValue(ctx, loggerKey{}, fieldsLogger)

			wrapped := &statusWriter{ResponseWriter: w}
			defer func() {
				if recovered := recover(); recovered != nil {
					fieldsLogger.WithFields(logrus.Fields{
						"panic":    recovered,
						"stack":    string(debug.Stack()),
						"duration": time.Since(start),
					}).Error("panic recovered in request handler")

					if !wrapped.statusWritten {
						_ = httpapi.WriteError(wrapped, http.StatusInternalServerError,
							"INTERNAL_SERVER_ERROR", "internal server error",
							map[string]string{"request_id": id, "path": r.URL.Path})
					}
					if opts.Repanic {
						panic(recovered)
					}
				}
			}()

			next.ServeHTTP(wrapped, r.WithContext(ctx))

			duration := time.Since(start)
			status := wrapped.Status()
			fieldsLogger.WithFields(logrus.Fields{
				"duration":     duration,
				"status-code":  status,
				"status-class": status / 100,
				"bytes":        wrapped.bytes,
			}).Info("request completed")
			span.SetAttributes(
				attribute.Int64("http.request_duration_ms", duration.Milliseconds()),
				attribute.Int("http.status_code", status),
				attribute.Int64("http.response_size", wrapped.bytes),
			)
		})
	}
}
