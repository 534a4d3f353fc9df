package httpserver

import (
	"context"
	"net/http"
	"time"

	"coinprices-service/internal/infrastructure/logx"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	headerRequestID = "X-Request-ID"
	headerTraceID   = "X-Trace-Id"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	traceIDKey
)

func requestIDFrom(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

func traceIDFrom(ctx context.Context) string {
	v, _ := ctx.Value(traceIDKey).(string)
	return v
}

func requestFields(r *http.Request) []zap.Field {
	return []zap.Field{
		zap.String("request_id", requestIDFrom(r.Context())),
		zap.String("trace_id", traceIDFrom(r.Context())),
	}
}

// correlate echoes or mints the request and trace ids.
func correlate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := headerOr(r, headerRequestID)
		tid := headerOr(r, headerTraceID)
		w.Header().Set(headerRequestID, rid)
		w.Header().Set(headerTraceID, tid)
		ctx := context.WithValue(r.Context(), requestIDKey, rid)
		ctx = context.WithValue(ctx, traceIDKey, tid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func headerOr(r *http.Request, name string) string {
	if v := r.Header.Get(name); v != "" {
		return v
	}
	return uuid.NewString()
}

func recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logx.L().Error("http.panic", append(requestFields(r), zap.Any("panic", rec))...)
				writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type recorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (rw *recorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recorder) Write(b []byte) (int, error) {
	if rw.status == 0 {
		rw.status = http.StatusOK
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &recorder{ResponseWriter: w}
		next.ServeHTTP(rw, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		logx.L().Info("http.request", append(requestFields(r),
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", rw.status),
			zap.Int("bytes", rw.size),
			zap.Duration("duration", time.Since(start)),
		)...)
	})
}
