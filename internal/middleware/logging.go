package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// StatusRecorder 는 http.ResponseWriter를 감싸 상태 코드를 기록한다.
type StatusRecorder struct {
	http.ResponseWriter
	StatusCode int
	written    bool
}

// WriteHeader 는 상태 코드를 기록한 뒤 위임한다.
func (sr *StatusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.StatusCode = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

// Write 는 데이터를 쓴다. WriteHeader 미호출 시 200을 기록한다.
func (sr *StatusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.StatusCode = http.StatusOK
		sr.written = true
	}
	return sr.ResponseWriter.Write(b)
}

// StatusRecorderFunc 는 응답 완료 후 상태 코드를 통지받는 훅.
type StatusRecorderFunc func(statusCode int)

// NewLoggingMiddleware 는 요청의 JSON 구조화 로그를 남기는 미들웨어를 반환한다.
// 로그에는 method, path, status, duration_ms, uid(인증된 경우)를 포함한다.
// onStatus가 nil이 아니면 응답 상태 코드를 통지한다(메트릭 집계용).
func NewLoggingMiddleware(logger *slog.Logger, onStatus StatusRecorderFunc) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rec := &StatusRecorder{
				ResponseWriter: w,
				StatusCode:     http.StatusOK,
			}

			next.ServeHTTP(rec, r)

			duration := time.Since(start)
			durationMs := float64(duration.Nanoseconds()) / float64(time.Millisecond)

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.StatusCode),
				slog.Float64("duration_ms", durationMs),
			}

			if user, err := UserFromContext(r.Context()); err == nil {
				attrs = append(attrs, slog.String("uid", user.UID))
			}

			level := slog.LevelInfo
			if rec.StatusCode >= 500 {
				level = slog.LevelError
			} else if rec.StatusCode >= 400 {
				level = slog.LevelWarn
			}

			args := make([]any, len(attrs))
			for i, attr := range attrs {
				args[i] = attr
			}

			logger.Log(r.Context(), level, "http_request", args...)

			if onStatus != nil {
				onStatus(rec.StatusCode)
			}
		})
	}
}
