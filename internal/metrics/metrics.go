// Package metrics 는 Prometheus 메트릭 수집과 공개를 제공한다.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector 는 메트릭 수집 인터페이스.
// 인증 서비스와 핸들러 층에서 사용한다.
type MetricsCollector interface {
	RecordLogin(provider string, outcome string)
	RecordTokenMinted(mock bool)
	RecordUserUpsertFailure()
	RecordUpload(outcome string)
	RecordEmailSent(outcome string)
	RecordHTTPStatus(statusCode int)
	RecordReconcileLatency(duration time.Duration)
}

// Collector 는 Prometheus 메트릭을 수집하는 구현.
type Collector struct {
	logins           *prometheus.CounterVec
	tokensMinted     *prometheus.CounterVec
	upsertFailures   prometheus.Counter
	uploads          *prometheus.CounterVec
	emailsSent       *prometheus.CounterVec
	httpStatus       *prometheus.CounterVec
	reconcileLatency prometheus.Histogram
}

// NewCollector 는 새 Collector를 생성하고 지정 레지스트리에 메트릭을 등록한다.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bakehouse_login_total",
			Help: "제공자/결과별 로그인 시도 수",
		}, []string{"provider", "outcome"}),
		tokensMinted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bakehouse_custom_tokens_minted_total",
			Help: "발급된 커스텀 토큰 수 (mock 여부별)",
		}, []string{"mock"}),
		upsertFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bakehouse_user_upsert_fail_total",
			Help: "이용자 문서 정합(upsert) 실패 수",
		}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bakehouse_image_uploads_total",
			Help: "결과별 이미지 업로드 수 (ok/failed/compensated)",
		}, []string{"outcome"}),
		emailsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bakehouse_emails_sent_total",
			Help: "결과별 메일 발송 수",
		}, []string{"outcome"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bakehouse_http_status_total",
			Help: "HTTP 상태 코드별 응답 수",
		}, []string{"status_code"}),
		reconcileLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bakehouse_reconcile_latency_seconds",
			Help:    "로그인 정합 처리의 레이턴시(초)",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.logins,
		c.tokensMinted,
		c.upsertFailures,
		c.uploads,
		c.emailsSent,
		c.httpStatus,
		c.reconcileLatency,
	)
	return c
}

// RecordLogin 은 로그인 시도 결과를 기록한다.
func (c *Collector) RecordLogin(provider string, outcome string) {
	c.logins.WithLabelValues(provider, outcome).Inc()
}

// RecordTokenMinted 는 커스텀 토큰 발급을 기록한다.
func (c *Collector) RecordTokenMinted(mock bool) {
	c.tokensMinted.WithLabelValues(strconv.FormatBool(mock)).Inc()
}

// RecordUserUpsertFailure 는 이용자 문서 정합 실패를 기록한다.
func (c *Collector) RecordUserUpsertFailure() {
	c.upsertFailures.Inc()
}

// RecordUpload 는 이미지 업로드 결과를 기록한다.
func (c *Collector) RecordUpload(outcome string) {
	c.uploads.WithLabelValues(outcome).Inc()
}

// RecordEmailSent 는 메일 발송 결과를 기록한다.
func (c *Collector) RecordEmailSent(outcome string) {
	c.emailsSent.WithLabelValues(outcome).Inc()
}

// RecordHTTPStatus 는 HTTP 상태 코드를 기록한다.
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordReconcileLatency 는 정합 처리의 레이턴시를 기록한다.
func (c *Collector) RecordReconcileLatency(duration time.Duration) {
	c.reconcileLatency.Observe(duration.Seconds())
}

// Handler 는 Prometheus 스크레이프용 HTTP 핸들러를 반환한다.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute 는 /metrics 엔드포인트를 제공하는 HTTP 핸들러를 반환한다.
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
