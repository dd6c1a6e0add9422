// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とミドルウェアから利用する。
type MetricsCollector interface {
	RecordSignup()
	RecordLoginSuccess()
	RecordLoginFailure()
	RecordInvalidToken()
	RecordHTTPRequest(method, path string, statusCode int)
	RecordLoginLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	signups      prometheus.Counter
	loginSuccess prometheus.Counter
	loginFail    prometheus.Counter
	invalidToken prometheus.Counter
	httpRequests *prometheus.CounterVec
	loginLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kissaten_signup_total",
			Help: "サインアップ成功の合計数",
		}),
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kissaten_login_success_total",
			Help: "ログイン成功の合計数",
		}),
		loginFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kissaten_login_fail_total",
			Help: "ログイン失敗の合計数",
		}),
		invalidToken: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kissaten_invalid_token_total",
			Help: "検証に失敗した認証トークンの合計数",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kissaten_http_requests_total",
			Help: "メソッド・ステータスコード別のHTTPリクエスト数",
		}, []string{"method", "status_code"}),
		loginLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kissaten_login_latency_seconds",
			Help:    "ログイン処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.signups,
		c.loginSuccess,
		c.loginFail,
		c.invalidToken,
		c.httpRequests,
		c.loginLatency,
	)

	return c
}

// RecordSignup はサインアップ成功を記録する。
func (c *Collector) RecordSignup() {
	c.signups.Inc()
}

// RecordLoginSuccess はログイン成功を記録する。
func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordLoginFailure はログイン失敗を記録する。
func (c *Collector) RecordLoginFailure() {
	c.loginFail.Inc()
}

// RecordInvalidToken は不正トークンの検出を記録する。
func (c *Collector) RecordInvalidToken() {
	c.invalidToken.Inc()
}

// RecordHTTPRequest はHTTPリクエストをメソッド・ステータスコード別に記録する。
// パスはカーディナリティ抑制のためラベルに含めない。
func (c *Collector) RecordHTTPRequest(method, path string, statusCode int) {
	c.httpRequests.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
}

// RecordLoginLatency はログイン処理のレイテンシを記録する。
// パスワード検証が支配的なため、bcryptコスト変更の影響を監視できる。
func (c *Collector) RecordLoginLatency(duration time.Duration) {
	c.loginLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
