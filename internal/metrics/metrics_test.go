package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestRecordSignup_IncrementsCounter はサインアップカウンタが増加することを検証する。
func TestRecordSignup_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSignup()
	c.RecordSignup()

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "kissaten_signup_total" {
			found = true
			val := mf.GetMetric()[0].GetCounter().GetValue()
			if val != 2 {
				t.Errorf("signup_total = %v, want 2", val)
			}
		}
	}
	if !found {
		t.Error("kissaten_signup_total metric not found")
	}
}

// TestRecordLoginOutcomes_IndependentCounters はログイン成功・失敗が別カウンタで記録されることを検証する。
func TestRecordLoginOutcomes_IndependentCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLoginSuccess()
	c.RecordLoginFailure()
	c.RecordLoginFailure()
	c.RecordLoginFailure()

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	var success, fail float64
	for _, mf := range metrics {
		switch mf.GetName() {
		case "kissaten_login_success_total":
			success = mf.GetMetric()[0].GetCounter().GetValue()
		case "kissaten_login_fail_total":
			fail = mf.GetMetric()[0].GetCounter().GetValue()
		}
	}

	if success != 1 {
		t.Errorf("login_success_total = %v, want 1", success)
	}
	if fail != 3 {
		t.Errorf("login_fail_total = %v, want 3", fail)
	}
}

// TestRecordInvalidToken_IncrementsCounter は不正トークンカウンタが増加することを検証する。
func TestRecordInvalidToken_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordInvalidToken()

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "kissaten_invalid_token_total" {
			found = true
			val := mf.GetMetric()[0].GetCounter().GetValue()
			if val != 1 {
				t.Errorf("invalid_token_total = %v, want 1", val)
			}
		}
	}
	if !found {
		t.Error("kissaten_invalid_token_total metric not found")
	}
}

// TestRecordHTTPRequest_IncrementsCounterWithLabels はHTTPリクエストカウンタが
// メソッド・ステータスコード別に増加することを検証する。
func TestRecordHTTPRequest_IncrementsCounterWithLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPRequest(http.MethodGet, "/api/v1/auth/drinks", 200)
	c.RecordHTTPRequest(http.MethodGet, "/api/v1/auth/drinks/abc", 200)
	c.RecordHTTPRequest(http.MethodPost, "/api/v1/drinks", 403)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "kissaten_http_requests_total" {
			found = true
			if len(mf.GetMetric()) != 2 {
				t.Fatalf("expected 2 label combinations, got %d", len(mf.GetMetric()))
			}
			for _, m := range mf.GetMetric() {
				labels := map[string]string{}
				for _, l := range m.GetLabel() {
					labels[l.GetName()] = l.GetValue()
				}
				val := m.GetCounter().GetValue()
				switch labels["status_code"] {
				case "200":
					if labels["method"] != http.MethodGet {
						t.Errorf("method = %q, want GET", labels["method"])
					}
					if val != 2 {
						t.Errorf("http_requests_total{status_code=200} = %v, want 2", val)
					}
				case "403":
					if labels["method"] != http.MethodPost {
						t.Errorf("method = %q, want POST", labels["method"])
					}
					if val != 1 {
						t.Errorf("http_requests_total{status_code=403} = %v, want 1", val)
					}
				default:
					t.Errorf("unexpected status_code label: %s", labels["status_code"])
				}
			}
		}
	}
	if !found {
		t.Error("kissaten_http_requests_total metric not found")
	}
}

// TestRecordLoginLatency_ObservesHistogram はログインレイテンシのヒストグラムに値が記録されることを検証する。
func TestRecordLoginLatency_ObservesHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLoginLatency(100 * time.Millisecond)
	c.RecordLoginLatency(2 * time.Second)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "kissaten_login_latency_seconds" {
			found = true
			h := mf.GetMetric()[0].GetHistogram()
			if h.GetSampleCount() != 2 {
				t.Errorf("sample_count = %d, want 2", h.GetSampleCount())
			}
			// 合計は0.1 + 2.0 = 2.1秒
			if h.GetSampleSum() < 2.0 || h.GetSampleSum() > 2.2 {
				t.Errorf("sample_sum = %v, want ~2.1", h.GetSampleSum())
			}
		}
	}
	if !found {
		t.Error("kissaten_login_latency_seconds metric not found")
	}
}

// TestMetricsHandler_ReturnsPrometheusFormat は/metricsエンドポイントがPrometheus形式で返すことを検証する。
func TestMetricsHandler_ReturnsPrometheusFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSignup()
	c.RecordLoginSuccess()
	c.RecordInvalidToken()
	c.RecordHTTPRequest(http.MethodGet, "/health", 200)
	c.RecordLoginLatency(500 * time.Millisecond)

	handler := Handler(reg)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)

	expectedMetrics := []string{
		"kissaten_signup_total",
		"kissaten_login_success_total",
		"kissaten_invalid_token_total",
		"kissaten_http_requests_total",
		"kissaten_login_latency_seconds",
	}

	for _, metric := range expectedMetrics {
		if !strings.Contains(bodyStr, metric) {
			t.Errorf("response body does not contain %q", metric)
		}
	}
}

// TestCollector_ImplementsMetricsCollectorInterface はCollectorがMetricsCollectorインターフェースを実装することを検証する。
func TestCollector_ImplementsMetricsCollectorInterface(t *testing.T) {
	reg := prometheus.NewRegistry()
	var _ MetricsCollector = NewCollector(reg)
}

// TestMultipleCollectors_IndependentRegistries は異なるレジストリで独立に動作することを検証する。
func TestMultipleCollectors_IndependentRegistries(t *testing.T) {
	reg1 := prometheus.NewRegistry()
	reg2 := prometheus.NewRegistry()
	c1 := NewCollector(reg1)
	c2 := NewCollector(reg2)

	c1.RecordSignup()
	c2.RecordSignup()
	c2.RecordSignup()

	metrics1, _ := reg1.Gather()
	metrics2, _ := reg2.Gather()

	var val1, val2 float64
	for _, mf := range metrics1 {
		if mf.GetName() == "kissaten_signup_total" {
			val1 = mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	for _, mf := range metrics2 {
		if mf.GetName() == "kissaten_signup_total" {
			val2 = mf.GetMetric()[0].GetCounter().GetValue()
		}
	}

	if val1 != 1 {
		t.Errorf("reg1 signup_total = %v, want 1", val1)
	}
	if val2 != 2 {
		t.Errorf("reg2 signup_total = %v, want 2", val2)
	}
}
