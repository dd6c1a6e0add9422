package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/takumi/kissaten/internal/model"
)

// --- GeneralMiddleware (API全般) のテスト ---

func TestGeneralMiddleware_AllowsRequestsWithinLimit(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     2, // 2 req/sec
		GeneralBurst:    5, // バースト5
		LoginRate:       1, // 未使用
		LoginBurst:      10,
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	mw := rl.GeneralMiddleware()

	handlerCallCount := 0
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCallCount++
		w.WriteHeader(http.StatusOK)
	}))

	// バースト内の5リクエストは全て通る
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
		req = req.WithContext(ContextWithClaim(req.Context(), model.Claim{ID: "user-1"}))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i, w.Result().StatusCode, http.StatusOK)
		}
	}

	if handlerCallCount != 5 {
		t.Errorf("handler call count = %d, want 5", handlerCallCount)
	}
}

func TestGeneralMiddleware_Returns429WhenLimitExceeded(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     1,
		GeneralBurst:    2,
		LoginRate:       1,
		LoginBurst:      10,
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	mw := rl.GeneralMiddleware()
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	newRequest := func() *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
		return req.WithContext(ContextWithClaim(req.Context(), model.Claim{ID: "user-1"}))
	}

	// バースト2を使い切る
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, newRequest())
		if w.Result().StatusCode != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i, w.Result().StatusCode, http.StatusOK)
		}
	}

	// 3リクエスト目は429
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, newRequest())

	if w.Result().StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusTooManyRequests)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header must be set")
	}
}

func TestGeneralMiddleware_IsolatesUsers(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     1,
		GeneralBurst:    1,
		LoginRate:       1,
		LoginBurst:      10,
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	mw := rl.GeneralMiddleware()
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(userID string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
		req = req.WithContext(ContextWithClaim(req.Context(), model.Claim{ID: userID}))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Result().StatusCode
	}

	// user-aがバーストを使い切っても
	if status := send("user-a"); status != http.StatusOK {
		t.Fatalf("user-a first request: status = %d, want %d", status, http.StatusOK)
	}
	if status := send("user-a"); status != http.StatusTooManyRequests {
		t.Errorf("user-a second request: status = %d, want %d", status, http.StatusTooManyRequests)
	}

	// user-bは影響を受けない
	if status := send("user-b"); status != http.StatusOK {
		t.Errorf("user-b request: status = %d, want %d", status, http.StatusOK)
	}
}

func TestGeneralMiddleware_NoClaim_Returns401(t *testing.T) {
	rl := NewRateLimiter(DefaultRateLimiterConfig())
	defer rl.Stop()

	mw := rl.GeneralMiddleware()
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

// --- LoginMiddleware (IPアドレス単位) のテスト ---

func TestLoginMiddleware_LimitsByIP(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     1,
		GeneralBurst:    10,
		LoginRate:       1,
		LoginBurst:      2,
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	mw := rl.LoginMiddleware()
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(remoteAddr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.RemoteAddr = remoteAddr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Result().StatusCode
	}

	// 同一IPからバースト2を使い切ると429
	if status := send("192.0.2.1:1234"); status != http.StatusOK {
		t.Fatalf("first request: status = %d, want %d", status, http.StatusOK)
	}
	if status := send("192.0.2.1:5678"); status != http.StatusOK {
		t.Fatalf("second request: status = %d, want %d", status, http.StatusOK)
	}
	if status := send("192.0.2.1:9999"); status != http.StatusTooManyRequests {
		t.Errorf("third request: status = %d, want %d", status, http.StatusTooManyRequests)
	}

	// 別IPは影響を受けない
	if status := send("198.51.100.7:1234"); status != http.StatusOK {
		t.Errorf("other IP request: status = %d, want %d", status, http.StatusOK)
	}
}

func TestLoginMiddleware_UsesForwardedForHeader(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     1,
		GeneralBurst:    10,
		LoginRate:       1,
		LoginBurst:      1,
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	mw := rl.LoginMiddleware()
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(xff string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.Header.Set("X-Forwarded-For", xff)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Result().StatusCode
	}

	// X-Forwarded-Forの先頭IPがキーになる
	if status := send("203.0.113.5, 10.0.0.1"); status != http.StatusOK {
		t.Fatalf("first request: status = %d, want %d", status, http.StatusOK)
	}
	if status := send("203.0.113.5, 10.0.0.2"); status != http.StatusTooManyRequests {
		t.Errorf("second request: status = %d, want %d", status, http.StatusTooManyRequests)
	}
}

// --- クリーンアップのテスト ---

func TestRateLimiter_CleanupRemovesStaleEntries(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     1,
		GeneralBurst:    1,
		LoginRate:       1,
		LoginBurst:      1,
		CleanupInterval: 10 * time.Millisecond,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	rl.getOrCreate(&rl.generalMu, rl.generalLimiters, "user-stale", cfg.GeneralRate, cfg.GeneralBurst)

	if count := rl.GeneralLimiterCount(); count != 1 {
		t.Fatalf("limiter count = %d, want 1", count)
	}

	// lastAccessを過去に巻き戻してクリーンアップ対象にする
	rl.generalMu.Lock()
	rl.generalLimiters["user-stale"].lastAccess = time.Now().Add(-1 * time.Hour)
	rl.generalMu.Unlock()

	rl.cleanup()

	if count := rl.GeneralLimiterCount(); count != 0 {
		t.Errorf("limiter count after cleanup = %d, want 0", count)
	}
}
