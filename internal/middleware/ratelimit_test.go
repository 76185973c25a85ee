package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/mayumi/kondate/internal/model"
)

// testRateLimiterConfig はテスト用の小さなバーストを持つ設定を返す。
func testRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(1.0 / 60.0), // 補充をほぼ無効化
		GeneralBurst:    3,
		CredentialRate:  rate.Limit(1.0 / 60.0),
		CredentialBurst: 2,
		CleanupInterval: time.Hour,
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func loggedInRequest(target, email, remoteAddr string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = remoteAddr
	state := model.SessionState{LoggedIn: true, Username: "u", Email: email}
	return req.WithContext(ContextWithSessionState(req.Context(), state, "sess-1"))
}

// TestGeneralMiddleware_EnforcesLimitPerUser はバーストを超えたリクエストが
// 429になることを検証する。
func TestGeneralMiddleware_EnforcesLimitPerUser(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, loggedInRequest("/home", "taro@example.com", "10.0.0.1:1234"))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i, w.Code, http.StatusOK)
		}
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, loggedInRequest("/home", "taro@example.com", "10.0.0.1:1234"))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header should be set")
	}
}

// TestGeneralMiddleware_IsolatedPerUser はユーザーごとに独立した
// リミッターが使われることを検証する。
func TestGeneralMiddleware_IsolatedPerUser(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	// taroのバーストを使い切る
	for i := 0; i < 4; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, loggedInRequest("/home", "taro@example.com", "10.0.0.1:1234"))
	}

	// hanakoは影響を受けない
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, loggedInRequest("/home", "hanako@example.com", "10.0.0.1:1234"))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d (limits must be per user)", w.Code, http.StatusOK)
	}

	if got := rl.GeneralLimiterCount(); got != 2 {
		t.Errorf("limiter count = %d, want 2", got)
	}
}

// TestCredentialMiddleware_LimitsPerIP は認証系の制限がIP単位に
// かかることを検証する。未ログインでも動作する。
func TestCredentialMiddleware_LimitsPerIP(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.CredentialMiddleware()(okHandler())

	newReq := func(addr string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = addr
		return req
	}

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, newReq("10.0.0.1:1234"))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i, w.Code, http.StatusOK)
		}
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, newReq("10.0.0.1:5678"))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d (same IP, different port)", w.Code, http.StatusTooManyRequests)
	}

	// 別IPは独立
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, newReq("10.0.0.2:1234"))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d (limits must be per IP)", w.Code, http.StatusOK)
	}
}

// TestCredentialAndGeneralAreIndependent は2種類の制限が互いに
// 独立に動作することを検証する。
func TestCredentialAndGeneralAreIndependent(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	credential := rl.CredentialMiddleware()(okHandler())
	general := rl.GeneralMiddleware()(okHandler())

	// 認証系のバーストを使い切る
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		credential.ServeHTTP(w, req)
	}

	// API全般の制限は消費されていない
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/home", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	general.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d (general limit must be independent)", w.Code, http.StatusOK)
	}
}

// TestRateLimiter_Cleanup は期限切れエントリがクリーンアップで
// 削除されることを検証する。
func TestRateLimiter_Cleanup(t *testing.T) {
	config := testRateLimiterConfig()
	config.CleanupInterval = 10 * time.Millisecond
	rl := NewRateLimiter(config)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, loggedInRequest("/home", "taro@example.com", "10.0.0.1:1234"))

	if got := rl.GeneralLimiterCount(); got != 1 {
		t.Fatalf("limiter count = %d, want 1", got)
	}

	// lastAccessがCleanupIntervalの2倍を超えるまで待つ
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if rl.GeneralLimiterCount() == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("expired limiter entry was not cleaned up")
}
