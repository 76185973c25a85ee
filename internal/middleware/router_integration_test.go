package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/mayumi/kondate/internal/model"
)

// TestRouterIntegration_CSRFTokenEndpoint はCSRFトークン取得エンドポイントが
// chi.Routerで正しく動作することを検証する。
func TestRouterIntegration_CSRFTokenEndpoint(t *testing.T) {
	r := chi.NewRouter()

	csrfConfig := CSRFConfig{CookieSecure: false}
	r.Get("/api/csrf-token", NewCSRFTokenHandler(csrfConfig).ServeHTTP)

	req := httptest.NewRequest(http.MethodGet, "/api/csrf-token", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Token == "" {
		t.Error("expected non-empty token")
	}
}

// TestRouterIntegration_ProtectedRoute_WithMiddlewareChain は
// Session -> RequireLogin -> CSRF のミドルウェアチェーンが
// chi.Routerで正しく動作することを検証する。
func TestRouterIntegration_ProtectedRoute_WithMiddlewareChain(t *testing.T) {
	store := &mockSessionStore{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			if id == "router-test-session" {
				return liveSession("router-test-session"), nil
			}
			return nil, nil
		},
	}

	r := chi.NewRouter()

	csrfConfig := CSRFConfig{CookieSecure: false}

	// CSRFトークン取得エンドポイント（認証不要）
	r.Get("/api/csrf-token", NewCSRFTokenHandler(csrfConfig).ServeHTTP)

	// 認証が必要なルートグループ
	r.Group(func(r chi.Router) {
		r.Use(NewSessionMiddleware(store, testSessionSecret))
		r.Use(RequireLogin)
		r.Use(NewCSRFMiddleware(csrfConfig))

		r.Get("/home", func(w http.ResponseWriter, r *http.Request) {
			state := SessionStateFromContext(r.Context())
			json.NewEncoder(w).Encode(map[string]string{"email": state.Email})
		})

		r.Post("/favorite", func(w http.ResponseWriter, r *http.Request) {
			state := SessionStateFromContext(r.Context())
			json.NewEncoder(w).Encode(map[string]string{"email": state.Email, "action": "done"})
		})
	})

	// テスト1: GET /home は認証あり + CSRFなしで通る
	t.Run("GET_home_with_session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/home", nil)
		req.AddCookie(&http.Cookie{Name: "session_id", Value: SignSessionID(testSessionSecret, "router-test-session")})
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusOK {
			t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
		}
	})

	// テスト2: GET /home は認証なしでランディングページへ302
	t.Run("GET_home_no_session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/home", nil)
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusFound {
			t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusFound)
		}
		if got := w.Result().Header.Get("Location"); got != "/" {
			t.Errorf("Location = %q, want %q", got, "/")
		}
	})

	// テスト3: POST /favorite は認証あり + CSRFトークンで通る
	t.Run("POST_favorite_with_session_and_csrf", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/favorite", nil)
		req.AddCookie(&http.Cookie{Name: "session_id", Value: SignSessionID(testSessionSecret, "router-test-session")})
		req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "test-csrf-token"})
		req.Header.Set(csrfHeaderName, "test-csrf-token")
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusOK {
			t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
		}

		var body map[string]string
		json.NewDecoder(w.Result().Body).Decode(&body)
		if body["email"] != "taro@example.com" {
			t.Errorf("email = %q, want %q", body["email"], "taro@example.com")
		}
	})

	// テスト4: POST /favorite は認証あり + CSRFトークンなしで403
	t.Run("POST_favorite_without_csrf", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/favorite", nil)
		req.AddCookie(&http.Cookie{Name: "session_id", Value: SignSessionID(testSessionSecret, "router-test-session")})
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusForbidden {
			t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusForbidden)
		}
	})

	// テスト5: POST /favorite は認証なしで302（CSRFチェックの前にセッションチェック）
	t.Run("POST_favorite_no_session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/favorite", nil)
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusFound {
			t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusFound)
		}
	})

	// テスト6: CSRFトークンエンドポイントは認証不要
	t.Run("CSRF_token_endpoint_no_auth", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/csrf-token", nil)
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusOK {
			t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
		}
	})
}
