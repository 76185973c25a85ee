package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mayumi/kondate/internal/model"
)

// TestSignSessionID_RoundTrip は署名付きCookie値から元のセッションIDが
// 復元できることを検証する。
func TestSignSessionID_RoundTrip(t *testing.T) {
	signed := SignSessionID(testSessionSecret, "sess-1")
	if !strings.HasPrefix(signed, "sess-1.") {
		t.Errorf("signed value = %q, want prefix %q", signed, "sess-1.")
	}

	id, ok := VerifySignedSessionID(testSessionSecret, signed)
	if !ok {
		t.Fatal("VerifySignedSessionID rejected a freshly signed value")
	}
	if id != "sess-1" {
		t.Errorf("session id = %q, want %q", id, "sess-1")
	}
}

// TestVerifySignedSessionID_Rejects は改ざん・鍵違い・形式不正の
// Cookie値がすべて拒否されることを検証する。
func TestVerifySignedSessionID_Rejects(t *testing.T) {
	signed := SignSessionID(testSessionSecret, "sess-1")

	tests := []struct {
		name  string
		value string
	}{
		{"ID部分の改ざん", "sess-2." + strings.SplitN(signed, ".", 2)[1]},
		{"署名部分の改ざん", "sess-1.deadbeef"},
		{"別の鍵による署名", SignSessionID("other-secret", "sess-1")},
		{"署名なしの生ID", "sess-1"},
		{"空文字列", ""},
		{"IDが空", "." + strings.SplitN(signed, ".", 2)[1]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := VerifySignedSessionID(testSessionSecret, tt.value); ok {
				t.Errorf("VerifySignedSessionID(%q) = ok, want rejection", tt.value)
			}
		})
	}
}

// TestSessionMiddleware_TamperedCookieIsAnonymous は署名が一致しない
// Cookieがストアに触れずに匿名として扱われることを検証する。
func TestSessionMiddleware_TamperedCookieIsAnonymous(t *testing.T) {
	store := &mockSessionStore{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			t.Error("署名不一致のCookieでストアが呼ばれた")
			return nil, nil
		},
	}

	var captured model.SessionState
	handler := NewSessionMiddleware(store, testSessionSecret)(stateCapturingHandler(&captured))

	req := httptest.NewRequest(http.MethodGet, "/home", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-1.deadbeef"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d (anonymous requests must pass through)", w.Code, http.StatusOK)
	}
	if captured.LoggedIn {
		t.Error("LoggedIn = true, want false for tampered cookie")
	}
}
