// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mayumi/kondate/internal/model"
)

const sessionCookieName = "session_id"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// sessionStateContextKey はリクエストコンテキストにセッション状態を格納するためのキー。
var sessionStateContextKey = contextKey("session_state")

// sessionIDContextKey はリクエストコンテキストにセッションIDを格納するためのキー。
var sessionIDContextKey = contextKey("session_id")

// SessionStore はセッションの検索と最終アクセス時刻の更新に必要なインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type SessionStore interface {
	FindByID(ctx context.Context, id string) (*model.Session, error)
	Touch(ctx context.Context, id string) error
}

// NewSessionMiddleware は署名付きHTTP Only Cookieからセッションを読み取り、
// セッション状態をリクエストコンテキストに注入するミドルウェアを返す。
// Cookie値はストア照会前にHMAC署名を検証し、不一致はストアに触れず匿名とする。
// Cookieなし・セッション不在・期限切れ・ストア障害もすべて匿名として扱い、
// リクエスト自体は通す（拒否はRequireLoginが行う）。
// 有効なセッションには最終アクセス時刻を記録するが、有効期限は延長しない。
func NewSessionMiddleware(store SessionStore, secret string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r.WithContext(contextWithAnonymous(r.Context())))
				return
			}

			sessionID, ok := VerifySignedSessionID(secret, cookie.Value)
			if !ok {
				slog.Warn("セッションCookieの署名が一致しません")
				next.ServeHTTP(w, r.WithContext(contextWithAnonymous(r.Context())))
				return
			}

			session, err := store.FindByID(r.Context(), sessionID)
			if err != nil {
				// ストア障害は匿名扱いにフォールバックする
				slog.Error("セッションの取得に失敗しました",
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r.WithContext(contextWithAnonymous(r.Context())))
				return
			}
			if session == nil {
				next.ServeHTTP(w, r.WithContext(contextWithAnonymous(r.Context())))
				return
			}

			if err := store.Touch(r.Context(), session.ID); err != nil {
				slog.Error("セッションの最終アクセス時刻の更新に失敗しました",
					slog.String("error", err.Error()),
					slog.String("session_id", session.ID),
				)
			}

			state := model.SessionState{
				LoggedIn: true,
				Username: session.Username,
				Email:    session.Email,
			}
			ctx := context.WithValue(r.Context(), sessionStateContextKey, state)
			ctx = context.WithValue(ctx, sessionIDContextKey, session.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireLogin は未ログインのリクエストをランディングページへリダイレクトする
// ミドルウェアを返す。ハンドラー本体に到達する前に遮断するため、
// 保護対象の状態には一切触れない。
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := SessionStateFromContext(r.Context())
		if !state.LoggedIn {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func contextWithAnonymous(ctx context.Context) context.Context {
	return context.WithValue(ctx, sessionStateContextKey, model.AnonymousSession())
}

// SessionStateFromContext はリクエストコンテキストからセッション状態を取得する。
// セッションミドルウェアを通過していないコンテキストでは匿名を返す。
func SessionStateFromContext(ctx context.Context) model.SessionState {
	state, ok := ctx.Value(sessionStateContextKey).(model.SessionState)
	if !ok {
		return model.AnonymousSession()
	}
	return state
}

// SessionIDFromContext はリクエストコンテキストからセッションIDを取得する。
// ログイン中のリクエストでのみ空でない値を返す。
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDContextKey).(string)
	return id
}

// ContextWithSessionState はコンテキストにセッション状態を注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithSessionState(ctx context.Context, state model.SessionState, sessionID string) context.Context {
	ctx = context.WithValue(ctx, sessionStateContextKey, state)
	if sessionID != "" {
		ctx = context.WithValue(ctx, sessionIDContextKey, sessionID)
	}
	return ctx
}
