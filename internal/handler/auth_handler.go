package handler

import (
	"context"
	"net/http"

	"github.com/mayumi/kondate/internal/middleware"
	"github.com/mayumi/kondate/internal/model"
)

const sessionCookieName = "session_id"

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Signup は新規ユーザーを作成し、ログイン済みセッションを発行する。
	Signup(ctx context.Context, name, email, password string) (*model.Session, error)
	// Login はメールアドレスとパスワードで認証し、セッションを発行する。
	Login(ctx context.Context, email, password string) (*model.Session, error)
	// Logout はセッションを無条件に破棄する。
	Logout(ctx context.Context, sessionID string)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int    // セッションCookieの有効期間（秒）
	SessionSecret string // セッションCookieのHMAC署名鍵
}

// AuthHandler はサインアップ・ログイン・ログアウトのHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
	}
}

// sessionStateResponse はセッション状態のAPIレスポンス。
type sessionStateResponse struct {
	LoggedIn bool   `json:"loggedin"`
	Username string `json:"username"`
}

// Landing はランディングページの状態を返す。ログイン不問。
// GET /
func (h *AuthHandler) Landing(w http.ResponseWriter, r *http.Request) {
	state := middleware.SessionStateFromContext(r.Context())
	writeJSON(w, http.StatusOK, sessionStateResponse{
		LoggedIn: state.LoggedIn,
		Username: state.Username,
	})
}

// SignupPage はサインアップフォームの表示に必要な状態を返す。
// GET /signup
func (h *AuthHandler) SignupPage(w http.ResponseWriter, r *http.Request) {
	state := middleware.SessionStateFromContext(r.Context())
	writeJSON(w, http.StatusOK, sessionStateResponse{
		LoggedIn: state.LoggedIn,
		Username: state.Username,
	})
}

// Signup はサインアップを処理する。成功時は自動ログインとなり、
// セッションCookieを設定したうえでログイン状態を返す。
// POST /signup（application/x-www-form-urlencoded: name, email, password）
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("フォームの解析に失敗しました"))
		return
	}

	name := r.PostFormValue("name")
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	session, err := h.service.Signup(r.Context(), name, email, password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.setSessionCookie(w, session.ID)
	writeJSON(w, http.StatusCreated, sessionStateResponse{
		LoggedIn: true,
		Username: session.Username,
	})
}

// LoginPage はログインフォームの表示に必要な状態を返す。
// GET /login
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	state := middleware.SessionStateFromContext(r.Context())
	writeJSON(w, http.StatusOK, sessionStateResponse{
		LoggedIn: state.LoggedIn,
		Username: state.Username,
	})
}

// Login はログインを処理する。成功時はセッションCookieを設定する。
// メールアドレス未登録とパスワード誤りは同一の応答になる。
// POST /login（application/x-www-form-urlencoded: email, password）
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("フォームの解析に失敗しました"))
		return
	}

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	session, err := h.service.Login(r.Context(), email, password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.setSessionCookie(w, session.ID)
	writeJSON(w, http.StatusOK, sessionStateResponse{
		LoggedIn: true,
		Username: session.Username,
	})
}

// Logout はセッションを破棄し、ランディングページへリダイレクトする。
// Cookieがない場合やストア削除が失敗した場合も同じ応答になる。
// POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		if sessionID, ok := middleware.VerifySignedSessionID(h.config.SessionSecret, cookie.Value); ok {
			h.service.Logout(r.Context(), sessionID)
		}
	}

	// セッションCookieをクリア
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/", http.StatusFound)
}

// Home はログイン済みユーザーのホーム画面の状態を返す。
// GET /home（要ログイン）
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	state := middleware.SessionStateFromContext(r.Context())
	writeJSON(w, http.StatusOK, sessionStateResponse{
		LoggedIn: state.LoggedIn,
		Username: state.Username,
	})
}

// setSessionCookie はHMAC署名を付与したセッションIDをHTTP Only Cookieとして設定する。
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    middleware.SignSessionID(h.config.SessionSecret, sessionID),
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
