package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mayumi/kondate/internal/middleware"
	"github.com/mayumi/kondate/internal/model"
)

// Pinger はヘルスチェックに必要なデータベース接続のインターフェース。
// *sql.DB がそのまま満たす。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	SessionStore      middleware.SessionStore
	CORSAllowedOrigin string
	CSRFConfig        middleware.CSRFConfig
	RateLimiter       *middleware.RateLimiter
	MetricsHandler    http.Handler

	// ヘルスチェック
	DB Pinger

	// サービス層
	AuthService     AuthServiceInterface
	AuthConfig      AuthHandlerConfig
	ResetService    ResetServiceInterface
	RecipeService   RecipeServiceInterface
	FavoriteService FavoriteServiceInterface
	ShoppingService ShoppingServiceInterface
	KitchenService  KitchenServiceInterface
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Recovery → Logging → Session →
//	（要ログインルートのみ）RequireLogin → RateLimit(General) → CSRF
//
// 認証系エンドポイント（/signup, /login, /forgotpassword のPOST）には
// IP単位のレート制限を追加する。未ログインでの要ログインルートへの
// アクセスはハンドラー到達前に302で / へ誘導される。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewSessionMiddleware(deps.SessionStore, deps.AuthConfig.SessionSecret))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	resetHandler := NewResetHandler(deps.ResetService)
	recipeHandler := NewRecipeHandler(deps.RecipeService)
	favoriteHandler := NewFavoriteHandler(deps.FavoriteService)
	shoppingHandler := NewShoppingHandler(deps.ShoppingService)
	kitchenHandler := NewKitchenHandler(deps.KitchenService)

	credentialLimit := deps.RateLimiter.CredentialMiddleware()

	// --- ログイン不要のルート ---

	r.Get("/", authHandler.Landing)
	r.Get("/signup", authHandler.SignupPage)
	r.With(credentialLimit).Post("/signup", authHandler.Signup)
	r.Get("/login", authHandler.LoginPage)
	r.With(credentialLimit).Post("/login", authHandler.Login)
	r.Post("/logout", authHandler.Logout)

	// パスワード再設定フロー
	r.Get("/forgotpassword", resetHandler.ForgotPasswordPage)
	r.With(credentialLimit).Post("/forgotpassword", resetHandler.ForgotPassword)
	r.Get("/reset-password/{id}/{token}", resetHandler.VerifyResetToken)
	r.Post("/reset-password/{id}/{token}", resetHandler.CompleteReset)

	// CSRFトークン取得
	r.Get("/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig).ServeHTTP)

	// ヘルスチェックとメトリクス
	r.Get("/healthz", healthzHandler(deps.DB))
	r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)

	// --- 要ログインのルート ---
	// ミドルウェアスタック: RequireLogin → RateLimit(General) → CSRF
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireLogin)
		r.Use(deps.RateLimiter.GeneralMiddleware())
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

		r.Get("/home", authHandler.Home)
		r.Get("/search", recipeHandler.Search)
		r.Get("/recipe/{id}", recipeHandler.Detail)

		r.Post("/favorite", favoriteHandler.Toggle)
		r.Get("/allFavourites", favoriteHandler.List)

		r.Post("/create-shoppinglist", shoppingHandler.Add)
		r.Get("/shoppinglist", shoppingHandler.List)
		r.Post("/shoppinglist/delete/{id}", shoppingHandler.Delete)

		r.Get("/kitchen", kitchenHandler.List)
		r.Post("/kitchen", kitchenHandler.Update)
	})

	// 未定義パスは統一フォーマットの404を返す
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeAPIErrorResponse(w, http.StatusNotFound, &model.APIError{
			Code:     "NOT_FOUND",
			Message:  "ページが見つかりません。",
			Category: "system",
			Action:   "URLを確認してください。",
		})
	})

	return r
}

// healthzHandler はデータベース接続を確認するヘルスチェックハンドラーを返す。
func healthzHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			slog.Error("ヘルスチェックに失敗しました", slog.String("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	}
}
