package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mayumi/kondate/internal/model"
)

// ResetServiceInterface はパスワード再設定ハンドラーが必要とするサービスインターフェース。
type ResetServiceInterface interface {
	// Request は再設定リンクをメールで送付する。
	// メールアドレスの登録有無は応答から判別できない。
	Request(ctx context.Context, email string) error
	// Verify はリンク中のトークンを検証し、対象ユーザーを返す。
	Verify(ctx context.Context, userID, token string) (*model.User, error)
	// Complete はトークンを再検証し、パスワードを更新する。
	Complete(ctx context.Context, userID, token, newPassword, confirmPassword string) error
}

// ResetHandler はパスワード再設定フローのHTTPハンドラー。
type ResetHandler struct {
	service ResetServiceInterface
}

// NewResetHandler はResetHandlerを生成する。
func NewResetHandler(service ResetServiceInterface) *ResetHandler {
	return &ResetHandler{service: service}
}

// ForgotPasswordPage は再設定要求フォームの表示に必要な状態を返す。
// GET /forgotpassword
func (h *ResetHandler) ForgotPasswordPage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "登録済みのメールアドレスを入力してください。",
	})
}

// ForgotPassword は再設定リンクの送付を要求する。
// メールアドレスが登録済みかどうかにかかわらず同じ応答を返す（列挙攻撃の防止）。
// POST /forgotpassword（application/x-www-form-urlencoded: email）
func (h *ResetHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("フォームの解析に失敗しました"))
		return
	}

	email := r.PostFormValue("email")

	if err := h.service.Request(r.Context(), email); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "登録済みのメールアドレスであれば、再設定リンクを送信しました。メールをご確認ください。",
	})
}

// VerifyResetToken は再設定リンクの有効性を確認する。
// 再設定フォームの表示前にフロントエンドから呼ばれる。
// GET /reset-password/{id}/{token}
func (h *ResetHandler) VerifyResetToken(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	token := chi.URLParam(r, "token")

	user, err := h.service.Verify(r.Context(), userID, token)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"email": user.Email,
	})
}

// CompleteReset は新しいパスワードを設定する。
// トークンはここで再検証されるため、検証後に失効したリンクでは失敗する。
// POST /reset-password/{id}/{token}
// （application/x-www-form-urlencoded: password, confirm_password）
func (h *ResetHandler) CompleteReset(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	token := chi.URLParam(r, "token")

	if err := r.ParseForm(); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("フォームの解析に失敗しました"))
		return
	}

	password := r.PostFormValue("password")
	confirm := r.PostFormValue("confirm_password")

	if err := h.service.Complete(r.Context(), userID, token, password, confirm); err != nil {
		handleServiceError(w, err)
		return
	}

	// 全セッションが破棄されているため、再ログインが必要になる
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "パスワードを再設定しました。新しいパスワードでログインしてください。",
	})
}
