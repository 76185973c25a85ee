package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mayumi/kondate/internal/middleware"
	"github.com/mayumi/kondate/internal/model"
)

// ShoppingServiceInterface は買い物リストハンドラーが必要とするサービスインターフェース。
type ShoppingServiceInterface interface {
	// Add は買い物リストに項目を追加する。同名項目の再追加は無視される。
	Add(ctx context.Context, email, name, quantity string) (bool, error)
	// List はユーザーの買い物リストを返す。
	List(ctx context.Context, email string) ([]*model.ShoppingListItem, error)
	// Delete は指定IDの項目を削除する。
	Delete(ctx context.Context, email, id string) error
}

// ShoppingHandler は買い物リストのHTTPハンドラー。
type ShoppingHandler struct {
	service ShoppingServiceInterface
}

// NewShoppingHandler はShoppingHandlerを生成する。
func NewShoppingHandler(service ShoppingServiceInterface) *ShoppingHandler {
	return &ShoppingHandler{service: service}
}

// shoppingItemResponse は買い物リスト1件のAPIレスポンス。
type shoppingItemResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Quantity  string    `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// Add は項目の追加を処理する。
// POST /create-shoppinglist（要ログイン、application/x-www-form-urlencoded: name, quantity）
func (h *ShoppingHandler) Add(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("フォームの解析に失敗しました"))
		return
	}

	state := middleware.SessionStateFromContext(r.Context())

	added, err := h.service.Add(
		r.Context(),
		state.Email,
		r.PostFormValue("name"),
		r.PostFormValue("quantity"),
	)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	status := http.StatusCreated
	if !added {
		// 同名項目が既に存在する場合
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]bool{
		"added": added,
	})
}

// List は買い物リストを返す。
// GET /shoppinglist（要ログイン）
func (h *ShoppingHandler) List(w http.ResponseWriter, r *http.Request) {
	state := middleware.SessionStateFromContext(r.Context())

	items, err := h.service.List(r.Context(), state.Email)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]shoppingItemResponse, len(items))
	for i, item := range items {
		resp[i] = shoppingItemResponse{
			ID:        item.ID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			CreatedAt: item.CreatedAt,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": resp,
	})
}

// Delete は項目の削除を処理する。冪等。
// POST /shoppinglist/delete/{id}（要ログイン）
func (h *ShoppingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	state := middleware.SessionStateFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), state.Email, id); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "削除しました。",
	})
}
