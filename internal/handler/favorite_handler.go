package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/mayumi/kondate/internal/middleware"
	"github.com/mayumi/kondate/internal/model"
)

// FavoriteServiceInterface はお気に入りハンドラーが必要とするサービスインターフェース。
type FavoriteServiceInterface interface {
	// Toggle は指定レシピのお気に入り状態を反転する。
	Toggle(ctx context.Context, email, recipeID, title, image string) (bool, error)
	// List はユーザーのお気に入り一覧を返す。
	List(ctx context.Context, email string) ([]*model.FavoriteItem, error)
}

// FavoriteHandler はお気に入りレシピのHTTPハンドラー。
type FavoriteHandler struct {
	service FavoriteServiceInterface
}

// NewFavoriteHandler はFavoriteHandlerを生成する。
func NewFavoriteHandler(service FavoriteServiceInterface) *FavoriteHandler {
	return &FavoriteHandler{service: service}
}

// favoriteItemResponse はお気に入り1件のAPIレスポンス。
type favoriteItemResponse struct {
	ID        string    `json:"id"`
	RecipeID  string    `json:"recipe_id"`
	Title     string    `json:"title"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
}

// Toggle はお気に入りのトグルを処理する。
// POST /favorite（要ログイン、application/x-www-form-urlencoded: recipe_id, title, image）
func (h *FavoriteHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("フォームの解析に失敗しました"))
		return
	}

	state := middleware.SessionStateFromContext(r.Context())

	added, err := h.service.Toggle(
		r.Context(),
		state.Email,
		r.PostFormValue("recipe_id"),
		r.PostFormValue("title"),
		r.PostFormValue("image"),
	)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{
		"favorited": added,
	})
}

// List はお気に入り一覧を返す。
// GET /allFavourites（要ログイン）
func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	state := middleware.SessionStateFromContext(r.Context())

	items, err := h.service.List(r.Context(), state.Email)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]favoriteItemResponse, len(items))
	for i, item := range items {
		resp[i] = favoriteItemResponse{
			ID:        item.ID,
			RecipeID:  item.RecipeID,
			Title:     item.Title,
			Image:     item.Image,
			CreatedAt: item.CreatedAt,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"favorites": resp,
	})
}
