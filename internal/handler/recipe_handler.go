package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mayumi/kondate/internal/model"
	"github.com/mayumi/kondate/internal/recipe"
)

// defaultSearchLimit は1回の検索で上流に要求するレシピ件数。
const defaultSearchLimit = 12

// RecipeServiceInterface はレシピハンドラーが必要とするサービスインターフェース。
type RecipeServiceInterface interface {
	// SearchByIngredients は食材リストに合うレシピを検索する。
	SearchByIngredients(ctx context.Context, ingredients []string, limit int) ([]recipe.Summary, error)
	// GetDetail はレシピ詳細を取得する。
	GetDetail(ctx context.Context, recipeID int) (*recipe.Detail, error)
}

// RecipeHandler はレシピ検索・詳細のHTTPハンドラー。
type RecipeHandler struct {
	service RecipeServiceInterface
}

// NewRecipeHandler はRecipeHandlerを生成する。
func NewRecipeHandler(service RecipeServiceInterface) *RecipeHandler {
	return &RecipeHandler{service: service}
}

// Search は食材リストからレシピを検索する。
// 食材はリクエストごとにクエリパラメータで受け取り、リクエスト間で共有される
// 状態を持たない。
// GET /search?ingredients=potato,onion（要ログイン）
func (h *RecipeHandler) Search(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("ingredients")

	var ingredients []string
	for _, ing := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(ing); trimmed != "" {
			ingredients = append(ingredients, trimmed)
		}
	}

	results, err := h.service.SearchByIngredients(r.Context(), ingredients, defaultSearchLimit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"recipes": results,
	})
}

// Detail はレシピ詳細を返す。
// GET /recipe/{id}（要ログイン）
func (h *RecipeHandler) Detail(w http.ResponseWriter, r *http.Request) {
	idParam := chi.URLParam(r, "id")
	recipeID, err := strconv.Atoi(idParam)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("レシピIDは数値で指定してください"))
		return
	}

	detail, err := h.service.GetDetail(r.Context(), recipeID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}
