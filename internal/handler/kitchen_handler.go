package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/mayumi/kondate/internal/middleware"
	"github.com/mayumi/kondate/internal/model"
)

// KitchenServiceInterface はキッチン在庫ハンドラーが必要とするサービスインターフェース。
type KitchenServiceInterface interface {
	// ApplyBatch は在庫更新操作のバッチを適用し、項目ごとの結果を返す。
	ApplyBatch(ctx context.Context, email string, ops []model.KitchenOp) []model.KitchenOpResult
	// List はユーザーのキッチン在庫一覧を返す。
	List(ctx context.Context, email string) ([]*model.KitchenItem, error)
}

// KitchenHandler はキッチン在庫のHTTPハンドラー。
type KitchenHandler struct {
	service KitchenServiceInterface
}

// NewKitchenHandler はKitchenHandlerを生成する。
func NewKitchenHandler(service KitchenServiceInterface) *KitchenHandler {
	return &KitchenHandler{service: service}
}

// kitchenItemResponse はキッチン在庫1件のAPIレスポンス。
type kitchenItemResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Quantity  string    `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

// kitchenOpResultResponse はバッチ更新1操作の結果のAPIレスポンス。
type kitchenOpResultResponse struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// List は在庫一覧を返す。
// GET /kitchen（要ログイン）
func (h *KitchenHandler) List(w http.ResponseWriter, r *http.Request) {
	state := middleware.SessionStateFromContext(r.Context())

	items, err := h.service.List(r.Context(), state.Email)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]kitchenItemResponse, len(items))
	for i, item := range items {
		resp[i] = kitchenItemResponse{
			ID:        item.ID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UpdatedAt: item.UpdatedAt,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": resp,
	})
}

// Update は在庫のバッチ更新を処理する。
// フォームは name と quantity の繰り返しフィールドをUPSERT対象として対で受け取り、
// remove の繰り返しフィールドを削除対象の品名として受け取る。
// 各操作は独立して成否が決まり、1件の失敗は他を巻き戻さない。
// POST /kitchen（要ログイン、application/x-www-form-urlencoded）
func (h *KitchenHandler) Update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("フォームの解析に失敗しました"))
		return
	}

	names := r.PostForm["name"]
	quantities := r.PostForm["quantity"]
	removes := r.PostForm["remove"]

	if len(names) != len(quantities) {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("nameとquantityの数が一致しません"))
		return
	}

	ops := make([]model.KitchenOp, 0, len(names)+len(removes))
	for i, name := range names {
		ops = append(ops, model.KitchenOp{Name: name, Quantity: quantities[i]})
	}
	for _, name := range removes {
		ops = append(ops, model.KitchenOp{Name: name, Delete: true})
	}

	state := middleware.SessionStateFromContext(r.Context())
	results := h.service.ApplyBatch(r.Context(), state.Email, ops)

	resp := make([]kitchenOpResultResponse, len(results))
	allOK := true
	for i, res := range results {
		resp[i] = kitchenOpResultResponse{Name: res.Name, OK: res.Err == nil}
		if res.Err != nil {
			allOK = false
			resp[i].Error = res.Err.Error()
		}
	}

	// 一部失敗は207で返し、フロントエンドが項目ごとに再試行できるようにする
	status := http.StatusOK
	if !allOK {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, map[string]any{
		"results": resp,
	})
}
