package recipe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mayumi/kondate/internal/model"
	"github.com/mayumi/kondate/internal/security"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// recordingMetrics は呼び出された計測をスレッドセーフに記録する。
type recordingMetrics struct {
	mu       sync.Mutex
	requests []recordedRequest
}

type recordedRequest struct {
	endpoint string
	status   int
}

func (m *recordingMetrics) RecordUpstreamRequest(endpoint string, statusCode int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, recordedRequest{endpoint: endpoint, status: statusCode})
}

func newTestClient(server *httptest.Server) (*Client, *recordingMetrics) {
	var buf bytes.Buffer
	metrics := &recordingMetrics{}
	c := NewClient(server.Client(), newTestLogger(&buf), security.NewRecipeSanitizer(), metrics, "test-api-key", server.URL)
	return c, metrics
}

func TestClient_SearchByIngredients(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/recipes/findByIngredients" {
			t.Errorf("パス = %s, want /recipes/findByIngredients", r.URL.Path)
		}
		if got := r.URL.Query().Get("ingredients"); got != "potato,onion" {
			t.Errorf("ingredients = %q, want %q", got, "potato,onion")
		}
		if got := r.URL.Query().Get("apiKey"); got != "test-api-key" {
			t.Errorf("apiKey = %q, want %q", got, "test-api-key")
		}
		if got := r.URL.Query().Get("number"); got != "10" {
			t.Errorf("number = %q, want %q", got, "10")
		}

		resp := []Summary{
			{ID: 101, Title: "肉じゃが", Image: "https://img.example.com/101.jpg", UsedIngredientCount: 2, MissedIngredientCount: 3},
			{ID: 102, Title: "ポテトサラダ", Image: "https://img.example.com/102.jpg", UsedIngredientCount: 1, MissedIngredientCount: 2},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	c, metrics := newTestClient(server)

	results, err := c.SearchByIngredients(context.Background(), []string{"potato", "onion"}, 10)
	if err != nil {
		t.Fatalf("SearchByIngredients がエラーを返した: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("結果数 = %d, want 2", len(results))
	}
	if results[0].ID != 101 || results[0].Title != "肉じゃが" {
		t.Errorf("results[0] = %+v", results[0])
	}

	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	if len(metrics.requests) != 1 || metrics.requests[0].status != http.StatusOK {
		t.Errorf("メトリクス記録 = %+v, want 1件のstatus 200", metrics.requests)
	}
}

func TestClient_SearchByIngredients_EmptyList(t *testing.T) {
	// 空の食材リストでは上流を呼ばない
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("空の食材リストで上流APIが呼ばれた")
	}))
	defer server.Close()

	c, _ := newTestClient(server)

	results, err := c.SearchByIngredients(context.Background(), nil, 10)
	if err != nil {
		t.Fatalf("SearchByIngredients がエラーを返した: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("結果数 = %d, want 0", len(results))
	}
}

func TestClient_SearchByIngredients_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer server.Close()

	c, _ := newTestClient(server)

	_, err := c.SearchByIngredients(context.Background(), []string{"potato"}, 10)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeRecipeFetchFailed {
		t.Errorf("expected %s, got %v", model.ErrCodeRecipeFetchFailed, err)
	}
}

func TestClient_GetDetail_MergesThreeResources(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/recipes/101/information":
			json.NewEncoder(w).Encode(recipeInformation{
				ID: 101, Title: "肉じゃが",
				Image:   "https://img.example.com/101.jpg",
				Summary: `定番の家庭料理。<b>30分</b>で完成。<script>alert(1)</script>`,
				ReadyInMinutes: 30, Servings: 4,
				SourceURL: "https://example.com/recipes/101",
			})
		case "/recipes/101/analyzedInstructions":
			json.NewEncoder(w).Encode([]analyzedInstruction{
				{Name: "", Steps: []InstructionStep{{Number: 1, Step: "じゃがいもを切る"}, {Number: 2, Step: "煮込む"}}},
				{Name: "仕上げ", Steps: []InstructionStep{{Number: 1, Step: "盛り付ける"}}},
			})
		case "/recipes/101/nutritionWidget.json":
			json.NewEncoder(w).Encode(Nutrition{Calories: "450 kcal", Carbs: "52g", Fat: "18g", Protein: "15g"})
		default:
			t.Errorf("想定外のパス: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c, metrics := newTestClient(server)

	detail, err := c.GetDetail(context.Background(), 101)
	if err != nil {
		t.Fatalf("GetDetail がエラーを返した: %v", err)
	}

	if detail.ID != 101 || detail.Title != "肉じゃが" {
		t.Errorf("detail = %+v", detail)
	}
	// 手順は複数ブロックが1本の列に平坦化される
	if len(detail.Instructions) != 3 {
		t.Errorf("手順数 = %d, want 3", len(detail.Instructions))
	}
	if detail.Nutrition.Calories != "450 kcal" {
		t.Errorf("Calories = %q, want %q", detail.Nutrition.Calories, "450 kcal")
	}
	// 概要文はサニタイズされる
	if strings.Contains(detail.Summary, "<script") {
		t.Errorf("Summary にscriptタグが残っている: %q", detail.Summary)
	}
	if !strings.Contains(detail.Summary, "<b>30分</b>") {
		t.Errorf("Summary の許可タグが失われた: %q", detail.Summary)
	}

	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	if len(metrics.requests) != 3 {
		t.Errorf("メトリクス記録数 = %d, want 3", len(metrics.requests))
	}
}

func TestClient_GetDetail_PartialFailure(t *testing.T) {
	// 3リソース中1つの失敗が全体の失敗になる
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/recipes/101/information":
			json.NewEncoder(w).Encode(recipeInformation{ID: 101, Title: "肉じゃが"})
		case "/recipes/101/analyzedInstructions":
			w.WriteHeader(http.StatusInternalServerError)
		case "/recipes/101/nutritionWidget.json":
			json.NewEncoder(w).Encode(Nutrition{Calories: "450 kcal"})
		}
	}))
	defer server.Close()

	c, _ := newTestClient(server)

	_, err := c.GetDetail(context.Background(), 101)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeRecipeFetchFailed {
		t.Errorf("expected %s, got %v", model.ErrCodeRecipeFetchFailed, err)
	}
}

func TestClient_GetDetail_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c, _ := newTestClient(server)

	_, err := c.GetDetail(context.Background(), 9999)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeRecipeNotFound {
		t.Errorf("expected %s, got %v", model.ErrCodeRecipeNotFound, err)
	}
}
