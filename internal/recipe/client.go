// Package recipe は外部レシピAPI連携機能を提供する。
// 食材からのレシピ検索とレシピ詳細の取得を含む。
package recipe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mayumi/kondate/internal/model"
	"github.com/mayumi/kondate/internal/security"
)

// Metrics はレシピAPI呼び出しの計測に必要なメトリクスのサブセットを定義する。
type Metrics interface {
	// RecordUpstreamRequest は上流APIへのリクエスト結果を記録する。
	RecordUpstreamRequest(endpoint string, statusCode int, duration time.Duration)
}

// Summary はレシピ検索結果の1件を表す。
type Summary struct {
	ID                    int    `json:"id"`
	Title                 string `json:"title"`
	Image                 string `json:"image"`
	UsedIngredientCount   int    `json:"usedIngredientCount"`
	MissedIngredientCount int    `json:"missedIngredientCount"`
}

// InstructionStep は調理手順の1ステップを表す。
type InstructionStep struct {
	Number int    `json:"number"`
	Step   string `json:"step"`
}

// Nutrition はレシピ1人前の主要な栄養情報を表す。
// 上流APIは数値を単位付き文字列で返すためそのまま保持する。
type Nutrition struct {
	Calories string `json:"calories"`
	Carbs    string `json:"carbs"`
	Fat      string `json:"fat"`
	Protein  string `json:"protein"`
}

// Detail はレシピ詳細を表す。情報・手順・栄養の3リソースを統合したもの。
type Detail struct {
	ID             int               `json:"id"`
	Title          string            `json:"title"`
	Image          string            `json:"image"`
	Summary        string            `json:"summary"`
	ReadyInMinutes int               `json:"readyInMinutes"`
	Servings       int               `json:"servings"`
	SourceURL      string            `json:"sourceUrl"`
	Instructions   []InstructionStep `json:"instructions"`
	Nutrition      Nutrition         `json:"nutrition"`
}

// Client は外部レシピAPIのクライアント。
// APIキーはクエリパラメータで送信する。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	sanitizer  security.RecipeSanitizerService
	metrics    Metrics
	apiKey     string
	baseURL    string // テスト用にエンドポイントを差し替え可能
}

// NewClient はClient の新しいインスタンスを生成する。
func NewClient(httpClient *http.Client, logger *slog.Logger, sanitizer security.RecipeSanitizerService, metrics Metrics, apiKey, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		sanitizer:  sanitizer,
		metrics:    metrics,
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// SearchByIngredients は食材リストに合うレシピを検索する。
// 空の食材リストには空の結果を返し、上流APIを呼ばない。
func (c *Client) SearchByIngredients(ctx context.Context, ingredients []string, limit int) ([]Summary, error) {
	if len(ingredients) == 0 {
		return []Summary{}, nil
	}

	q := url.Values{}
	q.Set("ingredients", strings.Join(ingredients, ","))
	q.Set("number", strconv.Itoa(limit))

	body, err := c.get(ctx, "/recipes/findByIngredients", q)
	if err != nil {
		return nil, err
	}

	var results []Summary
	if err := json.Unmarshal(body, &results); err != nil {
		c.logger.Error("レシピ検索レスポンスのパースに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, model.NewRecipeFetchFailedError()
	}
	return results, nil
}

// GetDetail はレシピ詳細を取得する。
// 情報・調理手順・栄養情報の3リソースを並行取得し、1つの構造体に統合する。
// いずれかの取得に失敗した場合は失敗を集約してエラーを返す。
func (c *Client) GetDetail(ctx context.Context, recipeID int) (*Detail, error) {
	var (
		wg           sync.WaitGroup
		info         recipeInformation
		instructions []InstructionStep
		nutrition    Nutrition
		errInfo      error
		errInstr     error
		errNutr      error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		info, errInfo = c.getInformation(ctx, recipeID)
	}()
	go func() {
		defer wg.Done()
		instructions, errInstr = c.getInstructions(ctx, recipeID)
	}()
	go func() {
		defer wg.Done()
		nutrition, errNutr = c.getNutrition(ctx, recipeID)
	}()
	wg.Wait()

	for _, err := range []error{errInfo, errInstr, errNutr} {
		if err != nil {
			return nil, err
		}
	}

	return &Detail{
		ID:             info.ID,
		Title:          info.Title,
		Image:          info.Image,
		Summary:        c.sanitizer.Sanitize(info.Summary),
		ReadyInMinutes: info.ReadyInMinutes,
		Servings:       info.Servings,
		SourceURL:      info.SourceURL,
		Instructions:   instructions,
		Nutrition:      nutrition,
	}, nil
}

// recipeInformation は上流の情報エンドポイントのレスポンス。
type recipeInformation struct {
	ID             int    `json:"id"`
	Title          string `json:"title"`
	Image          string `json:"image"`
	Summary        string `json:"summary"`
	ReadyInMinutes int    `json:"readyInMinutes"`
	Servings       int    `json:"servings"`
	SourceURL      string `json:"sourceUrl"`
}

func (c *Client) getInformation(ctx context.Context, recipeID int) (recipeInformation, error) {
	var info recipeInformation
	body, err := c.get(ctx, fmt.Sprintf("/recipes/%d/information", recipeID), nil)
	if err != nil {
		return info, err
	}
	if err := json.Unmarshal(body, &info); err != nil {
		c.logger.Error("レシピ情報レスポンスのパースに失敗しました",
			slog.String("error", err.Error()),
			slog.Int("recipe_id", recipeID),
		)
		return info, model.NewRecipeFetchFailedError()
	}
	return info, nil
}

// analyzedInstruction は上流の手順エンドポイントのレスポンス要素。
// 複数の手順ブロックを1本のステップ列に平坦化して使う。
type analyzedInstruction struct {
	Name  string            `json:"name"`
	Steps []InstructionStep `json:"steps"`
}

func (c *Client) getInstructions(ctx context.Context, recipeID int) ([]InstructionStep, error) {
	body, err := c.get(ctx, fmt.Sprintf("/recipes/%d/analyzedInstructions", recipeID), nil)
	if err != nil {
		return nil, err
	}
	var blocks []analyzedInstruction
	if err := json.Unmarshal(body, &blocks); err != nil {
		c.logger.Error("調理手順レスポンスのパースに失敗しました",
			slog.String("error", err.Error()),
			slog.Int("recipe_id", recipeID),
		)
		return nil, model.NewRecipeFetchFailedError()
	}
	steps := make([]InstructionStep, 0)
	for _, b := range blocks {
		steps = append(steps, b.Steps...)
	}
	return steps, nil
}

func (c *Client) getNutrition(ctx context.Context, recipeID int) (Nutrition, error) {
	var n Nutrition
	body, err := c.get(ctx, fmt.Sprintf("/recipes/%d/nutritionWidget.json", recipeID), nil)
	if err != nil {
		return n, err
	}
	if err := json.Unmarshal(body, &n); err != nil {
		c.logger.Error("栄養情報レスポンスのパースに失敗しました",
			slog.String("error", err.Error()),
			slog.Int("recipe_id", recipeID),
		)
		return n, model.NewRecipeFetchFailedError()
	}
	return n, nil
}

// get は上流APIへのGETリクエストを実行し、レスポンスボディを返す。
// APIキーの付与・ステータス判定・メトリクス記録をまとめて行う。
// 404はRecipeNotFound、その他の失敗はRecipeFetchFailedに変換する。
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	reqURL, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("エンドポイントURLのパースに失敗しました: %w", err)
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("apiKey", c.apiKey)
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("User-Agent", "Kondate/1.0")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordUpstreamRequest(path, 0, time.Since(start))
		c.logger.Error("レシピAPIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
			slog.String("path", path),
		)
		return nil, model.NewRecipeFetchFailedError()
	}
	defer resp.Body.Close()

	c.metrics.RecordUpstreamRequest(path, resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusNotFound {
		// パスは /recipes/{id}/... の形なのでid部分を切り出す
		id := strings.SplitN(strings.TrimPrefix(path, "/recipes/"), "/", 2)[0]
		return nil, model.NewRecipeNotFoundError(id)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("レシピAPIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
			slog.String("path", path),
		)
		return nil, model.NewRecipeFetchFailedError()
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("レスポンスボディの読み取りに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, model.NewRecipeFetchFailedError()
	}
	return body, nil
}
