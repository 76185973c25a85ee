// Package favorite はお気に入りレシピ管理のドメインロジックを提供する。
package favorite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mayumi/kondate/internal/model"
	"github.com/mayumi/kondate/internal/repository"
)

// Metrics はお気に入り操作の計測に必要なメトリクスのサブセットを定義する。
type Metrics interface {
	// RecordLedgerWrite はレジャーへの書き込み操作を記録する。
	RecordLedgerWrite(ledger, op string)
}

// Service はお気に入りレシピのサービス層。
// トグル登録と一覧取得のビジネスロジックを提供する。
type Service struct {
	favRepo repository.FavoriteRepository
	metrics Metrics
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(favRepo repository.FavoriteRepository, metrics Metrics) *Service {
	return &Service{
		favRepo: favRepo,
		metrics: metrics,
	}
}

// Toggle は指定レシピのお気に入り状態を反転する。
// 未登録なら登録してtrueを、登録済みなら解除してfalseを返す。
// 同じ操作を2回行うと元の状態に戻る。
func (s *Service) Toggle(ctx context.Context, email, recipeID, title, image string) (bool, error) {
	recipeID = strings.TrimSpace(recipeID)
	if recipeID == "" {
		return false, model.NewValidationError("レシピIDは必須です")
	}

	fav := &model.FavoriteItem{
		ID:        uuid.New().String(),
		Email:     email,
		RecipeID:  recipeID,
		Title:     strings.TrimSpace(title),
		Image:     strings.TrimSpace(image),
		CreatedAt: time.Now(),
	}

	added, err := s.favRepo.Toggle(ctx, fav)
	if err != nil {
		return false, fmt.Errorf("お気に入りの更新に失敗しました: %w", err)
	}

	if added {
		s.metrics.RecordLedgerWrite("favorite", "add")
	} else {
		s.metrics.RecordLedgerWrite("favorite", "remove")
	}
	return added, nil
}

// List はユーザーのお気に入り一覧を登録日時降順で返す。
func (s *Service) List(ctx context.Context, email string) ([]*model.FavoriteItem, error) {
	items, err := s.favRepo.ListByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("お気に入り一覧の取得に失敗しました: %w", err)
	}
	return items, nil
}
