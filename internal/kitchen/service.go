// Package kitchen はキッチン在庫管理のドメインロジックを提供する。
package kitchen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mayumi/kondate/internal/model"
	"github.com/mayumi/kondate/internal/repository"
)

// Metrics はキッチン在庫操作の計測に必要なメトリクスのサブセットを定義する。
type Metrics interface {
	// RecordLedgerWrite はレジャーへの書き込み操作を記録する。
	RecordLedgerWrite(ledger, op string)
}

// Service はキッチン在庫のサービス層。
// バッチ更新と一覧取得のビジネスロジックを提供する。
type Service struct {
	kitchenRepo repository.KitchenRepository
	metrics     Metrics
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(kitchenRepo repository.KitchenRepository, metrics Metrics) *Service {
	return &Service{
		kitchenRepo: kitchenRepo,
		metrics:     metrics,
	}
}

// ApplyBatch は在庫更新操作のバッチを適用する。
// 各操作は独立して実行され、1件の失敗は他の操作をロールバックしない。
// 戻り値は入力と同じ順序で各操作の結果を返す。
func (s *Service) ApplyBatch(ctx context.Context, email string, ops []model.KitchenOp) []model.KitchenOpResult {
	results := make([]model.KitchenOpResult, len(ops))

	for i, op := range ops {
		name := strings.TrimSpace(op.Name)
		results[i].Name = name

		if name == "" {
			results[i].Err = model.NewValidationError("品名は必須です")
			continue
		}

		if op.Delete {
			if err := s.kitchenRepo.DeleteByName(ctx, email, name); err != nil {
				results[i].Err = fmt.Errorf("在庫の削除に失敗しました: %w", err)
				continue
			}
			s.metrics.RecordLedgerWrite("kitchen", "delete")
			continue
		}

		now := time.Now()
		item := &model.KitchenItem{
			ID:        uuid.New().String(),
			Email:     email,
			Name:      name,
			Quantity:  strings.TrimSpace(op.Quantity),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.kitchenRepo.Upsert(ctx, item); err != nil {
			results[i].Err = fmt.Errorf("在庫の更新に失敗しました: %w", err)
			continue
		}
		s.metrics.RecordLedgerWrite("kitchen", "upsert")
	}

	return results
}

// List はユーザーのキッチン在庫一覧を名前順で返す。
func (s *Service) List(ctx context.Context, email string) ([]*model.KitchenItem, error) {
	items, err := s.kitchenRepo.ListByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("在庫一覧の取得に失敗しました: %w", err)
	}
	return items, nil
}
