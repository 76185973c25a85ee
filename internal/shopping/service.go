// Package shopping は買い物リスト管理のドメインロジックを提供する。
package shopping

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mayumi/kondate/internal/model"
	"github.com/mayumi/kondate/internal/repository"
)

// Metrics は買い物リスト操作の計測に必要なメトリクスのサブセットを定義する。
type Metrics interface {
	// RecordLedgerWrite はレジャーへの書き込み操作を記録する。
	RecordLedgerWrite(ledger, op string)
}

// Service は買い物リストのサービス層。
// 項目の追加・一覧取得・削除のビジネスロジックを提供する。
type Service struct {
	listRepo repository.ShoppingListRepository
	metrics  Metrics
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(listRepo repository.ShoppingListRepository, metrics Metrics) *Service {
	return &Service{
		listRepo: listRepo,
		metrics:  metrics,
	}
}

// Add は買い物リストに項目を追加する。
// 同名の項目が既に存在する場合は何も変更せずfalseを返す（トグルしない）。
func (s *Service) Add(ctx context.Context, email, name, quantity string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, model.NewValidationError("品名は必須です")
	}

	item := &model.ShoppingListItem{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      name,
		Quantity:  strings.TrimSpace(quantity),
		CreatedAt: time.Now(),
	}

	added, err := s.listRepo.Add(ctx, item)
	if err != nil {
		return false, fmt.Errorf("買い物リストへの追加に失敗しました: %w", err)
	}

	if added {
		s.metrics.RecordLedgerWrite("shopping_list", "add")
	}
	return added, nil
}

// List はユーザーの買い物リストを登録日時順で返す。
func (s *Service) List(ctx context.Context, email string) ([]*model.ShoppingListItem, error) {
	items, err := s.listRepo.ListByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("買い物リストの取得に失敗しました: %w", err)
	}
	return items, nil
}

// Delete は指定IDの項目を削除する。所有者以外の項目には作用しない。冪等。
func (s *Service) Delete(ctx context.Context, email, id string) error {
	if strings.TrimSpace(id) == "" {
		return model.NewValidationError("項目IDは必須です")
	}

	if err := s.listRepo.DeleteByID(ctx, email, id); err != nil {
		return fmt.Errorf("買い物リストからの削除に失敗しました: %w", err)
	}

	s.metrics.RecordLedgerWrite("shopping_list", "delete")
	return nil
}
