package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mayumi/kondate/internal/model"
)

// PostgresKitchenRepo はPostgreSQLを使用したキッチン在庫リポジトリ。
type PostgresKitchenRepo struct {
	db *sql.DB
}

// NewPostgresKitchenRepo はPostgresKitchenRepoを生成する。
func NewPostgresKitchenRepo(db *sql.DB) *PostgresKitchenRepo {
	return &PostgresKitchenRepo{db: db}
}

// Upsert は(email, name)をキーに在庫項目をUPSERTする。
// UNIQUE(email, name)制約を利用したINSERT ON CONFLICTで実装する。
func (r *PostgresKitchenRepo) Upsert(ctx context.Context, item *model.KitchenItem) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO kitchen_items (id, email, name, quantity, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (email, name) DO UPDATE SET
		   quantity = EXCLUDED.quantity,
		   updated_at = EXCLUDED.updated_at`,
		item.ID, item.Email, item.Name, item.Quantity, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert kitchen item: %w", err)
	}
	return nil
}

// DeleteByName は(email, name)の項目を削除する。存在しない項目でもエラーにならない。
func (r *PostgresKitchenRepo) DeleteByName(ctx context.Context, email, name string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM kitchen_items WHERE email = $1 AND name = $2`,
		email, name,
	)
	if err != nil {
		return fmt.Errorf("failed to delete kitchen item: %w", err)
	}
	return nil
}

// ListByEmail はユーザーのキッチン在庫一覧を名前順で返す。
func (r *PostgresKitchenRepo) ListByEmail(ctx context.Context, email string) ([]*model.KitchenItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, email, name, quantity, created_at, updated_at
		 FROM kitchen_items
		 WHERE email = $1
		 ORDER BY name ASC`,
		email,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list kitchen items: %w", err)
	}
	defer rows.Close()

	var items []*model.KitchenItem
	for rows.Next() {
		item := &model.KitchenItem{}
		if err := rows.Scan(&item.ID, &item.Email, &item.Name, &item.Quantity, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan kitchen item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate kitchen items: %w", err)
	}

	return items, nil
}

// compile-time interface check
var _ KitchenRepository = (*PostgresKitchenRepo)(nil)
