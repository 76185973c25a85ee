package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mayumi/kondate/internal/model"
)

// PostgresShoppingRepo はPostgreSQLを使用した買い物リストリポジトリ。
type PostgresShoppingRepo struct {
	db *sql.DB
}

// NewPostgresShoppingRepo はPostgresShoppingRepoを生成する。
func NewPostgresShoppingRepo(db *sql.DB) *PostgresShoppingRepo {
	return &PostgresShoppingRepo{db: db}
}

// Add は買い物リストに項目を追加する。
// (email, name)が既に存在する場合は何もせずfalseを返す（トグルしない）。
func (r *PostgresShoppingRepo) Add(ctx context.Context, item *model.ShoppingListItem) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO shopping_list_items (id, email, name, quantity, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (email, name) DO NOTHING`,
		item.ID, item.Email, item.Name, item.Quantity, item.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert shopping list item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected == 1, nil
}

// ListByEmail はユーザーの買い物リストを登録日時順で返す。
func (r *PostgresShoppingRepo) ListByEmail(ctx context.Context, email string) ([]*model.ShoppingListItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, email, name, quantity, created_at
		 FROM shopping_list_items
		 WHERE email = $1
		 ORDER BY created_at ASC`,
		email,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list shopping list items: %w", err)
	}
	defer rows.Close()

	var items []*model.ShoppingListItem
	for rows.Next() {
		item := &model.ShoppingListItem{}
		if err := rows.Scan(&item.ID, &item.Email, &item.Name, &item.Quantity, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan shopping list item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shopping list items: %w", err)
	}

	return items, nil
}

// DeleteByID は指定IDの項目を削除する。
// emailで所有者を限定するため、他ユーザーの項目は削除できない。冪等。
func (r *PostgresShoppingRepo) DeleteByID(ctx context.Context, email, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM shopping_list_items WHERE email = $1 AND id = $2`,
		email, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete shopping list item: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ShoppingListRepository = (*PostgresShoppingRepo)(nil)
