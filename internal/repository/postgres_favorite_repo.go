package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mayumi/kondate/internal/model"
)

// PostgresFavoriteRepo はPostgreSQLを使用したお気に入りリポジトリ。
type PostgresFavoriteRepo struct {
	db *sql.DB
}

// NewPostgresFavoriteRepo はPostgresFavoriteRepoを生成する。
func NewPostgresFavoriteRepo(db *sql.DB) *PostgresFavoriteRepo {
	return &PostgresFavoriteRepo{db: db}
}

// Toggle は(email, recipe_id)のお気に入りをトグルする。
// UNIQUE(email, recipe_id)制約を利用したINSERT ON CONFLICT DO NOTHINGで
// 挿入を試み、競合した場合（登録済み）は削除する。
// 2回連続で呼ぶと元の状態に戻る。
func (r *PostgresFavoriteRepo) Toggle(ctx context.Context, fav *model.FavoriteItem) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO favorites (id, email, recipe_id, title, image, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (email, recipe_id) DO NOTHING`,
		fav.ID, fav.Email, fav.RecipeID, fav.Title, fav.Image, fav.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert favorite: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 1 {
		// 未登録だったので追加された
		return true, nil
	}

	// 登録済みだったので解除する
	_, err = r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE email = $1 AND recipe_id = $2`,
		fav.Email, fav.RecipeID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete favorite: %w", err)
	}
	return false, nil
}

// ListByEmail はユーザーのお気に入り一覧を登録日時降順で返す。
func (r *PostgresFavoriteRepo) ListByEmail(ctx context.Context, email string) ([]*model.FavoriteItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, email, recipe_id, title, image, created_at
		 FROM favorites
		 WHERE email = $1
		 ORDER BY created_at DESC`,
		email,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	var favorites []*model.FavoriteItem
	for rows.Next() {
		fav := &model.FavoriteItem{}
		if err := rows.Scan(&fav.ID, &fav.Email, &fav.RecipeID, &fav.Title, &fav.Image, &fav.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		favorites = append(favorites, fav)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate favorites: %w", err)
	}

	return favorites, nil
}

// compile-time interface check
var _ FavoriteRepository = (*PostgresFavoriteRepo)(nil)
