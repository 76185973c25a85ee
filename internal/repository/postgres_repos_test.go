package repository

import (
	"testing"
)

// 各Postgresリポジトリが対応するインターフェースを満たすことを検証
func TestPostgresRepos_ImplementInterfaces(t *testing.T) {
	var _ UserRepository = (*PostgresUserRepo)(nil)
	var _ SessionRepository = (*PostgresSessionRepo)(nil)
	var _ FavoriteRepository = (*PostgresFavoriteRepo)(nil)
	var _ ShoppingListRepository = (*PostgresShoppingRepo)(nil)
	var _ KitchenRepository = (*PostgresKitchenRepo)(nil)
}

// 各コンストラクタが正しく初期化されることを検証
func TestNewPostgresRepos_Initialize(t *testing.T) {
	if NewPostgresUserRepo(nil) == nil {
		t.Error("expected non-nil user repo")
	}
	if NewPostgresSessionRepo(nil) == nil {
		t.Error("expected non-nil session repo")
	}
	if NewPostgresFavoriteRepo(nil) == nil {
		t.Error("expected non-nil favorite repo")
	}
	if NewPostgresShoppingRepo(nil) == nil {
		t.Error("expected non-nil shopping repo")
	}
	if NewPostgresKitchenRepo(nil) == nil {
		t.Error("expected non-nil kitchen repo")
	}
}
