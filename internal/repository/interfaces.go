// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/mayumi/kondate/internal/model"
)

// ErrDuplicateEmail は登録済みメールアドレスでのユーザー作成を表すエラー。
// ストアレベルの一意制約違反から変換される。
var ErrDuplicateEmail = errors.New("email address is already in use")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。
	// メールアドレスが登録済みの場合はErrDuplicateEmailを返す。
	// 一意性はストアの一意インデックスで保証されるため、
	// 同時実行でもちょうど1件だけ成功する。
	Create(ctx context.Context, user *model.User) error

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// UpdatePasswordHash は指定ユーザーのパスワードハッシュを上書きする。
	// この操作により当該ユーザーの発行済みリセットトークンは暗黙に無効化される
	// （ハッシュが署名鍵の一部であるため）。
	UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error
}

// SessionRepository はセッションデータの永続化インターフェース。
// 期限切れの判定は読み取り時に行い、バックグラウンドの掃除は正しさに不要。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error

	// FindByID は指定IDのセッションを取得する。
	// 見つからない場合および期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)

	// Touch はセッションのlast_seen_atを更新する。有効期限は延長しない。
	Touch(ctx context.Context, id string) error

	// DeleteByID は指定IDのセッションを削除する。冪等。
	DeleteByID(ctx context.Context, id string) error

	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// FavoriteRepository はお気に入りレシピの永続化インターフェース。
type FavoriteRepository interface {
	// Toggle は(email, recipe_id)のお気に入りをトグルする。
	// 存在すれば削除してfalseを、存在しなければ挿入してtrueを返す。
	Toggle(ctx context.Context, fav *model.FavoriteItem) (added bool, err error)

	// ListByEmail はユーザーのお気に入り一覧を登録日時降順で返す。
	ListByEmail(ctx context.Context, email string) ([]*model.FavoriteItem, error)
}

// ShoppingListRepository は買い物リストの永続化インターフェース。
type ShoppingListRepository interface {
	// Add は項目を追加する。(email, name)が既に存在する場合は何もせずfalseを返す。
	Add(ctx context.Context, item *model.ShoppingListItem) (added bool, err error)

	// ListByEmail はユーザーの買い物リストを登録日時順で返す。
	ListByEmail(ctx context.Context, email string) ([]*model.ShoppingListItem, error)

	// DeleteByID は指定IDの項目を削除する。emailで所有者を限定する。冪等。
	DeleteByID(ctx context.Context, email, id string) error
}

// KitchenRepository はキッチン在庫の永続化インターフェース。
type KitchenRepository interface {
	// Upsert は(email, name)をキーに項目をUPSERTする。
	Upsert(ctx context.Context, item *model.KitchenItem) error

	// DeleteByName は(email, name)の項目を削除する。冪等。
	DeleteByName(ctx context.Context, email, name string) error

	// ListByEmail はユーザーのキッチン在庫一覧を名前順で返す。
	ListByEmail(ctx context.Context, email string) ([]*model.KitchenItem, error)
}
