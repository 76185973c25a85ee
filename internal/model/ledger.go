package model

import "time"

// FavoriteItem はユーザーがお気に入り登録したレシピを表す。
// (Email, RecipeID) の組み合わせで一意。登録済みの場合の再登録はトグル（解除）となる。
type FavoriteItem struct {
	ID        string
	Email     string
	RecipeID  string
	Title     string
	Image     string
	CreatedAt time.Time
}

// ShoppingListItem は買い物リストの1項目を表す。
// (Email, Name) の組み合わせで一意。既存項目の追加は無視される（トグルしない）。
type ShoppingListItem struct {
	ID        string
	Email     string
	Name      string
	Quantity  string
	CreatedAt time.Time
}

// KitchenItem はキッチン在庫の1項目を表す。
// (Email, Name) の組み合わせで一意。バッチ更新では項目ごとに独立して成否が決まる。
type KitchenItem struct {
	ID        string
	Email     string
	Name      string
	Quantity  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// KitchenOp はキッチン在庫バッチ更新の1操作を表す。
// Deleteがtrueの場合は削除、falseの場合はUPSERTを行う。
type KitchenOp struct {
	Name     string
	Quantity string
	Delete   bool
}

// KitchenOpResult はキッチン在庫バッチ更新の項目ごとの結果を表す。
// 1項目の失敗は他の項目をロールバックしない。
type KitchenOpResult struct {
	Name string
	Err  error
}
