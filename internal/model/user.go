// Package model はドメインモデルを定義する。
package model

import "time"

// RoleUser は一般ユーザーのロール。新規登録時のデフォルト値。
const RoleUser = "user"

// User はサービス利用ユーザーを表す。
// PasswordHashはbcryptハッシュであり、平文パスワードは保持しない。
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session はユーザーのログインセッションを表す。
// ExpiresAtはCreatedAt + 固定TTL（24時間）で、以降延長されない。
// LastSeenAtはリクエストごとに更新されるが、有効期限には影響しない。
type Session struct {
	ID         string
	UserID     string
	Username   string
	Email      string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	LastSeenAt time.Time
}

// SessionState はリクエストから見たセッションの状態を表す。
// セッションが存在しない・期限切れ・不正な場合は匿名状態（LoggedIn=false）となる。
type SessionState struct {
	LoggedIn bool
	Username string
	Email    string
}

// AnonymousSession は匿名状態のSessionStateを返す。
func AnonymousSession() SessionState {
	return SessionState{}
}
