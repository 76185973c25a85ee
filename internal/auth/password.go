package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword は平文パスワードをbcryptでハッシュ化する。
// costはコストファクター（通常10〜12、設定のBCRYPT_COSTから渡す）。
// ソルトはbcryptが内部で生成しハッシュに埋め込まれる。
func HashPassword(rawPassword string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(rawPassword), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword は平文パスワードが格納済みハッシュと一致するかを検証する。
// 比較はbcrypt自身の定数時間比較に委ねる。
func VerifyPassword(passwordHash, rawPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(rawPassword)) == nil
}
