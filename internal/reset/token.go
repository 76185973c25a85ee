package reset

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// resetClaims はリセットトークンのクレーム。
// Subjectにユーザー ID、Emailに発行時点のメールアドレスを含む。
type resetClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// signingSecret はトークン署名鍵を導出する。
// サーバーシークレットとユーザーの現在のパスワードハッシュの連結であるため、
// パスワードが変わると鍵も変わり、発行済みトークンは保存なしで自動失効する。
func signingSecret(serverSecret, passwordHash string) []byte {
	return []byte(serverSecret + passwordHash)
}

// generateToken は{email, userID}に対する署名付きトークンを生成する。
// 有効期限はissuedAt + ttl。
func generateToken(userID, email string, secret []byte, issuedAt time.Time, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, resetClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
		Email: email,
	})

	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign reset token: %w", err)
	}
	return tokenString, nil
}

// parseToken はトークンを検証してクレームを返す。
// 署名不一致・期限切れ・形式不正はすべてエラーになる（区別は呼び出し元で潰す）。
// nowは有効期限判定の基準時刻。
func parseToken(tokenString string, secret []byte, now func() time.Time) (*resetClaims, error) {
	claims := &resetClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse reset token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid reset token")
	}

	return claims, nil
}
