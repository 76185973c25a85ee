package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SignSessionID はセッションIDにHMAC-SHA256署名を付与したCookie値を返す。
// 形式は "<セッションID>.<16進署名>"。署名はストア照会前の改ざん検知に使う。
func SignSessionID(secret, sessionID string) string {
	return sessionID + "." + sessionIDSignature(secret, sessionID)
}

// VerifySignedSessionID は署名付きCookie値を検証し、セッションIDを取り出す。
// 形式不正または署名不一致の場合はfalseを返す。比較は定数時間で行う。
func VerifySignedSessionID(secret, value string) (string, bool) {
	sessionID, signature, ok := strings.Cut(value, ".")
	if !ok || sessionID == "" {
		return "", false
	}
	expected := sessionIDSignature(secret, sessionID)
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return "", false
	}
	return sessionID, true
}

func sessionIDSignature(secret, sessionID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(sessionID))
	return hex.EncodeToString(mac.Sum(nil))
}
