package auth

import (
	"net/mail"
	"strings"

	"github.com/mayumi/kondate/internal/model"
)

// maxFieldLength は名前・メールアドレスの最大長。DBのカラム定義に合わせる。
const maxFieldLength = 255

// ValidateSignupInput はサインアップ入力の形式を検証する。
// ストアに触れる前に呼び出すこと。
func ValidateSignupInput(name, email, password string) *model.APIError {
	if strings.TrimSpace(name) == "" {
		return model.NewValidationError("名前は必須です")
	}
	if len(name) > maxFieldLength {
		return model.NewValidationError("名前が長すぎます")
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if password == "" {
		return model.NewValidationError("パスワードは必須です")
	}
	return nil
}

// ValidateLoginInput はログイン入力の形式を検証する。
func ValidateLoginInput(email, password string) *model.APIError {
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if password == "" {
		return model.NewValidationError("パスワードは必須です")
	}
	return nil
}

// ValidateEmail はメールアドレスがRFC 5322の形式かを検証する。
func ValidateEmail(email string) *model.APIError {
	if strings.TrimSpace(email) == "" {
		return model.NewValidationError("メールアドレスは必須です")
	}
	if len(email) > maxFieldLength {
		return model.NewValidationError("メールアドレスが長すぎます")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return model.NewValidationError("メールアドレスの形式が正しくありません")
	}
	return nil
}
