// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, recipe, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeDuplicateEmail     = "DUPLICATE_EMAIL"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUnknownUser        = "UNKNOWN_USER"
	ErrCodeResetTokenInvalid  = "RESET_TOKEN_INVALID"
	ErrCodePasswordMismatch   = "PASSWORD_MISMATCH"
	ErrCodeRecipeFetchFailed  = "RECIPE_FETCH_FAILED"
	ErrCodeRecipeNotFound     = "RECIPE_NOT_FOUND"
)

// NewValidationError は入力値検証エラーを生成する。
// reasonには不正だったフィールドと理由を含める。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("入力内容に誤りがあります: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewDuplicateEmailError はメールアドレス重複エラーを生成する。
// サインアップ時のみ発生する。重複以上の詳細は区別しない。
func NewDuplicateEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateEmail,
		Message:  "このメールアドレスは既に使用されています。",
		Category: "auth",
		Action:   "別のメールアドレスを使用するか、ログインしてください。",
	}
}

// NewInvalidCredentialsError はログイン失敗エラーを生成する。
// メールアドレス未登録とパスワード誤りを意図的に区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewUnknownUserError は指定IDのユーザーが存在しない場合のエラーを生成する。
func NewUnknownUserError() *APIError {
	return &APIError{
		Code:     ErrCodeUnknownUser,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "リンクが正しいか確認してください。",
	}
}

// NewResetTokenInvalidError はリセットトークン検証失敗エラーを生成する。
// 署名不一致・期限切れ・改ざんをすべて同一のエラーに集約する（オラクル漏えい防止）。
func NewResetTokenInvalidError() *APIError {
	return &APIError{
		Code:     ErrCodeResetTokenInvalid,
		Message:  "リンクの有効期限が切れているか、無効です。",
		Category: "auth",
		Action:   "パスワード再設定をもう一度最初からやり直してください。",
	}
}

// NewPasswordMismatchError は新パスワードと確認用パスワードの不一致エラーを生成する。
func NewPasswordMismatchError() *APIError {
	return &APIError{
		Code:     ErrCodePasswordMismatch,
		Message:  "新しいパスワードと確認用パスワードが一致しません。",
		Category: "validation",
		Action:   "同じパスワードを2回入力してください。",
	}
}

// NewRecipeFetchFailedError はレシピAPIの呼び出し失敗エラーを生成する。
func NewRecipeFetchFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeRecipeFetchFailed,
		Message:  "レシピ情報の取得に失敗しました。",
		Category: "recipe",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewRecipeNotFoundError は指定IDのレシピが見つからない場合のエラーを生成する。
func NewRecipeNotFoundError(recipeID string) *APIError {
	return &APIError{
		Code:     ErrCodeRecipeNotFound,
		Message:  fmt.Sprintf("指定されたレシピが見つかりません: %s", recipeID),
		Category: "recipe",
		Action:   "レシピIDを確認してください。",
	}
}
