// Package reset はパスワード再設定のトークン発行・検証・完了処理を提供する。
//
// トークンは永続化されない。署名鍵がサーバーシークレット + ユーザーの現在の
// パスワードハッシュから導出されるため、トークンの有効性は
// (a) TTL内であること、(b) 発行以降パスワードハッシュが変わっていないこと、
// の2条件で決まる。パスワード変更（再設定完了を含む）は発行済みトークンを
// ストレージなしで即座に無効化する。
package reset

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mayumi/kondate/internal/auth"
	"github.com/mayumi/kondate/internal/model"
	"github.com/mayumi/kondate/internal/repository"
)

// Mailer はリセットメール送信のインターフェース。
// mail.SendGridMailerの部分集合として定義する。
type Mailer interface {
	SendPasswordReset(ctx context.Context, toEmail, toName, resetURL string) error
}

// Metrics はリセットサービスが記録するメトリクスのインターフェース。
// metrics.Collectorの部分集合として定義する。
type Metrics interface {
	RecordResetIssued()
	RecordResetCompleted()
	RecordResetRejected()
}

// ServiceConfig はリセットサービスの設定。
type ServiceConfig struct {
	TokenSecret string        // サーバー側のトークン署名シークレット
	TokenTTL    time.Duration // トークン有効期間（5分）
	BaseURL     string        // リセットリンクのベースURL
	BcryptCost  int           // 新パスワードのbcryptコストファクター
}

// Service はパスワード再設定に関するビジネスロジックを提供する。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	mailer      Mailer
	metrics     Metrics
	config      ServiceConfig

	// now は有効期限判定の基準時刻。テストで差し替える。
	now func() time.Time
}

// NewService はServiceを生成する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	mailer Mailer,
	metrics Metrics,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		mailer:      mailer,
		metrics:     metrics,
		config:      config,
		now:         time.Now,
	}
}

// Request はリセットトークンを発行し、リセットリンクをメールで送信する。
// メールアドレスが未登録かどうかは呼び出し元に伝えない（列挙攻撃の防止）。
// メール送信の失敗はログに記録するだけで、発行済みトークンは有効なまま。
func (s *Service) Request(ctx context.Context, email string) error {
	if apiErr := auth.ValidateEmail(email); apiErr != nil {
		return apiErr
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		// 未登録でも成功時と同じ応答になる。記録はサーバーログのみ。
		slog.Info("password reset requested for unregistered email")
		return nil
	}

	secret := signingSecret(s.config.TokenSecret, user.PasswordHash)
	token, err := generateToken(user.ID, user.Email, secret, s.now(), s.config.TokenTTL)
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s/%s", s.config.BaseURL, user.ID, token)

	if err := s.mailer.SendPasswordReset(ctx, user.Email, user.Name, resetURL); err != nil {
		// 送信失敗はトランザクション失敗として扱わない
		slog.Error("failed to send password reset mail",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID),
		)
	}

	s.metrics.RecordResetIssued()
	slog.Info("password reset token issued",
		slog.String("user_id", user.ID),
	)

	return nil
}

// Verify はトークンを検証し、対象ユーザーを返す。
// 署名鍵はユーザーの「現在の」パスワードハッシュから再計算するため、
// 発行後にパスワードが変更されたトークンは署名不一致で失敗する。
// 署名不一致・期限切れ・改ざんはすべて同一のResetTokenInvalidに集約する。
func (s *Service) Verify(ctx context.Context, userID, token string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		s.metrics.RecordResetRejected()
		return nil, model.NewUnknownUserError()
	}

	secret := signingSecret(s.config.TokenSecret, user.PasswordHash)
	claims, err := parseToken(token, secret, s.now)
	if err != nil {
		s.metrics.RecordResetRejected()
		slog.Info("reset token rejected",
			slog.String("user_id", userID),
		)
		return nil, model.NewResetTokenInvalidError()
	}

	// ペイロードのユーザーとURLのユーザーの不一致も同じエラーに潰す
	if claims.Subject != user.ID || claims.Email != user.Email {
		s.metrics.RecordResetRejected()
		return nil, model.NewResetTokenInvalidError()
	}

	return user, nil
}

// Complete はトークンを再検証し、パスワードを更新する。
// 更新によりパスワードハッシュが変わるため、同じトークンの再利用
// （リプレイ）は次回のVerifyで署名不一致となり失敗する。
// 成功後、当該ユーザーの全セッションを破棄して再ログインを要求する。
func (s *Service) Complete(ctx context.Context, userID, token, newPassword, confirmPassword string) error {
	user, err := s.Verify(ctx, userID, token)
	if err != nil {
		return err
	}

	newPassword = strings.TrimSpace(newPassword)
	confirmPassword = strings.TrimSpace(confirmPassword)

	if newPassword == "" {
		return model.NewValidationError("新しいパスワードは必須です")
	}
	if newPassword != confirmPassword {
		return model.NewPasswordMismatchError()
	}

	passwordHash, err := auth.HashPassword(newPassword, s.config.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err := s.userRepo.UpdatePasswordHash(ctx, user.ID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	// 既存セッションを破棄し再ログインを要求する。失敗してもパスワード更新は成立している。
	if err := s.sessionRepo.DeleteByUserID(ctx, user.ID); err != nil {
		slog.Error("failed to delete sessions after password reset",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID),
		)
	}

	s.metrics.RecordResetCompleted()
	slog.Info("password reset completed",
		slog.String("user_id", user.ID),
	)

	return nil
}
