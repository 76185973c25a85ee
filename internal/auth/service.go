// Package auth はパスワード認証とセッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mayumi/kondate/internal/model"
	"github.com/mayumi/kondate/internal/repository"
)

// dummyPasswordHash はユーザー未登録時のタイミング差を抑えるためのダミーハッシュ。
// 未知のメールアドレスでも既知の場合と同様にbcrypt比較を1回実行する。
const dummyPasswordHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// Metrics は認証サービスが記録するメトリクスのインターフェース。
// metrics.Collectorの部分集合として定義する。
type Metrics interface {
	RecordSignup(success bool)
	RecordLogin(success bool)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
	BcryptCost    int // bcryptのコストファクター
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	metrics     Metrics
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	metrics Metrics,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		metrics:     metrics,
		config:      config,
	}
}

// Signup は新規ユーザーを作成し、ログイン済みセッションを発行する（サインアップ後の自動ログイン）。
// メールアドレスの重複はストアの一意制約で検出し、DuplicateEmailとして返す。
// 重複以上の詳細は呼び出し元に区別させない。
func (s *Service) Signup(ctx context.Context, name, email, password string) (*model.Session, error) {
	if apiErr := ValidateSignupInput(name, email, password); apiErr != nil {
		return nil, apiErr
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         model.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			s.metrics.RecordSignup(false)
			return nil, model.NewDuplicateEmailError()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	session, err := s.createSession(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.metrics.RecordSignup(true)
	slog.Info("new user signed up",
		slog.String("user_id", user.ID),
	)

	return session, nil
}

// Login はメールアドレスとパスワードで認証し、セッションを発行する。
// メールアドレス未登録とパスワード誤りは外部から区別できない
// （同一のInvalidCredentialsを返し、タイミング差も抑える）。
func (s *Service) Login(ctx context.Context, email, password string) (*model.Session, error) {
	if apiErr := ValidateLoginInput(email, password); apiErr != nil {
		return nil, apiErr
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user == nil {
		// ユーザーが存在しない場合もbcrypt比較を1回実行してから失敗を返す
		VerifyPassword(dummyPasswordHash, password)
		s.metrics.RecordLogin(false)
		return nil, model.NewInvalidCredentialsError()
	}

	if !VerifyPassword(user.PasswordHash, password) {
		s.metrics.RecordLogin(false)
		return nil, model.NewInvalidCredentialsError()
	}

	session, err := s.createSession(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.metrics.RecordLogin(true)
	slog.Info("user logged in",
		slog.String("user_id", user.ID),
	)

	return session, nil
}

// Logout はセッションを無条件に破棄する。
// ストアの削除失敗はログに記録するだけで呼び出し元には返さない
// （ログアウトはCookieのクリアと合わせて常に成功扱いとする）。
func (s *Service) Logout(ctx context.Context, sessionID string) {
	if sessionID == "" {
		return
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		slog.Error("failed to delete session on logout",
			slog.String("error", err.Error()),
		)
		return
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))
}

// SessionState はセッションIDから現在のセッション状態を取得する。
// セッションが存在しない・期限切れ・検索失敗の場合は匿名状態を返す。
func (s *Service) SessionState(ctx context.Context, sessionID string) model.SessionState {
	if sessionID == "" {
		return model.AnonymousSession()
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		slog.Error("failed to find session",
			slog.String("error", err.Error()),
		)
		return model.AnonymousSession()
	}
	if session == nil {
		return model.AnonymousSession()
	}

	return model.SessionState{
		LoggedIn: true,
		Username: session.Username,
		Email:    session.Email,
	}
}

// createSession はログイン済みセッションを作成し永続化する。
// 有効期限は作成時刻 + 固定TTLで、以降延長されない。
func (s *Service) createSession(ctx context.Context, user *model.User) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := time.Now()
	session := &model.Session{
		ID:         sessionID,
		UserID:     user.ID,
		Username:   user.Name,
		Email:      user.Email,
		CreatedAt:  now,
		ExpiresAt:  now.Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		LastSeenAt: now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
