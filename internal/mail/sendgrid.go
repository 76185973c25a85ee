// Package mail はトランザクションメールの送信を提供する。
package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridMailer はSendGrid経由でメールを送信する。
type SendGridMailer struct {
	client   *sendgrid.Client
	fromAddr string
	fromName string
	logger   *slog.Logger
}

// NewSendGridMailer はSendGridMailerを生成する。
func NewSendGridMailer(apiKey, fromAddr, fromName string, logger *slog.Logger) *SendGridMailer {
	return &SendGridMailer{
		client:   sendgrid.NewSendClient(apiKey),
		fromAddr: fromAddr,
		fromName: fromName,
		logger:   logger,
	}
}

// SendPasswordReset はパスワード再設定リンクを含むメールを送信する。
// リンクの有効期限は短いため、件名と本文で期限を明示する。
func (m *SendGridMailer) SendPasswordReset(ctx context.Context, toEmail, toName, resetURL string) error {
	from := sgmail.NewEmail(m.fromName, m.fromAddr)
	to := sgmail.NewEmail(toName, toEmail)
	subject := "【Kondate】パスワード再設定のご案内"

	plainText := fmt.Sprintf(
		"%s 様\n\n"+
			"パスワード再設定のリクエストを受け付けました。\n"+
			"以下のリンクから新しいパスワードを設定してください。\n\n"+
			"%s\n\n"+
			"このリンクの有効期限は5分間です。\n"+
			"心当たりがない場合はこのメールを破棄してください。\n",
		toName, resetURL)

	htmlContent := fmt.Sprintf(
		`<p>%s 様</p>`+
			`<p>パスワード再設定のリクエストを受け付けました。<br>`+
			`以下のリンクから新しいパスワードを設定してください。</p>`+
			`<p><a href="%s">パスワードを再設定する</a></p>`+
			`<p>このリンクの有効期限は5分間です。<br>`+
			`心当たりがない場合はこのメールを破棄してください。</p>`,
		toName, resetURL)

	message := sgmail.NewSingleEmail(from, subject, to, plainText, htmlContent)

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send password reset mail: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}

	m.logger.InfoContext(ctx, "パスワード再設定メールを送信しました",
		slog.String("to", toEmail),
		slog.Int("status", resp.StatusCode))
	return nil
}
