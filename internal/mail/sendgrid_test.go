package mail

import (
	"log/slog"
	"testing"

	"github.com/mayumi/kondate/internal/reset"
)

// SendGridMailerがreset.Mailerを満たすことのコンパイル時チェック。
var _ reset.Mailer = (*SendGridMailer)(nil)

func TestNewSendGridMailer(t *testing.T) {
	logger := slog.Default()
	m := NewSendGridMailer("SG.dummy-key", "noreply@example.com", "Kondate", logger)
	if m == nil {
		t.Fatal("NewSendGridMailer returned nil")
	}
	if m.fromAddr != "noreply@example.com" {
		t.Errorf("fromAddr = %q, want %q", m.fromAddr, "noreply@example.com")
	}
	if m.fromName != "Kondate" {
		t.Errorf("fromName = %q, want %q", m.fromName, "Kondate")
	}
}
