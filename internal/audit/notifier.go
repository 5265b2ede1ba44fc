package audit

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/BisonByte/vogue.bisonbyte.io/internal/config"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/logger"
	"github.com/wneessen/go-mail"
)

// Notifier delivers security notifications produced by the diff engine and
// the recovery flow. Implementations must treat delivery as best-effort:
// a failed send is logged, never propagated into the request path.
type Notifier interface {
	// NotifySecurityEvent sends a notification with the given subject and
	// plain-text body to the configured security address.
	NotifySecurityEvent(ctx context.Context, subject, textBody string) error
}

type mailNotifier struct {
	cfg    config.Mail
	logger *logger.Logger
}

// NewMailNotifier constructs a [Notifier] that delivers over SMTP using the
// provided mail settings. An empty host or recipient disables delivery
// entirely (sends become no-ops), which keeps local development working
// without an SMTP account.
func NewMailNotifier(cfg config.Mail, log *logger.Logger) Notifier {
	if cfg.Host == "" || cfg.SecurityEmail == "" {
		log.Info().Msg("mail notifications disabled: no SMTP host or security email configured")
	}
	return &mailNotifier{cfg: cfg, logger: log}
}

func (n *mailNotifier) NotifySecurityEvent(ctx context.Context, subject, textBody string) error {
	if n.cfg.Host == "" || n.cfg.SecurityEmail == "" {
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(n.cfg.FromName, n.cfg.From); err != nil {
		return fmt.Errorf("notification sender address: %w", err)
	}
	if err := msg.To(n.cfg.SecurityEmail); err != nil {
		return fmt.Errorf("notification recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, textBody)
	msg.AddAlternativeString(mail.TypeTextHTML, renderHTML(textBody))

	client, err := mail.NewClient(n.cfg.Host,
		mail.WithPort(n.cfg.Port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.cfg.User),
		mail.WithPassword(n.cfg.Pass),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err = client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}

	n.logger.Info().Str("subject", subject).Msg("security notification sent")
	return nil
}

// renderHTML produces the HTML alternative body: escaped text with line
// breaks preserved, the same shape the original notifications used.
func renderHTML(textBody string) string {
	escaped := html.EscapeString(textBody)
	return strings.ReplaceAll(escaped, "\n", "<br>\n")
}

// NopNotifier returns a Notifier that drops every notification. Intended for
// tests.
func NopNotifier() Notifier {
	return nopNotifier{}
}

type nopNotifier struct{}

func (nopNotifier) NotifySecurityEvent(context.Context, string, string) error { return nil }
