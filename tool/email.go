package tool

import (
	"context"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// EmailSenderName is the registered name of the email tool.
const EmailSenderName = "email_sender"

// SendFunc delivers a message; smtp.SendMail satisfies it.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailConfig configures SMTP delivery.
type EmailConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
	From     string `mapstructure:"from" yaml:"from"`
	// Recipients maps names the model may use ("SOC team") to addresses.
	Recipients map[string]string `mapstructure:"recipients" yaml:"recipients"`
	// DefaultRecipient is used when the model names nobody.
	DefaultRecipient string `mapstructure:"default_recipient" yaml:"default_recipient"`

	// Send overrides delivery. Defaults to smtp.SendMail.
	Send SendFunc `mapstructure:"-" yaml:"-"`
}

type emailArgs struct {
	Recipient string `json:"recipient" jsonschema:"description=Configured team name or address; empty means the default recipient"`
	Subject   string `json:"subject,omitempty" jsonschema:"description=Subject line"`
	Content   string `json:"content" jsonschema:"description=Plain text body"`
}

// Email returns the email_sender tool.
func Email(cfg EmailConfig) Registration {
	return Func(EmailSenderName,
		"Send an email to a recipient",
		func(ctx context.Context, args emailArgs) (string, error) {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			return sendEmail(cfg, args)
		})
}

func sendEmail(cfg EmailConfig, args emailArgs) (string, error) {
	if cfg.Host == "" {
		return "", fmt.Errorf("email: no SMTP host configured")
	}
	if cfg.From == "" {
		return "", fmt.Errorf("email: no sender address configured")
	}
	if strings.TrimSpace(args.Content) == "" {
		return "", fmt.Errorf("email: content is required")
	}

	to, err := cfg.resolve(args.Recipient)
	if err != nil {
		return "", err
	}

	subject := args.Subject
	if subject == "" {
		subject = "Security triage update"
	}

	port := cfg.Port
	if port == 0 {
		port = 587
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(port))

	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	send := cfg.Send
	if send == nil {
		send = smtp.SendMail
	}
	if err := send(addr, auth, cfg.From, []string{to}, buildMessage(cfg.From, to, subject, args.Content)); err != nil {
		return "", fmt.Errorf("email: send to %s: %w", to, err)
	}
	return "email sent to " + to, nil
}

// resolve maps a recipient from the model to a configured address. Only
// addresses listed in Recipients or DefaultRecipient are ever returned.
func (cfg EmailConfig) resolve(recipient string) (string, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		if cfg.DefaultRecipient == "" {
			return "", fmt.Errorf("email: recipient is required")
		}
		return cfg.DefaultRecipient, nil
	}
	if strings.Contains(recipient, "@") {
		if addr, ok := cfg.configured(recipient); ok {
			return addr, nil
		}
		return "", fmt.Errorf("email: %q is not a configured recipient", recipient)
	}
	for name, addr := range cfg.Recipients {
		if strings.EqualFold(name, recipient) {
			return addr, nil
		}
	}
	if cfg.DefaultRecipient != "" {
		return cfg.DefaultRecipient, nil
	}
	return "", fmt.Errorf("email: unknown recipient %q", recipient)
}

// configured returns the configured spelling of addr, if it is configured.
func (cfg EmailConfig) configured(addr string) (string, bool) {
	if cfg.DefaultRecipient != "" && strings.EqualFold(addr, cfg.DefaultRecipient) {
		return cfg.DefaultRecipient, true
	}
	for _, a := range cfg.Recipients {
		if strings.EqualFold(addr, a) {
			return a, true
		}
	}
	return "", false
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}
