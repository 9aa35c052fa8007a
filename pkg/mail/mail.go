// Package mail sends HTML email over SMTP.
//
// Messages are built fluently and handed to a Transport:
//
//	msg := mail.To("orders@supplier.test").
//	    Subject("New order").
//	    Body("<h1>Order</h1>")
//	err := transport.Send(ctx, msg)
package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/shashiranjanraj/pantry/config"
)

// SMTPConfig holds connection credentials for one sender.
type SMTPConfig struct {
	Host        string
	Port        string
	Username    string
	Password    string
	FromName    string
	FromAddress string
	// TLS selects implicit TLS (usually port 465). Otherwise STARTTLS is
	// used when the server offers it.
	TLS bool
}

// Missing lists the required fields that are empty.
func (c SMTPConfig) Missing() []string {
	var missing []string
	for _, f := range []struct {
		name, value string
	}{
		{"fromName", c.FromName},
		{"fromAddress", c.FromAddress},
		{"username", c.Username},
		{"password", c.Password},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// WithDefaults fills host and port from MAIL_DEFAULT_HOST / MAIL_DEFAULT_PORT.
func (c SMTPConfig) WithDefaults() SMTPConfig {
	if c.Host == "" {
		c.Host = config.MailDefaultHost()
	}
	if c.Port == "" {
		c.Port = config.MailDefaultPort()
	}
	return c
}

// ProcessConfig is the sender configured through MAIL_* keys.
func ProcessConfig() SMTPConfig {
	return SMTPConfig{
		Host:        config.MailHost(),
		Port:        config.MailPort(),
		Username:    config.MailUsername(),
		Password:    config.MailPassword(),
		FromName:    config.MailFromName(),
		FromAddress: config.MailFrom(),
		TLS:         config.MailTLS(),
	}.WithDefaults()
}

// Message is a fluent builder for an email.
type Message struct {
	to      []string
	cc      []string
	subject string
	body    string
	isHTML  bool
}

// To starts a message for the given recipients.
func To(addresses ...string) *Message {
	return &Message{to: addresses, isHTML: true}
}

func (m *Message) CC(addresses ...string) *Message {
	m.cc = append(m.cc, addresses...)
	return m
}

func (m *Message) Subject(s string) *Message {
	m.subject = s
	return m
}

// Body sets an HTML body.
func (m *Message) Body(html string) *Message {
	m.body = html
	m.isHTML = true
	return m
}

// Text sets a plain-text body.
func (m *Message) Text(text string) *Message {
	m.body = text
	m.isHTML = false
	return m
}

func (m *Message) Recipients() []string { return append(append([]string(nil), m.to...), m.cc...) }
func (m *Message) SubjectLine() string  { return m.subject }
func (m *Message) Content() string      { return m.body }

// Transport delivers messages.
type Transport interface {
	Send(ctx context.Context, msg *Message) error
}

// SMTPTransport sends through one SMTP server.
type SMTPTransport struct {
	cfg     SMTPConfig
	timeout time.Duration
}

func NewSMTP(cfg SMTPConfig) *SMTPTransport {
	return &SMTPTransport{cfg: cfg.WithDefaults(), timeout: 30 * time.Second}
}

func (t *SMTPTransport) Send(ctx context.Context, msg *Message) error {
	if len(msg.Recipients()) == 0 {
		return fmt.Errorf("mail: message has no recipients")
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	addr := net.JoinHostPort(t.cfg.Host, t.cfg.Port)
	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("mail: dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	tlsCfg := &tls.Config{ServerName: t.cfg.Host}
	if t.cfg.TLS || t.cfg.Port == "465" {
		conn = tls.Client(conn, tlsCfg)
	}

	client, err := smtp.NewClient(conn, t.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("mail: handshake: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(tlsCfg); err != nil {
			return fmt.Errorf("mail: starttls: %w", err)
		}
	}
	if t.cfg.Username != "" {
		if err := client.Auth(smtp.PlainAuth("", t.cfg.Username, t.cfg.Password, t.cfg.Host)); err != nil {
			return fmt.Errorf("mail: auth: %w", err)
		}
	}
	if err := client.Mail(t.cfg.FromAddress); err != nil {
		return err
	}
	for _, rcpt := range msg.Recipients() {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("mail: rcpt %s: %w", rcpt, err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg.Raw(t.cfg.FromName, t.cfg.FromAddress)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

// Raw renders the RFC 5322 message.
func (m *Message) Raw(fromName, fromAddress string) []byte {
	contentType := "text/plain"
	if m.isHTML {
		contentType = "text/html"
	}

	var b strings.Builder
	b.WriteString("From: " + mime.QEncoding.Encode("utf-8", fromName) + " <" + fromAddress + ">\r\n")
	b.WriteString("To: " + strings.Join(m.to, ", ") + "\r\n")
	if len(m.cc) > 0 {
		b.WriteString("Cc: " + strings.Join(m.cc, ", ") + "\r\n")
	}
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", m.subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString(fmt.Sprintf("Content-Type: %s; charset=\"UTF-8\"\r\n", contentType))
	b.WriteString("\r\n")
	b.WriteString(m.body)
	return []byte(b.String())
}
