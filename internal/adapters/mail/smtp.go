package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	"campus_rentals/internal/domain"
)

// defaultSendTimeout bounds one SMTP exchange when the caller has no deadline.
const defaultSendTimeout = time.Minute

type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

type sendFunc func(ctx context.Context, addr, host string, a smtp.Auth, from string, to []string, msg []byte) error

type SMTPMailer struct {
	cfg    SMTPConfig
	appURL string
	send   sendFunc
}

func NewSMTP(cfg SMTPConfig, appURL string) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, fmt.Errorf("smtp: host and from address are required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPMailer{cfg: cfg, appURL: appURL, send: sendMail}, nil
}

func (m *SMTPMailer) SendDigest(ctx context.Context, d domain.Digest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultSendTimeout)
		defer cancel()
	}
	msg, err := RenderDigest(d, m.appURL)
	if err != nil {
		return err
	}
	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	}
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	from, err := mail.ParseAddress(m.cfg.From)
	if err != nil {
		return fmt.Errorf("smtp: from address: %w", err)
	}
	raw, err := buildMIME(m.cfg.From, msg)
	if err != nil {
		return err
	}
	if err := m.send(ctx, addr, m.cfg.Host, auth, from.Address, []string{msg.To}, raw); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

// sendMail is smtp.SendMail bound to ctx: the connection deadline follows the
// context, and cancellation interrupts a stalled exchange.
func sendMail(ctx context.Context, addr, host string, a smtp.Auth, from string, to []string, msg []byte) (err error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	if dl, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(dl); err != nil {
			return err
		}
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()
	defer func() {
		if err == nil {
			return
		}
		switch dl, ok := ctx.Deadline(); {
		case ctx.Err() != nil:
			err = errors.Join(ctx.Err(), err)
		case ok && !time.Now().Before(dl):
			// conn deadline fired a hair before the context timer
			err = errors.Join(context.DeadlineExceeded, err)
		}
	}()

	c, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}
	if a != nil {
		if ok, _ := c.Extension("AUTH"); !ok {
			return errors.New("smtp: server does not support AUTH")
		}
		if err := c.Auth(a); err != nil {
			return err
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// buildMIME renders a multipart/alternative message: plain text first, HTML
// preferred.
func buildMIME(from string, msg Message) ([]byte, error) {
	to := (&mail.Address{Name: msg.ToName, Address: msg.To}).String()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, part := range []struct{ ctype, content string }{
		{"text/plain; charset=\"utf-8\"", msg.Text},
		{"text/html; charset=\"utf-8\"", msg.HTML},
	} {
		pw, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {part.ctype},
			"Content-Transfer-Encoding": {"base64"},
		})
		if err != nil {
			return nil, err
		}
		if _, err := pw.Write(wrap76(base64.StdEncoding.EncodeToString([]byte(part.content)))); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var b bytes.Buffer
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject) + "\r\n")
	b.WriteString("Date: " + time.Now().UTC().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: multipart/alternative; boundary=\"" + mw.Boundary() + "\"\r\n\r\n")
	b.Write(body.Bytes())
	return b.Bytes(), nil
}

func wrap76(enc string) []byte {
	var b bytes.Buffer
	for len(enc) > 76 {
		b.WriteString(enc[:76] + "\r\n")
		enc = enc[76:]
	}
	b.WriteString(enc + "\r\n")
	return b.Bytes()
}
