// 확인 메일을 SMTP로 직접 전송하는 클라이언트
//
// 환경변수:
//   - MAIL_SERVER, MAIL_PORT: SMTP 서버 주소
//   - MAIL_SSL_TLS: 465 포트처럼 처음부터 TLS로 연결
//   - MAIL_STARTTLS: 평문 연결 후 STARTTLS로 업그레이드
//   - USE_CREDENTIALS: MAIL_USERNAME/MAIL_PASSWORD로 PLAIN 인증
//   - VALIDATE_CERTS: false면 인증서 검증 생략 (로컬 테스트용)

package client

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/restapp/backend/internal/config"
	"github.com/restapp/backend/internal/model"
	"github.com/restapp/backend/internal/template"
)

const smtpDialTimeout = 10 * time.Second

type SMTPSender struct {
	cfg config.MailConfig
	now func() time.Time
}

func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg, now: time.Now}
}

// Send - 메일 한 통을 전송. ctx 데드라인이 연결 전체의 데드라인이 됨
func (s *SMTPSender) Send(ctx context.Context, msg model.ConfirmationEmail) error {
	if s.cfg.Server == "" {
		return fmt.Errorf("smtp: MAIL_SERVER is not set")
	}
	body, err := s.buildMessage(msg)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(s.cfg.Server, strconv.Itoa(s.cfg.Port))
	dialer := &net.Dialer{Timeout: smtpDialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	tlsConfig := &tls.Config{
		ServerName:         s.cfg.Server,
		InsecureSkipVerify: !s.cfg.ValidateCerts,
	}
	// 465: 처음부터 TLS
	if s.cfg.SSLTLS {
		conn = tls.Client(conn, tlsConfig)
	}

	c, err := smtp.NewClient(conn, s.cfg.Server)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp client: %w", err)
	}
	defer c.Close()

	if s.cfg.StartTLS && !s.cfg.SSLTLS {
		if err := c.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if s.cfg.UseCredentials {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Server)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := c.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := c.Rcpt(msg.Email); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp data close: %w", err)
	}
	return c.Quit()
}

// buildMessage - 헤더 + HTML 본문 조립
func (s *SMTPSender) buildMessage(msg model.ConfirmationEmail) ([]byte, error) {
	if _, err := mail.ParseAddress(msg.Email); err != nil {
		return nil, fmt.Errorf("smtp: invalid recipient: %w", err)
	}

	data := template.ConfirmationDataFromModel(msg)
	html := template.RenderBody(template.ConfirmationBody, &data)

	from := (&mail.Address{Name: s.cfg.FromName, Address: s.cfg.From}).String()
	headers := []string{
		"From: " + from,
		"To: " + msg.Email,
		"Subject: " + mime.QEncoding.Encode("utf-8", template.ConfirmationSubject),
		"Date: " + s.now().Format(time.RFC1123Z),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
	}
	return []byte(strings.Join(headers, "\r\n") + "\r\n\r\n" + html), nil
}
