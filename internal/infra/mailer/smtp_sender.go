// Package mailer implements the reservation email transport over SMTP.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"html"
	"log/slog"
	"net"
	"net/smtp"
	"time"

	"concierge/config"
	"concierge/internal/domain/service"

	"github.com/pkg/errors"
)

// SMTPSender sends reservation confirmation emails through a plain-auth
// SMTP relay.
type SMTPSender struct {
	host           string
	port           string
	username       string
	password       string
	from           string
	restaurantName string
	timeout        time.Duration
	logger         *slog.Logger
}

// NewSMTPSender creates an SMTP sender from config.
func NewSMTPSender(cfg *config.Config, logger *slog.Logger) (service.EmailSender, error) {
	if cfg.SMTP.Host == "" {
		return nil, errors.New("smtp host not configured")
	}
	if cfg.SMTP.Port == "" {
		return nil, errors.New("smtp port not configured")
	}

	from := cfg.SMTP.From
	if from == "" {
		from = cfg.SMTP.Username
	}

	return &SMTPSender{
		host:           cfg.SMTP.Host,
		port:           cfg.SMTP.Port,
		username:       cfg.SMTP.Username,
		password:       cfg.SMTP.Password,
		from:           from,
		restaurantName: cfg.Restaurant.Name,
		timeout:        cfg.SMTP.Timeout,
		logger:         logger,
	}, nil
}

// SendReservationEmail delivers one confirmation email. The SMTP protocol
// has no context support; the configured timeout deadlines the whole
// exchange instead, so a stalled relay cannot block a notify tick.
func (s *SMTPSender) SendReservationEmail(_ context.Context, email *service.ReservationEmail) error {
	subject := fmt.Sprintf("Your reservation at %s is confirmed", s.restaurantName)
	body := s.renderBody(email)

	msg := []byte(
		"From: " + s.from + "\r\n" +
			"To: " + email.To + "\r\n" +
			"Subject: " + subject + "\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n" +
			"\r\n" +
			body,
	)

	if err := s.send(email.To, msg); err != nil {
		return err
	}

	s.logger.Info("Reservation email sent", slog.String("to", email.To))

	return nil
}

func (s *SMTPSender) send(to string, msg []byte) error {
	addr := net.JoinHostPort(s.host, s.port)

	conn, err := net.DialTimeout("tcp", addr, s.timeout)
	if err != nil {
		return errors.Wrap(err, "smtp dial failed")
	}
	if err := conn.SetDeadline(time.Now().Add(s.timeout)); err != nil {
		_ = conn.Close()

		return errors.Wrap(err, "failed to set smtp deadline")
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		_ = conn.Close()

		return errors.Wrap(err, "smtp handshake failed")
	}
	defer func() {
		_ = client.Close()
	}()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return errors.Wrap(err, "smtp starttls failed")
		}
	}

	if s.username != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			auth := smtp.PlainAuth("", s.username, s.password, s.host)
			if err := client.Auth(auth); err != nil {
				return errors.Wrap(err, "smtp auth failed")
			}
		}
	}

	if err := client.Mail(s.from); err != nil {
		return errors.Wrap(err, "smtp mail command failed")
	}
	if err := client.Rcpt(to); err != nil {
		return errors.Wrap(err, "smtp rcpt command failed")
	}

	writer, err := client.Data()
	if err != nil {
		return errors.Wrap(err, "smtp data command failed")
	}
	if _, err := writer.Write(msg); err != nil {
		return errors.Wrap(err, "smtp write failed")
	}
	if err := writer.Close(); err != nil {
		return errors.Wrap(err, "smtp write failed")
	}

	return errors.Wrap(client.Quit(), "smtp quit failed")
}

// renderBody builds the HTML body. The name and the extracted fields come
// from call data, so they are escaped before interpolation.
func (s *SMTPSender) renderBody(email *service.ReservationEmail) string {
	name := email.CustomerName
	if name == "" {
		name = "there"
	}

	return fmt.Sprintf(
		"<html><body>"+
			"<p>Hi %s,</p>"+
			"<p>Your reservation at %s is confirmed:</p>"+
			"<ul>"+
			"<li>Date: %s</li>"+
			"<li>Time: %s</li>"+
			"<li>Party size: %s</li>"+
			"</ul>"+
			"<p>We look forward to seeing you!</p>"+
			"</body></html>",
		html.EscapeString(name),
		html.EscapeString(s.restaurantName),
		html.EscapeString(email.Date),
		html.EscapeString(email.Time),
		html.EscapeString(email.NumberOfPeople),
	)
}
