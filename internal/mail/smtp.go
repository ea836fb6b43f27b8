package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"teklip/marketplace/internal/config"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const dialTimeout = 10 * time.Second

type SMTPNotifier struct {
	cfg    config.Mail
	tokens oauth2.TokenSource
	log    *zap.Logger
}

// NewSMTPNotifier sends over implicit TLS. With OAuth credentials it
// authenticates with XOAUTH2 using a token refreshed from REFRESH_TOKEN,
// otherwise with PLAIN.
func NewSMTPNotifier(cfg config.Mail, log *zap.Logger) *SMTPNotifier {
	n := &SMTPNotifier{cfg: cfg, log: log}
	if cfg.UsesOAuth() {
		oc := &oauth2.Config{
			ClientID:     cfg.OAuthClientID,
			ClientSecret: cfg.OAuthClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"https://mail.google.com/"},
		}
		n.tokens = oauth2.ReuseTokenSource(nil, oc.TokenSource(context.Background(), &oauth2.Token{RefreshToken: cfg.OAuthRefreshToken}))
	}
	return n
}

func (n *SMTPNotifier) Send(ctx context.Context, to string, tmpl Template, data CodeData) error {
	msg, err := render(tmpl, data)
	if err != nil {
		return err
	}
	auth, err := n.auth()
	if err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}

	addr := net.JoinHostPort(n.cfg.SMTPHost, strconv.Itoa(n.cfg.SMTPPort))
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: dialTimeout},
		Config:    &tls.Config{ServerName: n.cfg.SMTPHost},
	}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, n.cfg.SMTPHost)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Close()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(n.cfg.From); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(buildMessage(n.cfg.From, to, msg)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	if err := client.Quit(); err != nil {
		n.log.Debug("smtp quit", zap.Error(err))
	}
	return nil
}

func (n *SMTPNotifier) auth() (smtp.Auth, error) {
	if n.tokens == nil {
		return smtp.PlainAuth("", n.cfg.SMTPUser, n.cfg.SMTPPassword, n.cfg.SMTPHost), nil
	}
	tok, err := n.tokens.Token()
	if err != nil {
		return nil, err
	}
	user := n.cfg.OAuthEmail
	if user == "" {
		user = n.cfg.From
	}
	return xoauth2{user: user, token: tok.AccessToken}, nil
}

func buildMessage(from, to string, msg message) []byte {
	return []byte(
		"From: " + from + "\r\n" +
			"To: " + to + "\r\n" +
			"Subject: " + msg.Subject + "\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=\"utf-8\"\r\n" +
			"\r\n" +
			msg.Body,
	)
}

// xoauth2 implements the SASL XOAUTH2 mechanism used by Gmail.
type xoauth2 struct {
	user  string
	token string
}

func (a xoauth2) Start(server *smtp.ServerInfo) (string, []byte, error) {
	if !server.TLS {
		return "", nil, errors.New("xoauth2 requires TLS")
	}
	resp := "user=" + a.user + "\x01auth=Bearer " + a.token + "\x01\x01"
	return "XOAUTH2", []byte(resp), nil
}

// Next answers the server's error challenge with an empty response so the
// server reports the failure.
func (a xoauth2) Next(_ []byte, more bool) ([]byte, error) {
	if more {
		return []byte{}, nil
	}
	return nil, nil
}
