package notification

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"estate-api/internal/data/entity"

	"go.uber.org/zap"
)

const deliveryTimeout = 10 * time.Second

// Notifier renders account messages and hands them to the configured channels.
type Notifier struct {
	mailer      Mailer
	sms         SMSSender
	frontendURL string
	now         func() time.Time
	log         *zap.Logger
}

func NewNotifier(mailer Mailer, sms SMSSender, frontendURL string, log *zap.Logger) *Notifier {
	return &Notifier{
		mailer:      mailer,
		sms:         sms,
		frontendURL: frontendURL,
		now:         time.Now,
		log:         log.With(zap.String("component", "notifier")),
	}
}

func (n *Notifier) SendVerificationEmail(ctx context.Context, user *entity.User, token string, expiresAt time.Time) error {
	return n.sendMail(ctx, user.Email, "Verify your email", "verify", mailData{
		FirstName: firstName(user.FullName),
		Link:      n.verifyLink(token, user.Email),
		ExpiresIn: humanize(expiresAt.Sub(n.now())),
	})
}

func (n *Notifier) SendNewVerificationEmail(ctx context.Context, user *entity.User, token string, expiresAt time.Time) error {
	return n.sendMail(ctx, user.Email, "New verification link", "resend", mailData{
		FirstName: firstName(user.FullName),
		Link:      n.verifyLink(token, user.Email),
		ExpiresIn: humanize(expiresAt.Sub(n.now())),
	})
}

func (n *Notifier) SendWelcome(ctx context.Context, user *entity.User) error {
	return n.sendMail(ctx, user.Email, "Welcome to Brints Estate", "welcome", mailData{
		FirstName: firstName(user.FullName),
		Link:      n.frontendURL,
	})
}

func (n *Notifier) SendResetLink(ctx context.Context, user *entity.User, token string, expiresAt time.Time) error {
	link := fmt.Sprintf("%s/reset-password/%s/%s", n.frontendURL, url.PathEscape(token), url.PathEscape(user.Email))
	return n.sendMail(ctx, user.Email, "Reset your password", "reset", mailData{
		FirstName: firstName(user.FullName),
		Link:      link,
		ExpiresIn: humanize(expiresAt.Sub(n.now())),
	})
}

func (n *Notifier) SendOTP(ctx context.Context, phone, otp string, expiresAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	if err := n.sms.Send(ctx, phone, otpMessage(otp, expiresAt.Sub(n.now()))); err != nil {
		n.log.Error("Failed to send OTP", zap.Error(err), zap.String("phone", phone))
		return fmt.Errorf("send otp: %w", err)
	}
	return nil
}

func (n *Notifier) verifyLink(token, email string) string {
	q := url.Values{}
	q.Set("token", token)
	q.Set("email", email)
	return n.frontendURL + "/verify-email?" + q.Encode()
}

func (n *Notifier) sendMail(ctx context.Context, to, subject, tmpl string, data mailData) error {
	html, err := render(tmpl, data)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	if err := n.mailer.Send(ctx, to, subject, html); err != nil {
		n.log.Error("Failed to send email",
			zap.Error(err),
			zap.String("to", to),
			zap.String("template", tmpl),
		)
		return fmt.Errorf("send %s email: %w", tmpl, err)
	}
	return nil
}
