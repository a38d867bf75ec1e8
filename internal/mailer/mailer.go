// Package mailer delivers the transactional emails behind the auth token
// flows: address verification, password reset, and account invitations.
package mailer

import (
	"context"
	"fmt"
)

type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// VerificationMessage builds the email-verification message. The link lands
// on the dashboard, which calls the verify endpoint with the token.
func VerificationMessage(to, name, baseURL, token string) Message {
	link := fmt.Sprintf("%s/verify-email/%s", baseURL, token)
	return Message{
		To:      to,
		Subject: "Verify your email address",
		Text: fmt.Sprintf(
			"Hi %s,\n\nPlease verify your email address by opening the link below. The link expires in 24 hours.\n\n%s\n",
			name, link),
		HTML: fmt.Sprintf(
			`<p>Hi %s,</p><p>Please verify your email address by clicking <a href="%s">this link</a>. The link expires in 24 hours.</p>`,
			name, link),
	}
}

func PasswordResetMessage(to, name, baseURL, token string) Message {
	link := fmt.Sprintf("%s/reset-password/%s", baseURL, token)
	return Message{
		To:      to,
		Subject: "Reset your password",
		Text: fmt.Sprintf(
			"Hi %s,\n\nA password reset was requested for your account. Open the link below to choose a new password. The link expires in 1 hour.\n\nIf you did not request this, you can ignore this email.\n\n%s\n",
			name, link),
		HTML: fmt.Sprintf(
			`<p>Hi %s,</p><p>A password reset was requested for your account. Click <a href="%s">this link</a> to choose a new password. The link expires in 1 hour.</p><p>If you did not request this, you can ignore this email.</p>`,
			name, link),
	}
}

func InvitationMessage(to, name, baseURL, token string) Message {
	link := fmt.Sprintf("%s/activate-account/%s", baseURL, token)
	return Message{
		To:      to,
		Subject: "You have been invited to WorkPulse",
		Text: fmt.Sprintf(
			"Hi %s,\n\nYou have been invited to join your team on WorkPulse. Open the link below to set up your account. The invitation expires in 24 hours.\n\n%s\n",
			name, link),
		HTML: fmt.Sprintf(
			`<p>Hi %s,</p><p>You have been invited to join your team on WorkPulse. Click <a href="%s">this link</a> to set up your account. The invitation expires in 24 hours.</p>`,
			name, link),
	}
}
