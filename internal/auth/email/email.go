// Package email delivers account-flow mail: confirmation codes and password
// reset codes. Handlers never talk SMTP directly; they depend on Sender so
// tests and dev environments can swap in the log sender.
package email

import "context"

// Sender delivers a single message to one recipient.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// ConfirmationBody renders the email-confirmation message for a code.
func ConfirmationBody(username, code string) (subject, body string) {
	subject = "Confirm your email"
	body = "Hi " + username + ",\r\n\r\n" +
		"Your confirmation code is: " + code + "\r\n\r\n" +
		"It expires in 10 minutes. If you did not create an account, you can ignore this message.\r\n"
	return subject, body
}

// AccountDeletionBody renders the delete-confirmation message for a code.
func AccountDeletionBody(username, code string) (subject, body string) {
	subject = "Confirm account deletion"
	body = "Hi " + username + ",\r\n\r\n" +
		"Your account deletion code is: " + code + "\r\n\r\n" +
		"It expires in 10 minutes. If you did not request deletion, change your password now.\r\n"
	return subject, body
}

// PasswordResetBody renders the password-reset message for a code.
func PasswordResetBody(username, code string) (subject, body string) {
	subject = "Reset your password"
	body = "Hi " + username + ",\r\n\r\n" +
		"Your password reset code is: " + code + "\r\n\r\n" +
		"It expires in 10 minutes. If you did not request a reset, you can ignore this message.\r\n"
	return subject, body
}
