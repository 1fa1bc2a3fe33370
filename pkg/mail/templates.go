package mail

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	SubjectVerification  = "Verification Code for Student Feedback System"
	SubjectPasswordReset = "Password Reset Request"
)

// VerificationMail 邮箱验证码邮件
func VerificationMail(username, code string) (subject, body string) {
	body = fmt.Sprintf(
		"Hello %s,\n\nYour verification code is: %s\n\nThis code will expire in 30 minutes.\n",
		username, code,
	)
	return SubjectVerification, body
}

// ResetLink 拼接前端重置密码链接
func ResetLink(frontendURL, token string) string {
	return strings.TrimRight(frontendURL, "/") + "/reset-password?token=" + url.QueryEscape(token)
}

// PasswordResetMail 重置密码邮件
func PasswordResetMail(frontendURL, token string) (subject, body string) {
	body = fmt.Sprintf(
		"You requested a password reset.\n\nOpen the link below to choose a new password:\n%s\n\n"+
			"This link will expire in 1 hour. If you did not request this, you can ignore this email.\n",
		ResetLink(frontendURL, token),
	)
	return SubjectPasswordReset, body
}
