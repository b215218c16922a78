package auth

import "crypto/subtle"

// PasswordChecker compares a submitted teacher password against the
// configured secret. Injected into handlers so the comparison is testable
// and the secret never appears as a literal in handler code.
type PasswordChecker func(candidate string) bool

// NewPasswordChecker builds a constant-time checker for the given secret.
// An empty secret matches nothing, so an unset config locks the dashboard
// rather than leaving it open.
func NewPasswordChecker(secret string) PasswordChecker {
	return func(candidate string) bool {
		if secret == "" {
			return false
		}
		return subtle.ConstantTimeCompare([]byte(candidate), []byte(secret)) == 1
	}
}
