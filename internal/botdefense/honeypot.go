// Package botdefense rejects automated form submissions: a honeypot field
// check plus optional Cloudflare Turnstile challenge verification.
package botdefense

import (
	"errors"
)

// ErrBotDetected is returned when the honeypot field carries a value. The
// message is intentionally generic.
var ErrBotDetected = errors.New("submission rejected")

// CheckHoneypot rejects any submission whose honeypot field is non-empty.
// Humans never see the field, so any value, whitespace included, indicates
// automation. Callers must run this before rate limiting or persistence so
// bot traffic leaves no trace in either.
func CheckHoneypot(value string) error {
	if value != "" {
		return ErrBotDetected
	}
	return nil
}
