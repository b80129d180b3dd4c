// Package redact scrubs sensitive values from strings before they are
// logged. Sync passes run under per-user API keys and the store under a
// connection string; error text from either side can embed them.
package redact

import "regexp"

// Redaction placeholders
const (
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
)

var (
	// Connection strings with inline credentials
	dbConnRegex = regexp.MustCompile(`(?i)(postgres|postgresql|mysql)://[^@\s]+@`)

	// API keys and bearer tokens
	apiKeyRegex = regexp.MustCompile(
		`(?i)(api[_-]?key|token|secret|bearer|authorization)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`,
	)

	patternPlaceholders = []struct {
		pattern     *regexp.Regexp
		placeholder string
	}{
		{dbConnRegex, RedactedCredentialPlaceholder + "@"},
		{apiKeyRegex, "${1}${2}" + RedactedKeyPlaceholder},
	}
)

// String returns s with credentials and key material replaced by
// placeholders.
func String(s string) string {
	for _, p := range patternPlaceholders {
		s = p.pattern.ReplaceAllString(s, p.placeholder)
	}
	return s
}

// Error returns the redacted message of err, or the empty string for a
// nil error. Use this instead of err.Error() in log attributes.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
