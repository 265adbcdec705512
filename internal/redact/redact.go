// Package redact masks credential material in strings before they reach
// the log sink. Error chains routinely absorb connection URLs, tokens,
// and password fields from the layers below; the request log must keep
// the technical detail without keeping the secrets.
package redact

import "regexp"

// Placeholders substituted for matched secrets.
const (
	credentialPlaceholder = "[REDACTED_CREDENTIAL]"
	tokenPlaceholder      = "[REDACTED_TOKEN]"
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// rules covers the secret classes this server handles: userinfo in
// connection URLs, password key/value fragments, bearer credentials, and
// raw JWTs. Broader scrubbing (paths, hostnames, SQL) is deliberately out:
// it destroys the debuggability the log exists for.
var rules = []rule{
	{regexp.MustCompile(`(?i)\b([a-z][a-z0-9+.-]*://)[^@/\s]+@`), "$1" + credentialPlaceholder + "@"},
	{regexp.MustCompile(`(?i)\b(password|passwd|pwd|secret)(['"]?\s*[=:]\s*['"]?)[^'"&\s]+`), "$1$2" + credentialPlaceholder},
	{regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9_~+/.=-]+`), "Bearer " + tokenPlaceholder},
	{regexp.MustCompile(`\beyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\b`), tokenPlaceholder},
}

// String returns the input with every recognized secret replaced by a
// placeholder.
func String(s string) string {
	if s == "" {
		return s
	}
	for _, r := range rules {
		s = r.pattern.ReplaceAllString(s, r.placeholder)
	}
	return s
}

// Error renders an error for logging with secrets masked. A nil error
// renders as the empty string.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
