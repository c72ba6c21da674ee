package respond

import "regexp"

// redactions mask secrets that drivers tend to echo in error strings.
var redactions = []struct {
	re   *regexp.Regexp
	repl string
}{
	// userinfo in postgres:// and redis:// URLs, including the empty user form.
	{regexp.MustCompile(`://([^:/@\s]*):([^@\s]+)@`), "://$1:****@"},
	// libpq key=value DSNs.
	{regexp.MustCompile(`(?i)(password=)(\S+)`), "${1}****"},
	// the API key header or an api_key parameter.
	{regexp.MustCompile(`(?i)(x-api-key[:=]\s*|api[_-]?key[:=]\s*)(\S+)`), "${1}****"},
}

// SanitizeError returns err's message with credentials masked. It is used
// for every error that is logged but not shown to the client.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, r := range redactions {
		msg = r.re.ReplaceAllString(msg, r.repl)
	}
	return msg
}
