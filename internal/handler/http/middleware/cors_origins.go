package middleware

import (
	"fmt"
	"net/url"
	"strings"
)

// AnyOrigin in the allowed list admits every origin.
const AnyOrigin = "*"

// OriginAllowlist matches Origin headers against configured origins.
// Comparison ignores case and a trailing slash.
type OriginAllowlist struct {
	any     bool
	origins map[string]struct{}
}

// NewOriginAllowlist validates origins and builds the allowlist. Each entry
// must be "*" or an http(s) scheme and host with an optional port, with no
// path, query or fragment.
func NewOriginAllowlist(origins []string) (*OriginAllowlist, error) {
	l := &OriginAllowlist{origins: make(map[string]struct{}, len(origins))}
	for _, o := range origins {
		o = strings.TrimSpace(o)
		switch {
		case o == "":
			continue
		case o == AnyOrigin:
			l.any = true
			continue
		}
		if err := checkOrigin(o); err != nil {
			return nil, err
		}
		l.origins[normalizeOrigin(o)] = struct{}{}
	}
	if !l.any && len(l.origins) == 0 {
		return nil, fmt.Errorf("cors: at least one allowed origin is required")
	}
	return l, nil
}

func checkOrigin(o string) error {
	u, err := url.Parse(o)
	if err != nil {
		return fmt.Errorf("cors: invalid origin %q: %w", o, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("cors: origin %q must use http or https", o)
	}
	if u.Host == "" {
		return fmt.Errorf("cors: origin %q has no host", o)
	}
	if (u.Path != "" && u.Path != "/") || u.RawQuery != "" || u.Fragment != "" || u.User != nil {
		return fmt.Errorf("cors: origin %q must be scheme://host[:port] only", o)
	}
	return nil
}

func normalizeOrigin(o string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(o)), "/")
}

// IsAllowed reports whether origin may read responses.
func (l *OriginAllowlist) IsAllowed(origin string) bool {
	if origin == "" {
		return false
	}
	if l.any {
		return true
	}
	_, ok := l.origins[normalizeOrigin(origin)]
	return ok
}
