package middleware

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// IPExtractor identifies the client a request is counted against.
type IPExtractor interface {
	ExtractIP(r *http.Request) (string, error)
}

// RemoteAddrExtractor uses the TCP peer address. It cannot be spoofed by the
// client and is the default when no reverse proxy sits in front of the service.
type RemoteAddrExtractor struct{}

// ExtractIP returns r.RemoteAddr without its port.
//
// Examples:
//   - "192.168.1.1:54321" → "192.168.1.1"
//   - "[2001:db8::1]:8080" → "2001:db8::1"
//   - "127.0.0.1" → "127.0.0.1"
func (e *RemoteAddrExtractor) ExtractIP(r *http.Request) (string, error) {
	return extractIPFromAddr(r.RemoteAddr)
}

// TrustedProxyConfig lists the reverse proxies whose forwarding headers are believed.
type TrustedProxyConfig struct {
	Enabled      bool
	AllowedCIDRs []netip.Prefix
}

// ParseTrustedProxyConfig builds a TrustedProxyConfig from IPs or CIDR ranges.
// Single IPs become /32 or /128 prefixes. Enabling trust without any valid
// proxy is a configuration error so a typo cannot silently trust everyone.
func ParseTrustedProxyConfig(enabled bool, proxies []string) (TrustedProxyConfig, error) {
	cfg := TrustedProxyConfig{Enabled: enabled}
	if !enabled {
		return cfg, nil
	}

	for _, raw := range proxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		prefix, err := netip.ParsePrefix(raw)
		if err != nil {
			addr, addrErr := netip.ParseAddr(raw)
			if addrErr != nil {
				return TrustedProxyConfig{}, fmt.Errorf("invalid trusted proxy %q: must be an IP address or CIDR range", raw)
			}
			prefix = netip.PrefixFrom(addr, addr.BitLen())
		}
		cfg.AllowedCIDRs = append(cfg.AllowedCIDRs, prefix.Masked())
	}

	if len(cfg.AllowedCIDRs) == 0 {
		return TrustedProxyConfig{}, fmt.Errorf("proxy trust is enabled but no trusted proxies are configured")
	}
	return cfg, nil
}

// IsTrusted reports whether remoteAddr ("IP:port" or "IP") is a trusted proxy.
func (c TrustedProxyConfig) IsTrusted(remoteAddr string) bool {
	ip, err := extractIPFromAddr(remoteAddr)
	if err != nil {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range c.AllowedCIDRs {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// TrustedProxyExtractor reads X-Forwarded-For, then X-Real-IP, but only when
// the peer is a trusted proxy. Otherwise the headers are ignored.
type TrustedProxyExtractor struct {
	config TrustedProxyConfig
}

// NewTrustedProxyExtractor creates a new TrustedProxyExtractor with the given configuration.
func NewTrustedProxyExtractor(config TrustedProxyConfig) *TrustedProxyExtractor {
	return &TrustedProxyExtractor{config: config}
}

// NewIPExtractor picks the extractor matching config.
func NewIPExtractor(config TrustedProxyConfig) IPExtractor {
	if !config.Enabled {
		return &RemoteAddrExtractor{}
	}
	return NewTrustedProxyExtractor(config)
}

// ExtractIP returns the forwarded client IP for trusted peers and the peer
// address for everyone else.
func (e *TrustedProxyExtractor) ExtractIP(r *http.Request) (string, error) {
	if !e.config.Enabled || !e.config.IsTrusted(r.RemoteAddr) {
		return extractIPFromAddr(r.RemoteAddr)
	}

	if ip := parseFirstIP(r.Header.Get("X-Forwarded-For")); ip != "" {
		return ip, nil
	}
	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String(), nil
	}
	return extractIPFromAddr(r.RemoteAddr)
}

// extractIPFromAddr strips the port from "host:port", accepting bare IPs too.
func extractIPFromAddr(addr string) (string, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		if ip := net.ParseIP(strings.Trim(addr, "[]")); ip != nil {
			return ip.String(), nil
		}
		return "", fmt.Errorf("invalid address format: %s", addr)
	}
	return host, nil
}

// parseFirstIP returns the left-most entry of an X-Forwarded-For list, or ""
// when it is not an IP.
func parseFirstIP(s string) string {
	first, _, _ := strings.Cut(s, ",")
	if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
		return ip.String()
	}
	return ""
}
