package clientip

import (
	"net"
	"net/http"
	"strings"
)

type Config struct {
	// TrustedHeader names a single header set by the edge, e.g. CF-Connecting-IP.
	TrustedHeader string `env:"CLIENT_IP_HEADER" envDefault:""`
	// TrustedProxies is the number of proxies appending to X-Forwarded-For.
	TrustedProxies int `env:"TRUSTED_PROXIES" envDefault:"0"`
}

type Resolver struct {
	header  string
	proxies int
}

type Option func(*Resolver)

func WithTrustedHeader(name string) Option {
	return func(r *Resolver) { r.header = http.CanonicalHeaderKey(strings.TrimSpace(name)) }
}

func WithTrustedProxies(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.proxies = n
		}
	}
}

func New(opts ...Option) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func NewFromConfig(cfg Config) *Resolver {
	return New(WithTrustedHeader(cfg.TrustedHeader), WithTrustedProxies(cfg.TrustedProxies))
}

// IP returns the normalized client address, or "" when none parses.
func (res *Resolver) IP(r *http.Request) string {
	if res.header != "" {
		if ip := parseIP(r.Header.Get(res.header)); ip != "" {
			return ip
		}
	}

	if res.proxies > 0 {
		var hops []string
		for _, h := range r.Header.Values("X-Forwarded-For") {
			for part := range strings.SplitSeq(h, ",") {
				hops = append(hops, strings.TrimSpace(part))
			}
		}
		if idx := len(hops) - res.proxies; idx >= 0 && idx < len(hops) {
			if ip := parseIP(hops[idx]); ip != "" {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

func parseIP(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return ""
	}
	return ip.String()
}
