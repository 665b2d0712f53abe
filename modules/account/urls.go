package account

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/alqudsguide/backend/pkg/logger"
)

func (m *Module) clientURL(path string, kv ...string) string {
	u := strings.TrimRight(m.cfg.ClientURL, "/") + "/" + strings.TrimLeft(path, "/")
	q := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		q.Set(kv[i], kv[i+1])
	}
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (m *Module) oauthFailureURL(provider string, err error) string {
	return m.clientURL(m.cfg.OAuthFailurePath, "error", oauthFailureReason(err), "provider", provider)
}

func oauthAttrs(provider string, err error) []any {
	return []any{logger.Provider(provider), logger.Error(err), slog.String("reason", oauthFailureReason(err))}
}
