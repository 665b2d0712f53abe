package cookie

import (
	"strings"

	"github.com/alqudsguide/backend/pkg/environment"
)

type Config struct {
	// Secrets is a comma-separated list; the first one signs.
	Secrets string `env:"COOKIE_SECRETS" envDefault:""`
	Domain  string `env:"COOKIE_DOMAIN" envDefault:""`
}

func (c Config) parseSecrets() []string {
	var secrets []string
	for s := range strings.SplitSeq(c.Secrets, ",") {
		if s = strings.TrimSpace(s); s != "" {
			secrets = append(secrets, s)
		}
	}
	return secrets
}

// NewFromConfig builds a Manager for env. Extra options are applied last.
func NewFromConfig(cfg Config, env environment.Environment, opts ...Option) (*Manager, error) {
	all := ForEnvironment(env)
	if cfg.Domain != "" {
		all = append(all, WithDomain(cfg.Domain))
	}
	return New(cfg.parseSecrets(), append(all, opts...)...)
}
