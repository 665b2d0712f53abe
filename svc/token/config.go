package token

import "time"

const (
	DefaultSessionTTL       = 7 * 24 * time.Hour
	DefaultSignupSessionTTL = 24 * time.Hour
	DefaultActionTTL        = 15 * time.Minute
)

// Config holds signing secrets and lifetimes.
type Config struct {
	SessionSecret    string        `env:"SESSION_TOKEN_SECRET,required"`
	ActionSecret     string        `env:"ACTION_TOKEN_SECRET,required"`
	Issuer           string        `env:"TOKEN_ISSUER" envDefault:"alquds-guide"`
	SessionTTL       time.Duration `env:"SESSION_TOKEN_TTL" envDefault:"168h"`
	SignupSessionTTL time.Duration `env:"SIGNUP_SESSION_TOKEN_TTL" envDefault:"24h"`
	ActionTTL        time.Duration `env:"ACTION_TOKEN_TTL" envDefault:"15m"`
}
