package main

import (
	"time"

	"github.com/alqudsguide/backend/modules/account"
	"github.com/alqudsguide/backend/pkg/clientip"
	"github.com/alqudsguide/backend/pkg/cookie"
	"github.com/alqudsguide/backend/pkg/email"
	"github.com/alqudsguide/backend/pkg/environment"
	"github.com/alqudsguide/backend/pkg/httpserver"
	"github.com/alqudsguide/backend/pkg/redis"
	accountsvc "github.com/alqudsguide/backend/svc/account"
	"github.com/alqudsguide/backend/svc/auth"
	"github.com/alqudsguide/backend/svc/token"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	driverMongo    = "mongo"
	driverPostgres = "postgres"
	driverMemory   = "memory"
)

type appConfig struct {
	Env                   environment.Environment `env:"APP_ENV" envDefault:"development"`
	ServiceName           string                  `env:"SERVICE_NAME" envDefault:"alquds-guide"`
	LogLevel              string                  `env:"LOG_LEVEL" envDefault:""`
	StorageDriver         string                  `env:"STORAGE_DRIVER" envDefault:"mongo"`
	EnforcePasswordExpiry bool                    `env:"ENFORCE_PASSWORD_EXPIRY" envDefault:"false"`
	AuthRateLimit         int                     `env:"AUTH_RATE_LIMIT" envDefault:"5"`
	AuthRateWindow        time.Duration           `env:"AUTH_RATE_WINDOW" envDefault:"15m"`
	APIRateLimit          int                     `env:"API_RATE_LIMIT" envDefault:"100"`
	APIRateWindow         time.Duration           `env:"API_RATE_WINDOW" envDefault:"15m"`
	HealthTimeout         time.Duration           `env:"HEALTH_TIMEOUT" envDefault:"3s"`
	NotifyTimeout         time.Duration           `env:"NOTIFY_TIMEOUT" envDefault:"10s"`
	MetricsNamespace      string                  `env:"METRICS_NAMESPACE" envDefault:"alquds_guide"`

	HTTP     httpserver.Config
	Account  accountsvc.Config
	Routes   account.Config
	Token    token.Config
	Cookie   cookie.Config
	ClientIP clientip.Config
	Email    email.Config
	SMTP     email.SMTPConfig
	Redis    redis.Config
	OAuth    auth.OAuthConfig
	Google   auth.GoogleConfig
	Facebook auth.FacebookConfig
}
