package account

import "time"

// Config holds the lifecycle settings loaded from the environment.
type Config struct {
	ClientURL              string        `env:"CLIENT_URL" envDefault:"http://localhost:3000"`
	SignupRole             Role          `env:"SIGNUP_ROLE" envDefault:"admin"`
	SessionTTL             time.Duration `env:"SESSION_TOKEN_TTL" envDefault:"168h"`
	SignupSessionTTL       time.Duration `env:"SIGNUP_SESSION_TOKEN_TTL" envDefault:"24h"`
	VerifyEmailPath        string        `env:"VERIFY_EMAIL_PATH" envDefault:"/verify-email"`
	ResetPasswordPath      string        `env:"RESET_PASSWORD_PATH" envDefault:"/reset-password"`
	ConfirmEmailChangePath string        `env:"CONFIRM_EMAIL_CHANGE_PATH" envDefault:"/confirm-email-change"`
}
