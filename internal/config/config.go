package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"   validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth"       validate:"required"`
	SMTP       SMTPConfig       `mapstructure:"smtp"       validate:"required"`
	Cloudinary CloudinaryConfig `mapstructure:"cloudinary"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// BackendURL is the externally reachable base URL of this API, used to
	// build magic-link redemption URLs.
	BackendURL string `mapstructure:"backend_url" validate:"required,url"`

	// FrontendURL is the base URL of the web client, used for magic-link
	// verification redirects.
	FrontendURL string `mapstructure:"frontend_url" validate:"required,url"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	// JWTSecret signs session tokens; HMAC-SHA256 needs at least 32 bytes.
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`

	// TokenLifetimeDays is the fixed validity window of a session token.
	TokenLifetimeDays int `mapstructure:"token_lifetime_days" validate:"required,gt=0"`

	// TokenCacheSize bounds the verified-token cache population.
	TokenCacheSize int `mapstructure:"token_cache_size" validate:"required,gt=0"`

	// TokenCacheTTLSeconds bounds how long a verified token is accepted
	// without re-verification. This caps the staleness window for tokens
	// revoked before their natural expiry.
	TokenCacheTTLSeconds int `mapstructure:"token_cache_ttl_seconds" validate:"required,gt=0"`
}

// SMTPConfig contains outbound email delivery settings.
type SMTPConfig struct {
	Host      string `mapstructure:"host"       validate:"required"`
	Port      int    `mapstructure:"port"       validate:"required,gt=0,lt=65536"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	FromEmail string `mapstructure:"from_email" validate:"required,email"`
	FromName  string `mapstructure:"from_name"  validate:"required"`
}

// CloudinaryConfig contains image hosting settings. The group is optional;
// when the URL is empty, task image uploads are disabled.
type CloudinaryConfig struct {
	// URL is a cloudinary:// connection string carrying cloud name and
	// API credentials.
	URL string `mapstructure:"url"`
}
