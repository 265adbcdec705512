package config

// Config holds all application configuration parameters, loaded from
// environment variables and an optional config file. Validation tags
// describe the constraints enforced by Validate.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig holds HTTP server level settings.
type ServerConfig struct {
	// Port is the TCP port the server listens on.
	Port int `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	// LogLevel sets the minimum severity emitted by the logger.
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// LogFormat selects the handler: "json" for machine-readable output,
	// "text" for human-readable development output.
	LogFormat string `mapstructure:"log_format" validate:"required,oneof=json text"`
	// CORSAllowedOrigins lists origins allowed to call the API from a
	// browser. "*" allows any origin.
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. When empty the server
	// runs with in-memory storage, which is intended for development
	// and tests only.
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// AuthConfig holds authentication and token related settings.
type AuthConfig struct {
	// TokenSecret signs and verifies access tokens. It must be at least
	// 32 characters long.
	TokenSecret string `mapstructure:"token_secret" validate:"required,min=32"`
	// TokenLifetimeMinutes is how long an issued token stays valid.
	TokenLifetimeMinutes int `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	// BcryptCost overrides the bcrypt work factor. Zero selects the
	// library default.
	BcryptCost int `mapstructure:"bcrypt_cost" validate:"omitempty,gte=4,lte=31"`
}

// RateLimitConfig selects and configures the rate limit counter backend.
type RateLimitConfig struct {
	// Backend is either "memory" (single process) or "redis" (shared
	// across replicas).
	Backend string `mapstructure:"backend" validate:"required,oneof=memory redis"`
	// RedisAddr is the host:port of the Redis server. Required when
	// Backend is "redis".
	RedisAddr string `mapstructure:"redis_addr" validate:"required_if=Backend redis"`
	// RedisDB selects the Redis logical database.
	RedisDB int `mapstructure:"redis_db" validate:"gte=0"`
	// KeyPrefix namespaces counter keys so multiple deployments can
	// share one Redis instance.
	KeyPrefix string `mapstructure:"key_prefix"`
}
