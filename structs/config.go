package structs

import "time"

type Config struct {
	Server     *ServerConfig
	Cors       *CorsConfig
	Database   *DatabaseConfig
	Cache      *CacheConfig
	Auth       *AuthConfig
	RateLimit  *RateLimitConfig
	Email      *EmailConfig
	Encryption *EncryptionConfig
}

type ServerConfig struct {
	AppName        string        // Haya
	Environment    string        // development, production
	Port           string        // :8082
	ReadTimeout    time.Duration // in seconds
	WriteTimeout   time.Duration // in seconds
	IdleTimeout    time.Duration // in seconds
	MaxHeaderBytes int           // in bytes
}

type CorsConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	MaxConns     int
	MinConns     int
	MaxLifetime  time.Duration // in seconds
	MaxIdleTime  time.Duration // in seconds
	ReadTimeout  time.Duration // in seconds
	WriteTimeout time.Duration // in seconds
}

type CacheConfig struct {
	Address      string
	Username     string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	MaxIdleConns int
	PoolTimeout  time.Duration
	IdleTimeout  time.Duration
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxRetries   int

	// TTLs for cached data
	SnapshotTTL time.Duration // catalog snapshots
	CartTTL     time.Duration // server-side carts
}

type AuthConfig struct {
	// Tokens are issued by the external auth provider; this service only
	// verifies them to extract an optional user id and the admin role.
	AccessTokenSecret string
}

type RateLimitConfig struct {
	Enabled       bool
	GeneralLimit  int
	GeneralWindow time.Duration
	AdminLimit    int
	AdminWindow   time.Duration
	OrderLimit    int
	OrderWindow   time.Duration
}

type EmailConfig struct {
	APIKey    string
	FromName  string
	FromEmail string
	// Checkout collects no customer email, so order confirmations are
	// delivered to the shop's own inbox.
	NotifyEmail string
	Enabled     bool
}

type EncryptionConfig struct {
	Key string // 32 bytes for AES-256
}
