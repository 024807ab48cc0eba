package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig      `envPrefix:"MANIFOLD_APP_"`
	Server   ServerConfig   `envPrefix:"MANIFOLD_SERVER_"`
	Log      LogConfig      `envPrefix:"MANIFOLD_LOG_"`
	Database DatabaseConfig `envPrefix:"MANIFOLD_DATABASE_"`
	KeyValue KeyValueConfig `envPrefix:"MANIFOLD_KV_"`
	Session  SessionConfig  `envPrefix:"MANIFOLD_SESSION_"`
	Mail     MailConfig     `envPrefix:"MANIFOLD_MAIL_"`
	Auth     AuthConfig     `envPrefix:"MANIFOLD_AUTH_"`
	Secret   SecretConfig   `envPrefix:"MANIFOLD_SECRET_"`
}

type AppConfig struct {
	Name string `env:"NAME" envDefault:"manifold"`
	// URL is the backend base URL. ClientURL is the frontend base used when
	// building confirmation links embedded in emails.
	URL       string `env:"URL" envDefault:"http://localhost:8080"`
	ClientURL string `env:"CLIENT_URL" envDefault:"http://localhost:3000"`
}

type ServerConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
	Host string `env:"HOST" envDefault:"localhost"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

type DatabaseConfig struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DSN" envDefault:"manifold.db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type KeyValueConfig struct {
	Driver   string `env:"DRIVER" envDefault:"redis"`
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB" envDefault:"0"`
}

type SessionConfig struct {
	Enabled  bool          `env:"ENABLED" envDefault:"true"`
	Store    string        `env:"STORE" envDefault:"memory"`
	Name     string        `env:"NAME" envDefault:"manifold_session"`
	MaxAge   time.Duration `env:"MAX_AGE" envDefault:"24h"`
	Path     string        `env:"PATH" envDefault:"/"`
	Domain   string        `env:"DOMAIN" envDefault:""`
	Secure   bool          `env:"SECURE" envDefault:"false"`
	HttpOnly bool          `env:"HTTP_ONLY" envDefault:"true"`
	SameSite string        `env:"SAME_SITE" envDefault:"lax"`
}

type MailConfig struct {
	Host         string `env:"HOST" envDefault:"localhost"`
	Port         int    `env:"PORT" envDefault:"587"`
	Username     string `env:"USERNAME" envDefault:""`
	Password     string `env:"PASSWORD" envDefault:""`
	Encryption   string `env:"ENCRYPTION" envDefault:"starttls"`
	FromAddress  string `env:"FROM_ADDRESS" envDefault:""`
	FromName     string `env:"FROM_NAME" envDefault:""`
	TemplatesDir string `env:"TEMPLATES_DIR" envDefault:""`
}

// AuthConfig holds the argon2id parameters and the pepper. The pepper is an
// out-of-band secret mixed into every password hash and is never stored
// alongside one; it has no default on purpose.
type AuthConfig struct {
	Pepper           string `env:"PEPPER"`
	ArgonMemory      uint32 `env:"ARGON_MEMORY" envDefault:"32768"`
	ArgonIterations  uint32 `env:"ARGON_ITERATIONS" envDefault:"40"`
	ArgonParallelism uint8  `env:"ARGON_PARALLELISM" envDefault:"2"`
	ArgonSaltLength  uint32 `env:"ARGON_SALT_LENGTH" envDefault:"16"`
	ArgonKeyLength   uint32 `env:"ARGON_KEY_LENGTH" envDefault:"32"`
}

// SecretConfig holds the two independent confirmation token secrets.
// SecretKey must be exactly 32 bytes (v4.local symmetric key); HMACSecret is
// the implicit assertion, required alongside the key to decrypt or forge a
// token. Rotating either invalidates every outstanding token.
type SecretConfig struct {
	SecretKey                string        `env:"KEY"`
	HMACSecret               string        `env:"HMAC"`
	KeyPrefix                string        `env:"KEY_PREFIX" envDefault:"MANIFOLD"`
	TokenExpiration          time.Duration `env:"TOKEN_EXPIRATION" envDefault:"30m"`
	PasswordChangeExpiration time.Duration `env:"PASSWORD_CHANGE_EXPIRATION" envDefault:"60m"`
}

func LoadConfig(cfg any) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	return env.Parse(cfg)
}
