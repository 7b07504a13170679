package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrMisconfigured = errors.New("config invalid")

type Config struct {
	Env        string
	Server     ServerConfig
	Auth       AuthConfig
	Mail       MailConfig
	Kafka      KafkaConfig
	Cloudinary CloudinaryConfig
	Postgres   PostgresConfig
	Redis      RedisConfig
	Log        LogConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	PublicBaseURL  string
	AllowedOrigins []string
	// TrustedProxies lists IPs/CIDRs whose X-Forwarded-For is honoured.
	// Empty means the socket peer address is always the client IP.
	TrustedProxies []string
}

type AuthConfig struct {
	JWTSecret                string
	JWTAlgorithm             string
	AccessTokenExpireMinutes int
	MailExpDays              int
	BcryptCost               int
}

type MailConfig struct {
	Transport      string
	Username       string
	Password       string
	From           string
	FromName       string
	Server         string
	Port           int
	StartTLS       bool
	SSLTLS         bool
	UseCredentials bool
	ValidateCerts  bool
	Workers        int
	QueueSize      int
}

type KafkaConfig struct {
	Broker   string
	Topic    string
	Username string
	Password string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	MeRateLimit int
	MeWindow    time.Duration
}

type LogConfig struct {
	Level string
}

// AccessTokenTTL is the lifetime of session access tokens.
func (c AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

// ConfirmationTokenTTL is the lifetime of email-confirmation tokens.
func (c AuthConfig) ConfirmationTokenTTL() time.Duration {
	return time.Duration(c.MailExpDays) * 24 * time.Hour
}

// Addr is the listen address for the HTTP server.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Load reads a .env file (outside prod) and builds the process configuration
// from the environment. The result is treated as immutable after startup.
func Load() (Config, error) {
	env := getenv("ENV", "dev")
	if env != "prod" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("Warning: .env not loaded: %v", err)
		}
	}
	return FromEnv(env)
}

// FromEnv builds a Config from the current environment without touching .env.
func FromEnv(env string) (Config, error) {
	p := &parser{}

	cfg := Config{
		Env: env,
		Server: ServerConfig{
			Host:           getenv("HOST", "127.0.0.1"),
			Port:           p.int("PORT", 8000),
			AllowedOrigins: splitList(getenv("ORIGINS", "http://localhost:3000,http://localhost:8000")),
			TrustedProxies: splitList(getenv("TRUSTED_PROXIES", "")),
		},
		Auth: AuthConfig{
			JWTSecret:                os.Getenv("JWT_SECRET_KEY"),
			JWTAlgorithm:             getenv("JWT_ALGORITHM", "HS256"),
			AccessTokenExpireMinutes: p.int("JWT_ACCESS_TOKEN_EXPIRE_MINUTES", 15),
			MailExpDays:              p.int("MAIL_EXP_DAYS", 7),
			BcryptCost:               p.int("BCRYPT_COST", 10),
		},
		Mail: MailConfig{
			Transport:      strings.ToLower(getenv("MAIL_TRANSPORT", "smtp")),
			Username:       os.Getenv("MAIL_USERNAME"),
			Password:       os.Getenv("MAIL_PASSWORD"),
			From:           getenv("MAIL_FROM", os.Getenv("MAIL_USERNAME")),
			FromName:       getenv("MAIL_FROM_NAME", "Rest API Service"),
			Server:         os.Getenv("MAIL_SERVER"),
			Port:           p.int("MAIL_PORT", 465),
			StartTLS:       p.bool("MAIL_STARTTLS", false),
			SSLTLS:         p.bool("MAIL_SSL_TLS", true),
			UseCredentials: p.bool("USE_CREDENTIALS", true),
			ValidateCerts:  p.bool("VALIDATE_CERTS", true),
			Workers:        p.int("MAIL_WORKERS", 2),
			QueueSize:      p.int("MAIL_QUEUE_SIZE", 100),
		},
		Kafka: KafkaConfig{
			Broker:   os.Getenv("KAFKA_BROKER"),
			Topic:    getenv("KAFKA_TOPIC", "confirmation-emails"),
			Username: os.Getenv("KAFKA_USERNAME"),
			Password: os.Getenv("KAFKA_PASSWORD"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: os.Getenv("CLD_NAME"),
			APIKey:    os.Getenv("CLD_API_KEY"),
			APISecret: os.Getenv("CLD_API_SECRET"),
			Folder:    getenv("CLD_FOLDER", "RestApp"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:        os.Getenv("REDIS_ADDR"),
			Password:    os.Getenv("REDIS_PASSWORD"),
			DB:          p.int("REDIS_DB", 0),
			MeRateLimit: p.int("ME_RATE_LIMIT", 5),
			MeWindow:    p.duration("ME_RATE_WINDOW", time.Minute),
		},
		Log: LogConfig{
			Level: strings.ToLower(getenv("LOG_LEVEL", "info")),
		},
	}
	cfg.Server.PublicBaseURL = strings.TrimRight(
		getenv("PUBLIC_BASE_URL", "http://"+cfg.Server.Addr()), "/")

	if p.err != nil {
		return Config{}, p.err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return fmt.Errorf("%w: JWT_SECRET_KEY is required", ErrMisconfigured)
	}
	for _, proxy := range c.Server.TrustedProxies {
		if net.ParseIP(proxy) == nil {
			if _, _, err := net.ParseCIDR(proxy); err != nil {
				return fmt.Errorf("%w: TRUSTED_PROXIES entry %q is not an IP or CIDR", ErrMisconfigured, proxy)
			}
		}
	}
	switch c.Auth.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("%w: JWT_ALGORITHM must be HS256, HS384 or HS512", ErrMisconfigured)
	}
	if c.Auth.AccessTokenExpireMinutes <= 0 {
		return fmt.Errorf("%w: JWT_ACCESS_TOKEN_EXPIRE_MINUTES must be positive", ErrMisconfigured)
	}
	if c.Auth.MailExpDays <= 0 {
		return fmt.Errorf("%w: MAIL_EXP_DAYS must be positive", ErrMisconfigured)
	}
	switch c.Mail.Transport {
	case "smtp", "kafka":
	default:
		return fmt.Errorf("%w: MAIL_TRANSPORT must be smtp or kafka", ErrMisconfigured)
	}
	if c.Mail.Transport == "kafka" && c.Kafka.Broker == "" {
		return fmt.Errorf("%w: KAFKA_BROKER is required for MAIL_TRANSPORT=kafka", ErrMisconfigured)
	}
	if c.Mail.Workers <= 0 || c.Mail.QueueSize <= 0 {
		return fmt.Errorf("%w: MAIL_WORKERS and MAIL_QUEUE_SIZE must be positive", ErrMisconfigured)
	}
	return nil
}

// parser keeps the first conversion error so Load can report it once.
type parser struct {
	err error
}

func (p *parser) int(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, err)
		return fallback
	}
	return v
}

func (p *parser) bool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(key, err)
		return fallback
	}
	return v
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		p.fail(key, err)
		return fallback
	}
	return v
}

func (p *parser) fail(key string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("%w: invalid %s: %v", ErrMisconfigured, key, err)
	}
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
