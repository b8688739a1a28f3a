package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable consumed by the API.
const EnvPrefix = "ESTILO"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	CORS          CORSConfig
	WhatsApp      WhatsAppConfig
	Frontend      FrontendConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ESTILO_APP_ENV" default:"dev"`
	Port         string `envconfig:"ESTILO_APP_PORT" default:"8000"`
	LogLevel     string `envconfig:"ESTILO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ESTILO_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"ESTILO_APP_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"ESTILO_DB_DSN"`

	Host     string `envconfig:"ESTILO_DB_HOST"`
	Port     int    `envconfig:"ESTILO_DB_PORT" default:"5432"`
	User     string `envconfig:"ESTILO_DB_USER"`
	Password string `envconfig:"ESTILO_DB_PASSWORD"`
	Name     string `envconfig:"ESTILO_DB_NAME"`
	SSLMode  string `envconfig:"ESTILO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ESTILO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ESTILO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ESTILO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ESTILO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ESTILO_REDIS_URL"`
	Address      string        `envconfig:"ESTILO_REDIS_ADDR"`
	Password     string        `envconfig:"ESTILO_REDIS_PASSWORD"`
	DB           int           `envconfig:"ESTILO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ESTILO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ESTILO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ESTILO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ESTILO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ESTILO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint was configured. Auth rate limiting
// is skipped when it was not.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"ESTILO_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ESTILO_JWT_ISSUER" default:"estilo-api"`
	AccessTTLMinutes  int    `envconfig:"ESTILO_JWT_ACCESS_TTL_MINUTES" default:"60"`
	RefreshTTLMinutes int    `envconfig:"ESTILO_JWT_REFRESH_TTL_MINUTES" default:"43200"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	return time.Duration(j.AccessTTLMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token lifetime.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(j.RefreshTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ESTILO_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ESTILO_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ESTILO_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ESTILO_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ESTILO_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"ESTILO_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"ESTILO_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"ESTILO_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"ESTILO_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"ESTILO_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"ESTILO_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"ESTILO_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type WhatsAppConfig struct {
	BaseURL       string        `envconfig:"ESTILO_WHATSAPP_API_URL" default:"https://graph.facebook.com/v17.0"`
	Token         string        `envconfig:"ESTILO_WHATSAPP_API_TOKEN"`
	PhoneNumberID string        `envconfig:"ESTILO_WHATSAPP_PHONE_NUMBER_ID"`
	CountryCode   string        `envconfig:"ESTILO_WHATSAPP_COUNTRY_CODE" default:"55"`
	Timeout       time.Duration `envconfig:"ESTILO_WHATSAPP_TIMEOUT" default:"10s"`
}

// Enabled reports whether WhatsApp credentials were configured. The
// notification endpoints respond with an upstream error when they were not.
func (w WhatsAppConfig) Enabled() bool {
	return w.Token != "" && w.PhoneNumberID != ""
}

type FrontendConfig struct {
	BaseURL string `envconfig:"ESTILO_FRONTEND_URL" default:"https://lu-estilo.com.br"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	parts := []struct {
		env   string
		value string
	}{
		{"ESTILO_DB_HOST", db.Host},
		{"ESTILO_DB_USER", db.User},
		{"ESTILO_DB_NAME", db.Name},
	}
	for _, part := range parts {
		if part.value == "" {
			missing = append(missing, part.env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either ESTILO_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
