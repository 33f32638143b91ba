package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	HTTP          HTTPConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Audit         AuditConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
}

// Load reads the process configuration once at startup. The returned value is
// treated as immutable and handed to each component explicitly.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.JWT.resolveSecret(); err != nil {
		return nil, err
	}
	if err := cfg.Password.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Audit.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOCKROOM_APP_ENV" required:"true"`
	Port         string `envconfig:"STOCKROOM_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STOCKROOM_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOCKROOM_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type HTTPConfig struct {
	ReadTimeout     time.Duration `envconfig:"STOCKROOM_HTTP_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"STOCKROOM_HTTP_WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `envconfig:"STOCKROOM_HTTP_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"STOCKROOM_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
	AllowedOrigins  []string      `envconfig:"STOCKROOM_HTTP_ALLOWED_ORIGINS"`
}

type DBConfig struct {
	DSN    string `envconfig:"STOCKROOM_DB_DSN"`
	Driver string `envconfig:"STOCKROOM_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"STOCKROOM_DB_HOST"`
	Port     int    `envconfig:"STOCKROOM_DB_PORT" default:"5432"`
	User     string `envconfig:"STOCKROOM_DB_USER"`
	Password string `envconfig:"STOCKROOM_DB_PASSWORD"`
	Name     string `envconfig:"STOCKROOM_DB_NAME"`
	SSLMode  string `envconfig:"STOCKROOM_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOCKROOM_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOCKROOM_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOCKROOM_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOCKROOM_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is the embedded SQLite one.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

// RedisConfig is optional; an empty URL and address disables Redis-backed features.
type RedisConfig struct {
	URL          string        `envconfig:"STOCKROOM_REDIS_URL"`
	Address      string        `envconfig:"STOCKROOM_REDIS_ADDR"`
	Password     string        `envconfig:"STOCKROOM_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOCKROOM_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOCKROOM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOCKROOM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOCKROOM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOCKROOM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOCKROOM_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"STOCKROOM_JWT_SECRET"`
	SecretFile        string `envconfig:"STOCKROOM_JWT_SECRET_FILE"`
	Issuer            string `envconfig:"STOCKROOM_JWT_ISSUER"`
	ExpirationMinutes int    `envconfig:"STOCKROOM_JWT_EXPIRATION_MINUTES" default:"30"`
}

// AccessTokenTTL is the lifetime of tokens minted by the login endpoint.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return DefaultAccessTokenTTL
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

func (j *JWTConfig) resolveSecret() error {
	if j.Secret == "" && j.SecretFile != "" {
		raw, err := os.ReadFile(j.SecretFile)
		if err != nil {
			return fmt.Errorf("reading %s: %w", EnvJWTSecretFile, err)
		}
		j.Secret = strings.TrimSpace(string(raw))
	}
	if j.Secret == "" {
		return fmt.Errorf("either %s or %s is required", EnvJWTSecret, EnvJWTSecretFile)
	}
	return nil
}

type PasswordConfig struct {
	Algorithm        string `envconfig:"STOCKROOM_PASSWORD_ALGORITHM" default:"bcrypt"`
	BcryptCost       int    `envconfig:"STOCKROOM_BCRYPT_COST" default:"12"`
	ArgonMemoryKB    int    `envconfig:"STOCKROOM_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int    `envconfig:"STOCKROOM_ARGON_TIME" default:"3"`
	ArgonParallelism int    `envconfig:"STOCKROOM_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int    `envconfig:"STOCKROOM_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int    `envconfig:"STOCKROOM_ARGON_KEY_LEN" default:"32"`
}

func (p PasswordConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(p.Algorithm)) {
	case "", PasswordAlgorithmBcrypt, PasswordAlgorithmArgon2id:
		return nil
	}
	return fmt.Errorf("%s must be %q or %q", EnvPasswordAlgorithm, PasswordAlgorithmBcrypt, PasswordAlgorithmArgon2id)
}

type AuditConfig struct {
	Mode string `envconfig:"STOCKROOM_AUDIT_MODE" default:"best_effort"`
}

// Strict reports whether audit writes must succeed for a mutation to commit.
func (a AuditConfig) Strict() bool {
	return strings.EqualFold(strings.TrimSpace(a.Mode), AuditModeStrict)
}

func (a AuditConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(a.Mode)) {
	case "", AuditModeBestEffort, AuditModeStrict:
		return nil
	}
	return fmt.Errorf("%s must be %q or %q", EnvAuditMode, AuditModeBestEffort, AuditModeStrict)
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"STOCKROOM_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginSubjectLimit  int           `envconfig:"STOCKROOM_AUTH_RATE_LIMIT_LOGIN_SUBJECT_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"STOCKROOM_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"STOCKROOM_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterIPLimit    int           `envconfig:"STOCKROOM_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
	RegisterLoginLimit int           `envconfig:"STOCKROOM_AUTH_RATE_LIMIT_REGISTER_LOGIN_LIMIT" default:"3"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STOCKROOM_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = DefaultSQLiteDSN
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range dbPartEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
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
