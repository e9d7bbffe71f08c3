package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Orders        OrdersConfig
	GroupOrders   GroupOrdersConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"SFCONNECT_APP_ENV" required:"true"`
	Port         string `envconfig:"SFCONNECT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SFCONNECT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SFCONNECT_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"SFCONNECT_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SFCONNECT_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SFCONNECT_DB_DSN"`
	Driver string `envconfig:"SFCONNECT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SFCONNECT_DB_HOST"`
	LegacyPort     int    `envconfig:"SFCONNECT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SFCONNECT_DB_USER"`
	LegacyPassword string `envconfig:"SFCONNECT_DB_PASSWORD"`
	LegacyName     string `envconfig:"SFCONNECT_DB_NAME"`
	LegacySSLMode  string `envconfig:"SFCONNECT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SFCONNECT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SFCONNECT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SFCONNECT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SFCONNECT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SFCONNECT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SFCONNECT_REDIS_ADDR"`
	Password     string        `envconfig:"SFCONNECT_REDIS_PASSWORD"`
	DB           int           `envconfig:"SFCONNECT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SFCONNECT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SFCONNECT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SFCONNECT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SFCONNECT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SFCONNECT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SFCONNECT_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SFCONNECT_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SFCONNECT_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"SFCONNECT_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SFCONNECT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SFCONNECT_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SFCONNECT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SFCONNECT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SFCONNECT_ARGON_KEY_LEN" default:"32"`
}

type OrdersConfig struct {
	MaxItemsPerOrder int `envconfig:"SFCONNECT_ORDERS_MAX_ITEMS" default:"50"`
	ListPageSize     int `envconfig:"SFCONNECT_ORDERS_LIST_PAGE_SIZE" default:"20"`
}

type GroupOrdersConfig struct {
	MaxDeadline time.Duration `envconfig:"SFCONNECT_GROUP_ORDERS_MAX_DEADLINE" default:"168h"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SFCONNECT_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SFCONNECT_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SFCONNECT_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SFCONNECT_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"SFCONNECT_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"SFCONNECT_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SFCONNECT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SFCONNECT_AUTO_MIGRATE" default:"false"`
}

// ensureDSN builds a postgres DSN out of the legacy host/user/name variables
// when SFCONNECT_DB_DSN is not set directly.
func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	var missing []string
	for _, legacy := range []struct {
		env   string
		value string
	}{
		{EnvDBHost, db.LegacyHost},
		{EnvDBUser, db.LegacyUser},
		{EnvDBName, db.LegacyName},
	} {
		if legacy.value == "" {
			missing = append(missing, legacy.env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	db.DSN = db.legacyDSN()
	return nil
}

func (db *DBConfig) legacyDSN() string {
	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}
	if db.LegacySSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {db.LegacySSLMode}}.Encode()
	}
	return u.String()
}
