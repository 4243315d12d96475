package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	GraphQL      GraphQLConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CRM_APP_ENV" required:"true"`
	Port         string `envconfig:"CRM_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CRM_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CRM_LOG_WARN_STACK" default:"false"`

	CORSAllowedOrigins []string `envconfig:"CRM_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind        string `envconfig:"CRM_SERVICE_KIND" default:"api"`
	MetricsPort string `envconfig:"CRM_METRICS_PORT" default:"9090"`
}

type DBConfig struct {
	DSN    string `envconfig:"CRM_DB_DSN"`
	Driver string `envconfig:"CRM_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CRM_DB_HOST"`
	LegacyPort     int    `envconfig:"CRM_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CRM_DB_USER"`
	LegacyPassword string `envconfig:"CRM_DB_PASSWORD"`
	LegacyName     string `envconfig:"CRM_DB_NAME"`
	LegacySSLMode  string `envconfig:"CRM_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CRM_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CRM_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CRM_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CRM_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"CRM_DB_SLOW_QUERY_THRESHOLD" default:"200ms"`
}

// IsSQLite reports whether the store runs on the embedded SQLite driver.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

// RedisConfig is optional. Without a URL or address the cron worker falls back
// to in-process job locks.
type RedisConfig struct {
	URL          string        `envconfig:"CRM_REDIS_URL"`
	Address      string        `envconfig:"CRM_REDIS_ADDR"`
	Password     string        `envconfig:"CRM_REDIS_PASSWORD"`
	DB           int           `envconfig:"CRM_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CRM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CRM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CRM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CRM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CRM_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CRM_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CRM_AUTO_MIGRATE" default:"false"`
}

type GraphQLConfig struct {
	Endpoint string        `envconfig:"CRM_GRAPHQL_ENDPOINT" default:"http://localhost:8080/graphql"`
	Timeout  time.Duration `envconfig:"CRM_GRAPHQL_TIMEOUT" default:"20s"`
}

type CronConfig struct {
	TickInterval time.Duration `envconfig:"CRM_CRON_TICK_INTERVAL" default:"30s"`
	LockTTL      time.Duration `envconfig:"CRM_CRON_LOCK_TTL" default:"10m"`

	HeartbeatLog     string `envconfig:"CRM_CRON_HEARTBEAT_LOG" default:"/tmp/crm_heartbeat_log.txt"`
	LowStockLog      string `envconfig:"CRM_CRON_LOW_STOCK_LOG" default:"/tmp/low_stock_updates_log.txt"`
	CleanupLog       string `envconfig:"CRM_CRON_CLEANUP_LOG" default:"/tmp/customer_cleanup_log.txt"`
	OrderReminderLog string `envconfig:"CRM_CRON_ORDER_REMINDER_LOG" default:"/tmp/order_reminders_log.txt"`
	ReportLog        string `envconfig:"CRM_CRON_REPORT_LOG" default:"/tmp/crm_report_log.txt"`

	LowStockThreshold int           `envconfig:"CRM_LOW_STOCK_THRESHOLD" default:"10"`
	LowStockIncrement int           `envconfig:"CRM_LOW_STOCK_INCREMENT" default:"10"`
	CleanupWindow     time.Duration `envconfig:"CRM_CLEANUP_WINDOW" default:"8760h"`
	ReminderWindow    time.Duration `envconfig:"CRM_REMINDER_WINDOW" default:"168h"`
	ReportPageSize    int           `envconfig:"CRM_REPORT_PAGE_SIZE" default:"500"`
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
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
