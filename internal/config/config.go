package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	RunAddress    string `env:"RUN_ADDRESS"`
	DatabaseDSN   string `env:"DATABASE_URI"`
	MigrationsDir string `env:"MIGRATIONS_DIR"`
	JWTSecret     string `env:"JWT_SECRET"`
	RedisAddr     string `env:"REDIS_ADDR"`
	OTLPEndpoint  string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	LockTimeout       time.Duration `env:"LOCK_TIMEOUT"`
	PublishTimeout    time.Duration `env:"PUBLISH_TIMEOUT"`
	LifecycleInterval time.Duration `env:"LIFECYCLE_INTERVAL"`
	BatchJobWorkers   uint          `env:"BATCH_JOB_WORKERS"`

	PriceLink           decimal.Decimal `env:"PRICE_LINK"`
	PriceArticle        decimal.Decimal `env:"PRICE_ARTICLE"`
	RenewalPeriod       time.Duration   `env:"RENEWAL_PERIOD"`
	RenewalBaseDiscount int             `env:"RENEWAL_BASE_DISCOUNT"`

	MinReferralWithdrawal decimal.Decimal `env:"MIN_REFERRAL_WITHDRAWAL"`

	AuthFailLimit  int64         `env:"AUTH_FAIL_LIMIT"`
	AuthFailWindow time.Duration `env:"AUTH_FAIL_WINDOW"`
}

// String скрывает секреты, конфиг пишется в лог при старте.
func (c Config) String() string {
	masked := c
	if masked.JWTSecret != "" {
		masked.JWTSecret = "***"
	}
	masked.DatabaseDSN = "***"
	type plain Config
	return fmt.Sprintf("%+v", plain(masked))
}

// LoadConfig читает .env (если есть), переменные окружения и флаги. Переменные окружения имеют приоритет
// над флагами, флаги задают значения по умолчанию.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %s", err.Error())
	}
	return loadConfig(os.Args[1:])
}

func MustLoadConfig() *Config {
	config, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return config
}

func loadConfig(args []string) (*Config, error) {
	var flagsConfig, envConfig Config

	if envParseErr := env.Parse(&envConfig); envParseErr != nil {
		return nil, fmt.Errorf("parse env config: %s", envParseErr.Error())
	}

	if flagsErr := loadFlags(&flagsConfig, args); flagsErr != nil {
		return nil, fmt.Errorf("parse flags: %s", flagsErr.Error())
	}

	conf := mergeConfig(&envConfig, &flagsConfig)
	if err := conf.validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func (c *Config) validate() error {
	switch {
	case c.DatabaseDSN == "":
		return errors.New("database DSN is not set")
	case c.JWTSecret == "":
		return errors.New("jwt secret is not set")
	case !c.PriceLink.IsPositive() || !c.PriceArticle.IsPositive():
		return errors.New("placement prices must be positive")
	case c.RenewalBaseDiscount < 0 || c.RenewalBaseDiscount > 100:
		return errors.New("renewal base discount must be within [0, 100]")
	case c.BatchJobWorkers == 0:
		return errors.New("batch job workers must be positive")
	}
	return nil
}

func loadFlags(flagConfig *Config, args []string) error {
	flags := flag.NewFlagSet("billing", flag.ContinueOnError)

	flags.StringVar(&flagConfig.RunAddress, "a", "localhost:8080", "Run address in format host:port")
	flags.StringVar(&flagConfig.DatabaseDSN, "d", "", "Database DSN")
	flags.StringVar(&flagConfig.MigrationsDir, "m", "internal/db/migrations", "Database migrations directory")
	flags.StringVar(&flagConfig.JWTSecret, "j", "", "JWT secret shared with the auth service")
	flags.StringVar(&flagConfig.RedisAddr, "r", "", "Redis address, empty for in-memory jobs and counters")
	flags.StringVar(&flagConfig.OTLPEndpoint, "otlp", "", "OTLP/HTTP trace collector endpoint, empty to disable tracing")

	flags.DurationVar(&flagConfig.LockTimeout, "lock-timeout", 5*time.Second, "Row lock wait timeout")
	flags.DurationVar(&flagConfig.PublishTimeout, "publish-timeout", 15*time.Second, "Content publishing timeout")
	flags.DurationVar(&flagConfig.LifecycleInterval, "lifecycle-interval", time.Minute, "Lifecycle worker interval")
	flags.UintVar(&flagConfig.BatchJobWorkers, "batch-workers", 4, "Async batch job workers") //nolint:mnd

	flags.TextVar(&flagConfig.PriceLink, "price-link", decimal.NewFromInt(25), "Link placement price")
	flags.TextVar(&flagConfig.PriceArticle, "price-article", decimal.NewFromInt(15), "Article placement price")
	flags.DurationVar(&flagConfig.RenewalPeriod, "renewal-period", 365*24*time.Hour, "Link placement period")
	flags.IntVar(&flagConfig.RenewalBaseDiscount, "renewal-discount", 30, "Base renewal discount, percent") //nolint:mnd

	flags.TextVar(&flagConfig.MinReferralWithdrawal, "min-referral-withdrawal", decimal.NewFromInt(200),
		"Minimal referral balance for withdrawal")

	flags.Int64Var(&flagConfig.AuthFailLimit, "auth-fail-limit", 10, "Auth failures per client before blocking") //nolint:mnd
	flags.DurationVar(&flagConfig.AuthFailWindow, "auth-fail-window", 15*time.Minute, "Auth failures window")

	return flags.Parse(args) //nolint:wrapcheck
}

func mergeConfig(envConfig, flagsConfig *Config) *Config {
	return &Config{
		RunAddress:    defaultIfBlank(envConfig.RunAddress, flagsConfig.RunAddress),
		DatabaseDSN:   defaultIfBlank(envConfig.DatabaseDSN, flagsConfig.DatabaseDSN),
		MigrationsDir: defaultIfBlank(envConfig.MigrationsDir, flagsConfig.MigrationsDir),
		JWTSecret:     defaultIfBlank(envConfig.JWTSecret, flagsConfig.JWTSecret),
		RedisAddr:     defaultIfBlank(envConfig.RedisAddr, flagsConfig.RedisAddr),
		OTLPEndpoint:  defaultIfBlank(envConfig.OTLPEndpoint, flagsConfig.OTLPEndpoint),

		LockTimeout:       defaultIfBlank(envConfig.LockTimeout, flagsConfig.LockTimeout),
		PublishTimeout:    defaultIfBlank(envConfig.PublishTimeout, flagsConfig.PublishTimeout),
		LifecycleInterval: defaultIfBlank(envConfig.LifecycleInterval, flagsConfig.LifecycleInterval),
		BatchJobWorkers:   defaultIfBlank(envConfig.BatchJobWorkers, flagsConfig.BatchJobWorkers),

		PriceLink:           defaultIfZeroDecimal(envConfig.PriceLink, flagsConfig.PriceLink),
		PriceArticle:        defaultIfZeroDecimal(envConfig.PriceArticle, flagsConfig.PriceArticle),
		RenewalPeriod:       defaultIfBlank(envConfig.RenewalPeriod, flagsConfig.RenewalPeriod),
		RenewalBaseDiscount: defaultIfBlank(envConfig.RenewalBaseDiscount, flagsConfig.RenewalBaseDiscount),

		MinReferralWithdrawal: defaultIfZeroDecimal(envConfig.MinReferralWithdrawal, flagsConfig.MinReferralWithdrawal),

		AuthFailLimit:  defaultIfBlank(envConfig.AuthFailLimit, flagsConfig.AuthFailLimit),
		AuthFailWindow: defaultIfBlank(envConfig.AuthFailWindow, flagsConfig.AuthFailWindow),
	}
}

func defaultIfBlank[T comparable](value T, defaultValue T) T {
	var zero T
	if value == zero {
		return defaultValue
	}
	return value
}

func defaultIfZeroDecimal(value, defaultValue decimal.Decimal) decimal.Decimal {
	if value.IsZero() {
		return defaultValue
	}
	return value
}
