package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/progress-engine/internal/data/db"
	"github.com/yungbote/progress-engine/internal/modules/progress"
	"github.com/yungbote/progress-engine/internal/modules/progress/scoring"
	"github.com/yungbote/progress-engine/internal/observability"
	"github.com/yungbote/progress-engine/internal/platform/envutil"
	"github.com/yungbote/progress-engine/internal/platform/logger"
)

const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

type Config struct {
	Addr        string
	Environment string

	JWTSecret    string
	JWTLeeway    time.Duration
	CORSOrigins  []string
	AutoMigrate  bool
	StoreDriver  string
	SQLitePath   string
	Postgres     db.PostgresConfig
	RedisAddr    string
	LockTTL      time.Duration
	Metrics      bool
	Otel         observability.OtelConfig
	ShutdownWait time.Duration

	Rates  scoring.Rates
	Theory progress.TheoryPolicy
}

// fileConfig is the optional YAML overlay named by PROGRESS_CONFIG_FILE.
// It carries product rules rather than infrastructure.
type fileConfig struct {
	Scoring     *scoring.Rates `yaml:"scoring"`
	Theory      string         `yaml:"theory_policy"`
	CORSOrigins []string       `yaml:"cors_origins"`
}

// LoadConfig reads the environment, then applies the YAML overlay if one is
// configured. THEORY_POLICY in the environment wins over the file.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		Addr:        envutil.String("HTTP_ADDR", ":8080"),
		Environment: envutil.String("APP_ENV", "development"),
		JWTSecret:   envutil.String("JWT_SECRET_KEY", ""),
		JWTLeeway:   envutil.Duration("JWT_LEEWAY", 30*time.Second),
		AutoMigrate: envutil.Bool("AUTO_MIGRATE", true),
		StoreDriver: strings.ToLower(envutil.String("STORE_DRIVER", StorePostgres)),
		SQLitePath:  envutil.String("SQLITE_PATH", "progress.db"),
		Postgres: db.PostgresConfig{
			Host:         envutil.String("POSTGRES_HOST", "localhost"),
			Port:         envutil.String("POSTGRES_PORT", "5432"),
			User:         envutil.String("POSTGRES_USER", "postgres"),
			Password:     envutil.String("POSTGRES_PASSWORD", ""),
			Name:         envutil.String("POSTGRES_NAME", "progress"),
			SSLMode:      envutil.String("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns: envutil.Int("POSTGRES_MAX_OPEN_CONNS", 20),
			MaxIdleConns: envutil.Int("POSTGRES_MAX_IDLE_CONNS", 5),
		},
		RedisAddr:    envutil.String("REDIS_ADDR", ""),
		LockTTL:      envutil.Duration("PROGRESS_LOCK_TTL", 10*time.Second),
		Metrics:      envutil.Bool("METRICS_ENABLED", true),
		ShutdownWait: envutil.Duration("SHUTDOWN_TIMEOUT", 15*time.Second),
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "progress-engine"),
			Environment: envutil.String("APP_ENV", "development"),
			Version:     envutil.String("APP_VERSION", ""),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: envutil.Float("OTEL_SAMPLE_RATIO", 1),
		},
		Rates:  scoring.DefaultRates(),
		Theory: progress.TheoryAlwaysComplete,
	}
	if raw := envutil.String("CORS_ORIGINS", ""); raw != "" {
		cfg.CORSOrigins = splitList(raw)
	}

	if path := envutil.String("PROGRESS_CONFIG_FILE", ""); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return cfg, err
		}
		if log != nil {
			log.Info("loaded config overlay", "path", path)
		}
	}
	if raw := envutil.String("THEORY_POLICY", ""); raw != "" {
		cfg.Theory = progress.TheoryPolicy(raw)
	}
	if p, ok := progress.ParseTheoryPolicy(string(cfg.Theory)); ok {
		cfg.Theory = p
	} else {
		return cfg, fmt.Errorf("unknown theory policy %q", cfg.Theory)
	}
	cfg.Rates = cfg.Rates.Normalize()

	switch cfg.StoreDriver {
	case StorePostgres, StoreSQLite:
	default:
		return cfg, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config overlay: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config overlay %s: %w", path, err)
	}
	if fc.Scoring != nil {
		c.Rates = *fc.Scoring
	}
	if fc.Theory != "" {
		c.Theory = progress.TheoryPolicy(fc.Theory)
	}
	if len(fc.CORSOrigins) > 0 && len(c.CORSOrigins) == 0 {
		c.CORSOrigins = fc.CORSOrigins
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
