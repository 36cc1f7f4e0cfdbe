package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/bibbank/underwriting/pkg/postgres"
)

type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	Name           string `mapstructure:"name"`
	SSLMode        string `mapstructure:"sslmode"`
	MaxConns       int32  `mapstructure:"max_conns"`
	MigrateOnStart bool   `mapstructure:"migrate_on_start"`
}

// Postgres converts the database section into pool parameters.
func (d DatabaseConfig) Postgres() postgres.Config {
	return postgres.Config{
		Host:     d.Host,
		Port:     d.Port,
		User:     d.User,
		Password: d.Password,
		Database: d.Name,
		SSLMode:  d.SSLMode,
		MaxConns: d.MaxConns,
	}
}

type KafkaConfig struct {
	Brokers       []string `mapstructure:"brokers"`
	ConsumerGroup string   `mapstructure:"consumer_group"`
	EventsTopic   string   `mapstructure:"events_topic"`
	AuditTopic    string   `mapstructure:"audit_topic"`
	PaymentsTopic string   `mapstructure:"payments_topic"`
	TLS           bool     `mapstructure:"tls"`
}

type RedisConfig struct {
	Addr       string        `mapstructure:"addr"`
	Password   string        `mapstructure:"password"`
	DB         int           `mapstructure:"db"`
	ProfileTTL time.Duration `mapstructure:"profile_ttl"`
}

// Enabled reports whether a profile cache should sit in front of Postgres.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TelemetryConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

type AuthConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	JWTSecret     string        `mapstructure:"jwt_secret"`
	PublicKeyFile string        `mapstructure:"public_key_file"`
	Issuer        string        `mapstructure:"issuer"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
}

type TLSConfig struct {
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}

// UnderwritingConfig carries the lending policy knobs.
type UnderwritingConfig struct {
	// ApprovalCeiling is the largest approved/requested ratio, e.g. "1.0".
	ApprovalCeiling string        `mapstructure:"approval_ceiling"`
	GraceDays       int           `mapstructure:"grace_days"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval"`
}

// Ceiling parses ApprovalCeiling. Validate has already rejected bad values.
func (u UnderwritingConfig) Ceiling() decimal.Decimal {
	d, err := decimal.NewFromString(u.ApprovalCeiling)
	if err != nil {
		return decimal.Zero
	}
	return d
}

type Config struct {
	ServiceName    string             `mapstructure:"service_name"`
	GRPCPort       int                `mapstructure:"grpc_port"`
	HTTPPort       int                `mapstructure:"http_port"`
	GRPCReflection bool               `mapstructure:"grpc_reflection"`
	CORSOrigins    []string           `mapstructure:"cors_origins"`
	DB             DatabaseConfig     `mapstructure:"db"`
	Kafka          KafkaConfig        `mapstructure:"kafka"`
	Redis          RedisConfig        `mapstructure:"redis"`
	Log            LogConfig          `mapstructure:"log"`
	Telemetry      TelemetryConfig    `mapstructure:"otel"`
	Auth           AuthConfig         `mapstructure:"auth"`
	TLS            TLSConfig          `mapstructure:"tls"`
	Underwriting   UnderwritingConfig `mapstructure:"underwriting"`
}

func (c Config) Validate() error {
	var errs []error
	if c.DB.Password == "" {
		errs = append(errs, errors.New("DB_PASSWORD environment variable is required"))
	}
	if len(c.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS must name at least one broker"))
	}
	ceiling, err := decimal.NewFromString(c.Underwriting.ApprovalCeiling)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("UNDERWRITING_APPROVAL_CEILING: %w", err))
	case !ceiling.IsPositive():
		errs = append(errs, errors.New("UNDERWRITING_APPROVAL_CEILING must be positive"))
	}
	if c.Underwriting.GraceDays < 0 {
		errs = append(errs, errors.New("UNDERWRITING_GRACE_DAYS must not be negative"))
	}
	if c.Underwriting.SweepInterval < 0 {
		errs = append(errs, errors.New("UNDERWRITING_SWEEP_INTERVAL must not be negative"))
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" && c.Auth.PublicKeyFile == "" {
		errs = append(errs, errors.New("AUTH_JWT_SECRET or AUTH_PUBLIC_KEY_FILE is required when auth is enabled"))
	}
	if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
		errs = append(errs, errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together"))
	}
	return errors.Join(errs...)
}

func (c Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// Load reads configuration from, lowest precedence first: built-in
// defaults, an optional underwriting.yaml in ./configs or the working
// directory, a .env file and the process environment. Nested keys map to
// environment variables by upper-casing and replacing dots with
// underscores, so db.host is DB_HOST.
func Load() (Config, error) {
	loadEnvFile()
	return load(viper.New(), "")
}

// LoadFile is Load with an explicit config file.
func LoadFile(path string) (Config, error) {
	loadEnvFile()
	return load(viper.New(), path)
}

func load(v *viper.Viper, path string) (Config, error) {
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("underwriting")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Kafka.Brokers = splitList(cfg.Kafka.Brokers)
	cfg.CORSOrigins = splitList(cfg.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "underwriting-service")
	v.SetDefault("grpc_port", 9087)
	v.SetDefault("http_port", 8087)
	v.SetDefault("grpc_reflection", false)
	v.SetDefault("cors_origins", "")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "bib")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "bib_underwriting")
	v.SetDefault("db.sslmode", "require")
	v.SetDefault("db.max_conns", 10)
	v.SetDefault("db.migrate_on_start", true)

	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.consumer_group", "underwriting-service")
	v.SetDefault("kafka.events_topic", "underwriting.events")
	v.SetDefault("kafka.audit_topic", "underwriting.audit")
	v.SetDefault("kafka.payments_topic", "lending.payments")
	v.SetDefault("kafka.tls", false)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.profile_ttl", "5m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("otel.endpoint", "")
	v.SetDefault("otel.insecure", false)
	v.SetDefault("otel.sample_ratio", 1.0)

	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.public_key_file", "")
	v.SetDefault("auth.issuer", "bib")
	v.SetDefault("auth.token_ttl", "15m")

	v.SetDefault("tls.cert_file", "")
	v.SetDefault("tls.key_file", "")

	v.SetDefault("underwriting.approval_ceiling", "1")
	v.SetDefault("underwriting.grace_days", 90)
	v.SetDefault("underwriting.sweep_interval", "1h")
}

// loadEnvFile loads the first .env found. A missing file is not an error;
// variables already in the environment win.
func loadEnvFile() {
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

// splitList accepts both repeated values and a single comma-separated
// environment value.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
