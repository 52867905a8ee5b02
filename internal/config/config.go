package config

import (
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	configFile    = "data/config.yaml"
	configFileEnv = "CONFIG_FILE"
	dateLayout    = "2006-01-02"
)

var (
	ErrMissingS3URI       = errors.New("s3 uri is not configured (S3_URI)")
	ErrMissingPostgres    = errors.New("postgres host is not configured")
	ErrMissingDataFile    = errors.New("data file is not configured")
	ErrUnknownBackend     = errors.New("unknown storage backend")
	ErrBadBaseCurrency    = errors.New("base currency must be a three-letter code")
	ErrUnsupportedSetting = errors.New("unsupported setting")
)

var currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)

type config struct {
	App       AppConfig       `yaml:"app"`
	XRates    XRatesConfig    `yaml:"xrates"`
	S3        S3Config        `yaml:"s3"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Memcached MemcachedConfig `yaml:"memcached"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Tracing   TracingConfig   `yaml:"tracing"`
}

func defaults() config {
	return config{
		App: AppConfig{
			BaseCurrencyName: "USD",
			EpochDate:        "2015-01-01",
			FetchDelayMillis: 1000,
			HealWindow:       30,
			StorageBackend:   BackendFile,
			DataFilePath:     "exchange-rates.csv",
			BackfillDirPath:  ".",
		},
		XRates: XRatesConfig{
			BaseURL:        "https://www.x-rates.com",
			TimeoutSeconds: 15,
			Agent:          "exchange-updater/1.0",
		},
		Memcached: MemcachedConfig{TTLSeconds: 0},
		Metrics:   MetricsConfig{JobName: "exchange_updater"},
		Tracing:   TracingConfig{Service: "exchange-updater"},
	}
}

type Option func(*config)

// WithBackend pins the storage backend regardless of file and environment.
func WithBackend(backend string) Option {
	return func(c *config) {
		c.App.StorageBackend = backend
	}
}

type Service struct {
	config config
}

// New reads data/config.yaml (or $CONFIG_FILE) when present, then applies environment overrides.
func New(opts ...Option) (*Service, error) {
	_ = godotenv.Load()

	s := &Service{config: defaults()}

	path, explicit := os.LookupEnv(configFileEnv)
	if !explicit {
		path = configFile
	}
	rawYAML, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err = yaml.Unmarshal(rawYAML, &s.config); err != nil {
			return nil, errors.Wrap(err, "parsing yaml")
		}
	case explicit || !os.IsNotExist(err):
		return nil, errors.Wrap(err, "reading config file")
	}

	if err = envconfig.Process("", &s.config); err != nil {
		return nil, errors.Wrap(err, "parsing environment")
	}

	for _, opt := range opts {
		opt(&s.config)
	}

	if err = s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the settings needed before any work starts.
func (s *Service) Validate() error {
	app := &s.config.App
	app.BaseCurrencyName = strings.ToUpper(strings.TrimSpace(app.BaseCurrencyName))
	if !currencyCode.MatchString(app.BaseCurrencyName) {
		return errors.Wrap(ErrBadBaseCurrency, app.BaseCurrencyName)
	}

	epoch, err := time.Parse(dateLayout, app.EpochDate)
	if err != nil {
		return errors.Wrap(err, "parsing epoch")
	}
	app.epoch = epoch

	if app.FetchDelayMillis < 0 || app.HealWindow < 0 {
		return errors.Wrap(ErrUnsupportedSetting, "negative delay or heal window")
	}

	switch app.StorageBackend {
	case BackendFile:
		if app.DataFilePath == "" {
			return ErrMissingDataFile
		}
	case BackendS3:
		if s.config.S3.ObjectURI == "" {
			return ErrMissingS3URI
		}
	case BackendPostgres:
		if s.config.Postgres.Hostname == "" {
			return ErrMissingPostgres
		}
	case BackendMemory:
	default:
		return errors.Wrap(ErrUnknownBackend, app.StorageBackend)
	}
	return nil
}

func (s *Service) App() *AppConfig {
	return &s.config.App
}

func (s *Service) XRates() *XRatesConfig {
	return &s.config.XRates
}

func (s *Service) S3() *S3Config {
	return &s.config.S3
}

func (s *Service) Postgres() *PostgresConfig {
	return &s.config.Postgres
}

func (s *Service) Memcached() *MemcachedConfig {
	return &s.config.Memcached
}

func (s *Service) Kafka() *KafkaConfig {
	return &s.config.Kafka
}

func (s *Service) Telegram() *TelegramConfig {
	return &s.config.Telegram
}

func (s *Service) Metrics() *MetricsConfig {
	return &s.config.Metrics
}

func (s *Service) Tracing() *TracingConfig {
	return &s.config.Tracing
}
