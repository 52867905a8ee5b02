package config

import "time"

const (
	BackendFile     = "file"
	BackendS3       = "s3"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type AppConfig struct {
	BaseCurrencyName string `yaml:"base-currency" envconfig:"BASE_CURRENCY"`
	EpochDate        string `yaml:"epoch" envconfig:"EPOCH"`
	FetchDelayMillis int64  `yaml:"fetch-delay-ms" envconfig:"FETCH_DELAY_MS"`
	HealWindow       int    `yaml:"heal-window-days" envconfig:"HEAL_WINDOW_DAYS"`
	StorageBackend   string `yaml:"backend" envconfig:"BACKEND"`
	DataFilePath     string `yaml:"data-file" envconfig:"DATA_FILE"`
	BackfillDirPath  string `yaml:"backfill-dir" envconfig:"BACKFILL_DIR"`

	epoch time.Time
}

func (s *AppConfig) BaseCurrency() string {
	return s.BaseCurrencyName
}

// Epoch is the first date the rates source is expected to serve. Valid after Service.Validate.
func (s *AppConfig) Epoch() time.Time {
	return s.epoch
}

func (s *AppConfig) FetchDelay() time.Duration {
	return time.Duration(s.FetchDelayMillis) * time.Millisecond
}

func (s *AppConfig) HealWindowDays() int {
	return s.HealWindow
}

func (s *AppConfig) Backend() string {
	return s.StorageBackend
}

func (s *AppConfig) DataFile() string {
	return s.DataFilePath
}

func (s *AppConfig) BackfillDir() string {
	return s.BackfillDirPath
}
