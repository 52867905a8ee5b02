package config

import "time"

type XRatesConfig struct {
	BaseURL        string `yaml:"base-url" envconfig:"BASE_URL"`
	TimeoutSeconds int64  `yaml:"timeout-seconds" envconfig:"TIMEOUT_SECONDS"`
	Agent          string `yaml:"user-agent" envconfig:"USER_AGENT"`
}

func (x *XRatesConfig) URL() string {
	return x.BaseURL
}

func (x *XRatesConfig) Timeout() time.Duration {
	return time.Duration(x.TimeoutSeconds) * time.Second
}

func (x *XRatesConfig) UserAgent() string {
	return x.Agent
}
