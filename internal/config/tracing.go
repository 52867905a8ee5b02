package config

type TracingConfig struct {
	Service  string `yaml:"service-name" envconfig:"SERVICE_NAME"`
	Disabled bool   `yaml:"disabled" envconfig:"DISABLED"`
}

func (t *TracingConfig) ServiceName() string {
	return t.Service
}

func (t *TracingConfig) TracingDisabled() bool {
	return t.Disabled
}
