package config

type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway" envconfig:"PUSHGATEWAY"`
	JobName        string `yaml:"job" envconfig:"JOB"`
}

func (m *MetricsConfig) Pushgateway() string {
	return m.PushgatewayURL
}

func (m *MetricsConfig) Job() string {
	return m.JobName
}

func (m *MetricsConfig) Enabled() bool {
	return m.PushgatewayURL != ""
}
