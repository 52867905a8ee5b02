package config

type KafkaConfig struct {
	BrokerList []string `yaml:"brokers" envconfig:"BROKERS"`
	Topic      string   `yaml:"updates-topic" envconfig:"UPDATES_TOPIC"`
}

func (s *KafkaConfig) Brokers() []string {
	return s.BrokerList
}

func (s *KafkaConfig) UpdatesTopic() string {
	return s.Topic
}

func (s *KafkaConfig) Enabled() bool {
	return len(s.BrokerList) > 0 && s.Topic != ""
}
