package config

import "time"

type MemcachedConfig struct {
	NodeHosts  []string `yaml:"hosts" envconfig:"HOSTS"`
	TTLSeconds int32    `yaml:"ttl-seconds" envconfig:"TTL_SECONDS"`
}

func (s *MemcachedConfig) Hosts() []string {
	return s.NodeHosts
}

func (s *MemcachedConfig) Expiration() time.Duration {
	return time.Duration(s.TTLSeconds) * time.Second
}

func (s *MemcachedConfig) Enabled() bool {
	return len(s.NodeHosts) > 0
}
