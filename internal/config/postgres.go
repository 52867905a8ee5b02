package config

type PostgresConfig struct {
	Hostname string `yaml:"host" envconfig:"HOST"`
	Db       string `yaml:"db" envconfig:"DB"`
	User     string `yaml:"username" envconfig:"USERNAME"`
	Pswd     string `yaml:"password" envconfig:"PASSWORD"`
}

func (s *PostgresConfig) Host() string {
	return s.Hostname
}

func (s *PostgresConfig) Database() string {
	return s.Db
}

func (s *PostgresConfig) Username() string {
	return s.User
}

func (s *PostgresConfig) Password() string {
	return s.Pswd
}
