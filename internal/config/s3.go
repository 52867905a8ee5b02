package config

type S3Config struct {
	ObjectURI   string `yaml:"uri" envconfig:"URI"`
	AWSRegion   string `yaml:"region" envconfig:"REGION"`
	EndpointURL string `yaml:"endpoint" envconfig:"ENDPOINT"`
	StagingDir  string `yaml:"staging-dir" envconfig:"STAGING_DIR"`
}

// URI has the form s3://bucket/key.
func (s *S3Config) URI() string {
	return s.ObjectURI
}

func (s *S3Config) Region() string {
	return s.AWSRegion
}

func (s *S3Config) Endpoint() string {
	return s.EndpointURL
}

func (s *S3Config) Staging() string {
	return s.StagingDir
}
