package config

// MetricsConfig controls telemetry export settings.
type MetricsConfig struct {
	Enabled      bool   `yaml:"enabled" envconfig:"ENABLED"`
	Port         string `yaml:"port" envconfig:"PORT"`
	OtlpEndpoint string `yaml:"otlp_endpoint" envconfig:"OTLP_ENDPOINT"`
	ServiceName  string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	OtlpInsecure bool   `yaml:"otlp_insecure" envconfig:"OTLP_INSECURE"`
}
