package infra

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SecretConfig matches the structure of secrets/live.yaml: broker credentials
// kept out of the main config file.
type SecretConfig struct {
	Broker struct {
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
	} `yaml:"broker"`
}

// LoadSecretConfig loads broker credentials from a separate yaml file.
// It returns an error if the file is missing (Fail Fast).
func LoadSecretConfig(path string) (*SecretConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret config: %w", err)
	}

	var cfg SecretConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse secret config: %w", err)
	}

	return &cfg, nil
}
