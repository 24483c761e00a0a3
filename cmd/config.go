package cmd

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Apps struct {
		LogLevel string `yaml:"log_level"`
		Rest     struct {
			Port int `yaml:"port"`
			JWT  struct {
				Secret     string `yaml:"secret"`
				HeaderName string `yaml:"header_name"`
			} `yaml:"jwt"`
			Publish struct {
				ServiceKey string `yaml:"service_key"`
			} `yaml:"publish"`
			WS struct {
				SendBuffer     int      `yaml:"send_buffer"`
				AllowedOrigins []string `yaml:"allowed_origins"`
			} `yaml:"ws"`
		} `yaml:"rest"`
	} `yaml:"apps"`
}

func ParseConfig(path string, logger *zap.Logger) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		logger.Error("Failed to open config file", zap.Error(err))
		return nil, fmt.Errorf("error opening file %w", err)
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		logger.Error("Failed to decode config file", zap.Error(err))
		return nil, fmt.Errorf("error decoding file %w", err)
	}

	return &config, nil
}
