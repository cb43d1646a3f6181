package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the coordinator's YAML configuration. Every field has a
// working default so a missing file still boots a local instance.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	NATS struct {
		// Publish mirrors engine broadcasts onto JetStream; Consume feeds
		// snapshots published elsewhere into the local room. An instance
		// that owns engines publishes, one that only serves sockets
		// consumes.
		Publish       bool   `yaml:"publish"`
		Consume       bool   `yaml:"consume"`
		URL           string `yaml:"url"`
		Stream        string `yaml:"stream"`
		SubjectPrefix string `yaml:"subject_prefix"`
	} `yaml:"nats"`
}

func defaultConfig() *Config {
	var config Config
	config.Server.Port = getEnv("PORT", "8080")
	config.NATS.URL = getEnv("NATS_URL", "nats://localhost:4222")
	config.NATS.Stream = "DRAFT_EVENTS"
	config.NATS.SubjectPrefix = "draft.events"
	return &config
}

func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if config.Server.Port == "" {
		config.Server.Port = getEnv("PORT", "8080")
	}
	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
