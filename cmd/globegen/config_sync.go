package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"globe/internal/config"

	"gopkg.in/yaml.v3"
)

const (
	envConfigJSON    = "GLOBE_CONFIG_JSON"
	envConfigYAMLB64 = "GLOBE_CONFIG_YAML_B64"
	envDebugListen   = "GLOBE_DEBUG_LISTEN"
	envLogPrefix     = "GLOBE_LOG_PREFIX"
)

// configFromCentral decodes the configuration central pushed through the
// environment. JSON wins over YAML. When cfgPath is set the decoded
// configuration is also written there so a restart without central keeps it.
func configFromCentral(cfgPath string) (*config.Config, bool, error) {
	jsonPayload := os.Getenv(envConfigJSON)
	yamlPayload := os.Getenv(envConfigYAMLB64)

	if jsonPayload == "" && yamlPayload == "" {
		return nil, false, nil
	}

	cfg := config.Default()
	if jsonPayload != "" {
		if err := json.Unmarshal([]byte(jsonPayload), cfg); err != nil {
			return nil, false, fmt.Errorf("decode central config json: %w", err)
		}
	} else {
		data, err := base64.StdEncoding.DecodeString(yamlPayload)
		if err != nil {
			return nil, false, fmt.Errorf("decode central config yaml: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, false, fmt.Errorf("parse central config yaml: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, false, fmt.Errorf("validate central config: %w", err)
	}

	if cfgPath != "" {
		dir := filepath.Dir(cfgPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, false, fmt.Errorf("create config directory: %w", err)
			}
		}
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, false, fmt.Errorf("marshal config json: %w", err)
		}
		if err := os.WriteFile(cfgPath, data, 0o600); err != nil {
			return nil, false, fmt.Errorf("write config file: %w", err)
		}
	}

	return cfg, true, nil
}

// loadConfig prefers a pushed configuration and falls back to cfgPath.
func loadConfig(cfgPath string) (*config.Config, error) {
	cfg, ok, err := configFromCentral(cfgPath)
	if err != nil {
		return nil, err
	}
	if !ok {
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return nil, err
		}
	}
	if listen := os.Getenv(envDebugListen); listen != "" {
		cfg.Server.DebugListen = listen
	}
	return cfg, nil
}
