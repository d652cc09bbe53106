package main

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"globe/internal/config"

	"gopkg.in/yaml.v3"
)

func TestConfigFromCentralJSON(t *testing.T) {
	t.Setenv(envConfigYAMLB64, "")

	cfg := config.Default()
	cfg.Server.ID = "json-config"
	cfg.World.Preset = "globe:overworld_large"
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	t.Setenv(envConfigJSON, string(data))

	path := filepath.Join(t.TempDir(), "nested", "config.json")

	got, ok, err := configFromCentral(path)
	if err != nil {
		t.Fatalf("configFromCentral: %v", err)
	}
	if !ok {
		t.Fatalf("expected a pushed config")
	}
	if got.Server.ID != "json-config" || got.World.Preset != "globe:overworld_large" {
		t.Fatalf("unexpected config: %+v", got.Server)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	var decoded config.Config
	if err := json.Unmarshal(contents, &decoded); err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if decoded.Server.ID != "json-config" {
		t.Fatalf("unexpected server id: %q", decoded.Server.ID)
	}
}

func TestConfigFromCentralYAMLWithoutPath(t *testing.T) {
	cfg := config.Default()
	cfg.Server.ID = "yaml-config"
	cfg.Guards.Enabled = false
	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal yaml: %v", err)
	}
	t.Setenv(envConfigJSON, "")
	t.Setenv(envConfigYAMLB64, base64.StdEncoding.EncodeToString(data))

	got, ok, err := configFromCentral("")
	if err != nil {
		t.Fatalf("configFromCentral: %v", err)
	}
	if !ok {
		t.Fatalf("expected a pushed config")
	}
	if got.Server.ID != "yaml-config" || got.Guards.Enabled {
		t.Fatalf("unexpected config: id %q guards %v", got.Server.ID, got.Guards.Enabled)
	}
	if got.Server.GenerateTimeout != cfg.Server.GenerateTimeout {
		t.Fatalf("generate timeout = %v, want %v", got.Server.GenerateTimeout, cfg.Server.GenerateTimeout)
	}
}

func TestConfigFromCentralRejectsInvalid(t *testing.T) {
	cfg := config.Default()
	cfg.World.Preset = "globe:flat"
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	t.Setenv(envConfigJSON, string(data))
	t.Setenv(envConfigYAMLB64, "")

	if _, _, err := configFromCentral(""); err == nil {
		t.Fatal("expected validation error for unknown preset")
	}
}

func TestLoadConfigFallsBackToDefaults(t *testing.T) {
	t.Setenv(envConfigJSON, "")
	t.Setenv(envConfigYAMLB64, "")
	t.Setenv(envDebugListen, "127.0.0.1:19999")

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.ID != config.Default().Server.ID {
		t.Fatalf("server id = %q", cfg.Server.ID)
	}
	if cfg.Server.DebugListen != "127.0.0.1:19999" {
		t.Fatalf("debug listen = %q", cfg.Server.DebugListen)
	}
}
