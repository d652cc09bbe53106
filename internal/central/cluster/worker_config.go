package cluster

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	central "globe/internal/central/config"
	"globe/internal/config"

	"gopkg.in/yaml.v3"
)

// Environment variables read by the generator worker.
const (
	EnvConfigJSON    = "GLOBE_CONFIG_JSON"
	EnvConfigYAMLB64 = "GLOBE_CONFIG_YAML_B64"
	EnvDebugListen   = "GLOBE_DEBUG_LISTEN"
)

// workerConfig derives the full generator configuration of one worker from
// the generator defaults and the cluster settings.
func workerConfig(cfg *central.Config, w central.Worker) *config.Config {
	out := config.Default()
	out.Server.ID = w.ID
	out.Server.Description = "auto-generated for " + w.ID
	out.Server.GlobalChunkOrigin = config.ChunkIndex{X: w.GlobalOrigin.ChunkX, Z: w.GlobalOrigin.ChunkZ}
	if w.DebugAddress != "" {
		out.Server.DebugListen = w.DebugAddress
	}
	out.Chunk.Width = cfg.World.ChunkWidth
	out.Chunk.Depth = cfg.World.ChunkDepth
	out.Chunk.Height = cfg.World.ChunkHeight
	out.Chunk.ChunksPerAxis = w.ChunksPerAxis

	out.World.Preset = cfg.World.Preset
	if cfg.World.Seed != 0 {
		out.World.Seed = cfg.World.Seed
	}
	out.World.SeaLevel = cfg.World.SeaLevel
	out.Guards.Enabled = cfg.World.GuardsEnabled()

	if w.Storage.Backend != "" {
		out.Storage.Backend = w.Storage.Backend
	}
	if w.Storage.Path != "" {
		out.Storage.Path = w.Storage.Path
	} else if cfg.Cluster.DataRoot != "" {
		out.Storage.Path = cfg.Cluster.DataRoot + "/" + w.ID
	}
	out.Storage.DSN = w.Storage.DSN
	return out
}

func buildWorkerConfigPayload(cfg *central.Config, w central.Worker) (jsonPayload string, yamlPayload string, err error) {
	if cfg == nil {
		return "", "", fmt.Errorf("cluster config is nil")
	}

	workerCfg := workerConfig(cfg, w)
	if err := workerCfg.Validate(); err != nil {
		return "", "", fmt.Errorf("worker %s config: %w", w.ID, err)
	}

	jsonBytes, err := json.Marshal(workerCfg)
	if err != nil {
		return "", "", fmt.Errorf("marshal worker config json: %w", err)
	}

	yamlBytes, err := yaml.Marshal(workerCfg)
	if err != nil {
		return "", "", fmt.Errorf("marshal worker config yaml: %w", err)
	}

	return string(jsonBytes), base64.StdEncoding.EncodeToString(yamlBytes), nil
}

// workerEnvironment merges the cluster env, the worker env and the pushed
// configuration. Worker values override cluster values.
func workerEnvironment(cfg *central.Config, w central.Worker) (map[string]string, error) {
	env := make(map[string]string, len(cfg.Cluster.Env)+len(w.Env)+3)
	for k, v := range cfg.Cluster.Env {
		env[k] = v
	}
	for k, v := range w.Env {
		env[k] = v
	}
	if w.DebugAddress != "" {
		env[EnvDebugListen] = w.DebugAddress
	}
	jsonPayload, yamlPayload, err := buildWorkerConfigPayload(cfg, w)
	if err != nil {
		return nil, err
	}
	env[EnvConfigJSON] = jsonPayload
	env[EnvConfigYAMLB64] = yamlPayload
	return env, nil
}
