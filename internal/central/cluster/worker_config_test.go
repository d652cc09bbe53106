package cluster

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	central "globe/internal/central/config"
	"globe/internal/config"

	"gopkg.in/yaml.v3"
)

func TestWorkerConfigPayloadsDecode(t *testing.T) {
	guards := false
	cfg := localConfig(central.Worker{
		ID:            "gen-south-0",
		GlobalOrigin:  central.ChunkOrigin{ChunkX: -32, ChunkZ: 0},
		ChunksPerAxis: 64,
		DebugAddress:  "127.0.0.1:19101",
		Storage:       central.WorkerStorage{Backend: "disk"},
	})
	cfg.Cluster.DataRoot = "/var/lib/globe"
	cfg.World.Guards = &guards

	jsonPayload, yamlPayload, err := buildWorkerConfigPayload(cfg, cfg.Workers[0])
	if err != nil {
		t.Fatalf("buildWorkerConfigPayload() error = %v", err)
	}

	var fromJSON config.Config
	if err := json.Unmarshal([]byte(jsonPayload), &fromJSON); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(yamlPayload)
	if err != nil {
		t.Fatalf("decode base64: %v", err)
	}
	var fromYAML config.Config
	if err := yaml.Unmarshal(raw, &fromYAML); err != nil {
		t.Fatalf("decode yaml: %v", err)
	}

	for name, got := range map[string]config.Config{"json": fromJSON, "yaml": fromYAML} {
		if err := got.Validate(); err != nil {
			t.Errorf("%s: Validate() = %v", name, err)
		}
		if got.Server.ID != "gen-south-0" {
			t.Errorf("%s: server id = %q", name, got.Server.ID)
		}
		if got.Server.GlobalChunkOrigin != (config.ChunkIndex{X: -32, Z: 0}) {
			t.Errorf("%s: origin = %+v", name, got.Server.GlobalChunkOrigin)
		}
		if got.Server.DebugListen != "127.0.0.1:19101" {
			t.Errorf("%s: debug listen = %q", name, got.Server.DebugListen)
		}
		if got.World.Preset != "globe:overworld_small" || got.World.Seed != 42 {
			t.Errorf("%s: world = %+v", name, got.World)
		}
		if got.Guards.Enabled {
			t.Errorf("%s: guards enabled, want disabled", name)
		}
		if got.Storage.Backend != "disk" || got.Storage.Path != "/var/lib/globe/gen-south-0" {
			t.Errorf("%s: storage = %+v", name, got.Storage)
		}
		if got.Server.GenerateTimeout != fromJSON.Server.GenerateTimeout {
			t.Errorf("%s: generate timeout = %v", name, got.Server.GenerateTimeout)
		}
	}
}

func TestWorkerConfigRejectsInvalidWorld(t *testing.T) {
	cfg := localConfig(central.Worker{ID: "w", ChunksPerAxis: 4})
	cfg.World.Preset = "minecraft:overworld"
	if _, _, err := buildWorkerConfigPayload(cfg, cfg.Workers[0]); err == nil {
		t.Fatal("buildWorkerConfigPayload() error = nil, want preset error")
	}
}

func TestDetectRuntimeModePrefersConfigured(t *testing.T) {
	t.Setenv("CENTRAL_CLUSTER_MODE", "docker")
	if got := detectRuntimeMode("Kubernetes"); got != runtimeKubernetes {
		t.Errorf("configured mode = %q, want kubernetes", got)
	}
	if got := detectRuntimeMode(""); got != runtimeDocker {
		t.Errorf("env mode = %q, want docker", got)
	}
}

func TestPodName(t *testing.T) {
	if got := podName("Gen_North.0"); got != "globegen-gen-north-0" {
		t.Errorf("podName() = %q", got)
	}
}

func TestWorkerLabels(t *testing.T) {
	cfg := localConfig(central.Worker{ID: "gen-1", ChunksPerAxis: 4})
	labels := workerLabels(cfg, cfg.Workers[0])
	if labels["worker-id"] != "gen-1" || labels["preset"] != "globe.overworld_small" {
		t.Errorf("labels = %v", labels)
	}
}
