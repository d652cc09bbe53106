package cluster

import (
	"os"
	"strings"
)

type runtimeMode string

const (
	runtimeLocal      runtimeMode = "local"
	runtimeDocker     runtimeMode = "docker"
	runtimeKubernetes runtimeMode = "kubernetes"
)

// detectRuntimeMode honours, in order, the configured mode, the
// CENTRAL_CLUSTER_MODE override and the environment central runs in.
func detectRuntimeMode(configured string) runtimeMode {
	for _, candidate := range []string{configured, os.Getenv("CENTRAL_CLUSTER_MODE")} {
		switch runtimeMode(strings.ToLower(strings.TrimSpace(candidate))) {
		case runtimeDocker:
			return runtimeDocker
		case runtimeKubernetes:
			return runtimeKubernetes
		case runtimeLocal:
			return runtimeLocal
		}
	}

	if isKubernetesEnvironment() {
		return runtimeKubernetes
	}
	if isDockerEnvironment() {
		return runtimeDocker
	}
	return runtimeLocal
}

func isDockerEnvironment() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}

func isKubernetesEnvironment() bool {
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true
	}
	if os.Getenv("KUBERNETES_PORT") != "" {
		return true
	}
	return false
}
