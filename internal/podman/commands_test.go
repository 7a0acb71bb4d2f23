package podman

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/config"
)

func TestRun_DefaultInvocation(t *testing.T) {
	cfg := &config.Config{}
	c := New(cfg)

	want := []string{
		"pkexec", "podman", "run", "-d",
		"-p", "3000:8080",
		"--runtime", "/usr/bin/nvidia-container-runtime",
		"--gpus", "all",
		"-v", "ollama:/root/.ollama",
		"-v", "open-webui:/app/backend/data",
		"-e", "OLLAMA_FLASH_ATTENTION=1",
		"-e", "OLLAMA_KV_CACHE_TYPE=Q4_0",
		"-e", "OLLAMA_USE_CUDA=1",
		"-e", "USE_CUDA_DOCKER=true",
		"--name", "open-webui",
		"--restart", "always",
		"ghcr.io/open-webui/open-webui:ollama",
	}
	assert.Equal(t, want, c.Run(cfg.EnvVars()).Argv())
}

func TestRun_ReflectsEnvChanges(t *testing.T) {
	cfg := &config.Config{}
	if err := cfg.SetEnv("OLLAMA_FLASH_ATTENTION", "false"); err != nil {
		t.Fatal(err)
	}
	argv := New(cfg).Run(cfg.EnvVars()).Argv()
	assert.Contains(t, argv, "OLLAMA_FLASH_ATTENTION=0")
	assert.NotContains(t, argv, "OLLAMA_FLASH_ATTENTION=1")
}

func TestLifecycleInvocations(t *testing.T) {
	c := New(&config.Config{})

	assert.Equal(t, []string{"pkexec", "podman", "rm", "-f", "open-webui"}, c.Remove().Argv())
	assert.Equal(t, []string{"pkexec", "podman", "pull", "ghcr.io/open-webui/open-webui:ollama"}, c.Pull().Argv())
	assert.Equal(t, []string{"pkexec", "podman", "logs", "-f", "open-webui"}, c.Logs().Argv())
}

func TestCustomEngineWithoutElevation(t *testing.T) {
	cfg := &config.Config{
		Engine:    "docker",
		NoElevate: true,
		Container: config.ContainerConfig{Name: "webui", Ports: []string{"8080:8080", "9090:9090"}},
	}
	c := New(cfg)

	assert.Equal(t, []string{"docker", "rm", "-f", "webui"}, c.Remove().Argv())

	argv := c.Run(nil).Argv()
	assert.Equal(t, []string{"docker", "run", "-d", "-p", "8080:8080", "-p", "9090:9090"}, argv[:6])
	assert.NotContains(t, argv, "-e")
}

func TestEnvFlags(t *testing.T) {
	env := []config.EnvVar{
		{Name: "A", Kind: config.Flag, Value: "true"},
		{Name: "B", Kind: config.Choice, Value: "x y"},
	}
	assert.Equal(t, []string{"-e", "A=1", "-e", "B=x y"}, EnvFlags(env))
	assert.Empty(t, EnvFlags(nil))
}
