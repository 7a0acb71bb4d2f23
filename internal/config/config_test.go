package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_FromDirectory(t *testing.T) {
	dir := t.TempDir()
	data := "engine: docker\ntimeout: 10m\ncontainer:\n  name: webui-test\nrelay:\n  interval: 250ms\n  policy: drain\n"
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Path != filepath.Join(dir, FileName) {
		t.Errorf("Path = %q, want %q", res.Path, filepath.Join(dir, FileName))
	}
	cfg := res.Config
	if cfg.EngineBinary() != "docker" {
		t.Errorf("EngineBinary() = %q, want docker", cfg.EngineBinary())
	}
	if cfg.Timeout() != 10*time.Minute {
		t.Errorf("Timeout() = %v, want 10m", cfg.Timeout())
	}
	if got := cfg.ContainerSpec().Name; got != "webui-test" {
		t.Errorf("ContainerSpec().Name = %q, want webui-test", got)
	}
	if got := cfg.ContainerSpec().Image; got != DefaultImage {
		t.Errorf("ContainerSpec().Image = %q, want default", got)
	}
	if cfg.RelayInterval() != 250*time.Millisecond {
		t.Errorf("RelayInterval() = %v, want 250ms", cfg.RelayInterval())
	}
	if cfg.RelayPolicy() != "drain" {
		t.Errorf("RelayPolicy() = %q, want drain", cfg.RelayPolicy())
	}
}

func TestLoad_NoFile(t *testing.T) {
	dir := t.TempDir()

	res, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Path != "" {
		t.Errorf("Path = %q, want empty for defaults", res.Path)
	}
	cfg := res.Config
	if cfg.BaseDir != dir {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, dir)
	}
	if cfg.Timeout() != 0 {
		t.Errorf("Timeout() = %v, want 0 (no deadline)", cfg.Timeout())
	}
	if cfg.RelayInterval() != DefaultRelayInterval {
		t.Errorf("RelayInterval() = %v, want %v", cfg.RelayInterval(), DefaultRelayInterval)
	}
	if got := cfg.ElevateArgv(); len(got) != 1 || got[0] != "pkexec" {
		t.Errorf("ElevateArgv() = %v, want [pkexec]", got)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("LoadFile error = %v, want ErrNotExist", err)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	data := "relay:\n  policy: sometimes\nforward:\n  mode: guess\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	// Both problems are reported together.
	for _, want := range []string{"relay.policy", "forward.mode"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error = %q, want to mention %s", err, want)
		}
	}
}

func TestElevate_Disabled(t *testing.T) {
	cfg := &Config{NoElevate: true, Elevate: []string{"sudo"}}
	if got := cfg.ElevateArgv(); len(got) != 0 {
		t.Errorf("ElevateArgv() = %v, want none", got)
	}
}

func TestLoad_EmptyElevateDisablesElevation(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("elevate: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := res.Config.ElevateArgv(); len(got) != 0 {
		t.Fatalf("ElevateArgv() = %v, want none", got)
	}

	// The choice survives a save and reload.
	if err := Save(filepath.Join(dir, FileName), res.Config); err != nil {
		t.Fatalf("Save: %v", err)
	}
	res, err = Load(dir)
	if err != nil {
		t.Fatalf("Load after Save: %v", err)
	}
	if got := res.Config.ElevateArgv(); len(got) != 0 {
		t.Errorf("ElevateArgv() after reload = %v, want none", got)
	}
}

func TestLoad_CustomElevate(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("elevate: [sudo, -n]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := strings.Join(res.Config.ElevateArgv(), " "); got != "sudo -n" {
		t.Errorf("ElevateArgv() = %q, want %q", got, "sudo -n")
	}
}

func TestRelativePaths_ResolveAgainstBaseDir(t *testing.T) {
	cfg := &Config{
		BaseDir:  "/srv/webui",
		Log:      LogConfig{File: "logs/ops.log"},
		RawState: "state",
	}
	if got := cfg.LogFile(); got != "/srv/webui/logs/ops.log" {
		t.Errorf("LogFile() = %q", got)
	}
	if got := cfg.ForwardState(); got != "/srv/webui/state/forward.pid" {
		t.Errorf("ForwardState() = %q", got)
	}
}

func TestEnvVars_Defaults(t *testing.T) {
	cfg := &Config{}
	vars := cfg.EnvVars()
	if len(vars) != len(DefaultEnv) {
		t.Fatalf("len(EnvVars()) = %d, want %d", len(vars), len(DefaultEnv))
	}
	if vars[0].Name != "OLLAMA_FLASH_ATTENTION" || vars[0].Rendered() != "1" {
		t.Errorf("vars[0] = %+v", vars[0])
	}

	// The returned slice is a copy.
	vars[1].Options[0] = "mutated"
	if DefaultEnv[1].Options[0] != "Q4_0" {
		t.Error("EnvVars leaked the default option slice")
	}
}

func TestSetEnv(t *testing.T) {
	cfg := &Config{}

	if err := cfg.SetEnv("OLLAMA_KV_CACHE_TYPE", "f16"); err != nil {
		t.Fatalf("SetEnv choice: %v", err)
	}
	if err := cfg.SetEnv("OLLAMA_USE_CUDA", "off"); err != nil {
		t.Fatalf("SetEnv flag: %v", err)
	}
	if err := cfg.SetEnv("OLLAMA_KV_CACHE_TYPE", "q2"); err == nil {
		t.Error("expected error for value outside options")
	}
	if err := cfg.SetEnv("UNKNOWN", "1"); err == nil {
		t.Error("expected error for undeclared variable")
	}

	got := map[string]string{}
	for _, v := range cfg.EnvVars() {
		got[v.Name] = v.Rendered()
	}
	if got["OLLAMA_KV_CACHE_TYPE"] != "f16" {
		t.Errorf("OLLAMA_KV_CACHE_TYPE = %q, want f16", got["OLLAMA_KV_CACHE_TYPE"])
	}
	if got["OLLAMA_USE_CUDA"] != "0" {
		t.Errorf("OLLAMA_USE_CUDA = %q, want 0", got["OLLAMA_USE_CUDA"])
	}
	if DefaultEnv[1].Value != "Q4_0" {
		t.Error("SetEnv modified DefaultEnv")
	}
}

func TestSave_PersistsEnvChoice(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{NoElevate: true}
	if err := cfg.SetEnv("OLLAMA_KV_CACHE_TYPE", "Q8_0"); err != nil {
		t.Fatal(err)
	}
	if err := Save(filepath.Join(dir, FileName), cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	res, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !res.Config.NoElevate {
		t.Error("NoElevate lost on reload")
	}
	for _, v := range res.Config.EnvVars() {
		if v.Name == "OLLAMA_KV_CACHE_TYPE" && v.Value != "Q8_0" {
			t.Errorf("OLLAMA_KV_CACHE_TYPE = %q after reload, want Q8_0", v.Value)
		}
	}
}
