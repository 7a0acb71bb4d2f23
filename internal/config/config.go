// Package config loads and validates the optional .webuictl YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the working directory.
const FileName = ".webuictl"

// Default values for the managed container and its helpers.
const (
	DefaultEngine         = "podman"
	DefaultContainerName  = "open-webui"
	DefaultImage          = "ghcr.io/open-webui/open-webui:ollama"
	DefaultRuntime        = "/usr/bin/nvidia-container-runtime"
	DefaultGPUs           = "all"
	DefaultRestart        = "always"
	DefaultLogFile        = "Update_OpenWebUI_Logs.log"
	DefaultRelayInterval  = 100 * time.Millisecond
	DefaultRelayBuffer    = 4096
	DefaultRelayPolicy    = "one"
	DefaultForwardListen  = 3000
	DefaultForwardTarget  = "127.0.0.1:3000"
	DefaultForwardMode    = "handle"
	DefaultForwardPIDFile = "forward.pid"
)

var (
	defaultElevate = []string{"pkexec"}
	defaultPorts   = []string{"3000:8080"}
	defaultVolumes = []string{"ollama:/root/.ollama", "open-webui:/app/backend/data"}
)

// Config holds the parsed .webuictl configuration.
// All fields are optional; zero values represent defaults.
type Config struct {
	Engine     string          `yaml:"engine,omitempty"`
	Elevate    []string        `yaml:"elevate,omitempty"` // default: pkexec; [] disables
	NoElevate  bool            `yaml:"no_elevate,omitempty"`
	Container  ContainerConfig `yaml:"container,omitempty"`
	Env        []EnvVar        `yaml:"env,omitempty"`
	Log        LogConfig       `yaml:"log,omitempty"`
	Relay      RelayConfig     `yaml:"relay,omitempty"`
	Forward    ForwardConfig   `yaml:"forward,omitempty"`
	RawState   string          `yaml:"state_dir,omitempty"`
	RawTimeout string          `yaml:"timeout,omitempty"` // e.g. "10m"; empty = no deadline

	// BaseDir anchors relative paths. Set by Load; never serialized.
	BaseDir string `yaml:"-"`
}

// ContainerConfig describes the managed container.
type ContainerConfig struct {
	Name    string   `yaml:"name,omitempty"`
	Image   string   `yaml:"image,omitempty"`
	Ports   []string `yaml:"ports,omitempty"`   // host:container
	Runtime string   `yaml:"runtime,omitempty"` // OCI runtime path
	GPUs    string   `yaml:"gpus,omitempty"`
	Volumes []string `yaml:"volumes,omitempty"` // name:path
	Restart string   `yaml:"restart,omitempty"`
}

// LogConfig controls the persisted operational log.
type LogConfig struct {
	File string `yaml:"file,omitempty"`
}

// RelayConfig controls how buffered lines reach the display.
type RelayConfig struct {
	RawInterval string `yaml:"interval,omitempty"` // e.g. "100ms"
	Policy      string `yaml:"policy,omitempty"`   // one | drain
	Buffer      int    `yaml:"buffer,omitempty"`
}

// ForwardConfig controls the TCP port-forwarding helper.
type ForwardConfig struct {
	Listen int    `yaml:"listen,omitempty"`
	Target string `yaml:"target,omitempty"`
	Mode   string `yaml:"mode,omitempty"`  // handle | probe
	State  string `yaml:"state,omitempty"` // pid record path
}

// EngineBinary returns the container engine binary.
func (c *Config) EngineBinary() string {
	if c.Engine != "" {
		return c.Engine
	}
	return DefaultEngine
}

// ElevateArgv returns the argv prefix used for privileged commands. An unset
// list means pkexec; an explicit empty list means none.
func (c *Config) ElevateArgv() []string {
	if c.NoElevate {
		return nil
	}
	if c.Elevate == nil {
		return slices.Clone(defaultElevate)
	}
	return slices.Clone(c.Elevate)
}

// ContainerSpec returns the container settings with defaults applied.
func (c *Config) ContainerSpec() ContainerConfig {
	s := c.Container
	if s.Name == "" {
		s.Name = DefaultContainerName
	}
	if s.Image == "" {
		s.Image = DefaultImage
	}
	if len(s.Ports) == 0 {
		s.Ports = slices.Clone(defaultPorts)
	}
	if s.Runtime == "" {
		s.Runtime = DefaultRuntime
	}
	if s.GPUs == "" {
		s.GPUs = DefaultGPUs
	}
	if len(s.Volumes) == 0 {
		s.Volumes = slices.Clone(defaultVolumes)
	}
	if s.Restart == "" {
		s.Restart = DefaultRestart
	}
	return s
}

// Timeout returns the per-command deadline, or zero when commands may run
// for as long as they like.
func (c *Config) Timeout() time.Duration {
	if c.RawTimeout != "" {
		d, err := time.ParseDuration(c.RawTimeout)
		if err == nil && d > 0 {
			return d
		}
	}
	return 0
}

// RelayInterval returns the display poll period.
func (c *Config) RelayInterval() time.Duration {
	if c.Relay.RawInterval != "" {
		d, err := time.ParseDuration(c.Relay.RawInterval)
		if err == nil && d > 0 {
			return d
		}
	}
	return DefaultRelayInterval
}

// RelayPolicy returns the configured drain policy name.
func (c *Config) RelayPolicy() string {
	if c.Relay.Policy != "" {
		return c.Relay.Policy
	}
	return DefaultRelayPolicy
}

// RelayBuffer returns the per-stream channel capacity.
func (c *Config) RelayBuffer() int {
	if c.Relay.Buffer > 0 {
		return c.Relay.Buffer
	}
	return DefaultRelayBuffer
}

// ForwardListen returns the port the forwarding helper listens on.
func (c *Config) ForwardListen() int {
	if c.Forward.Listen > 0 {
		return c.Forward.Listen
	}
	return DefaultForwardListen
}

// ForwardTarget returns the host:port the helper forwards to.
func (c *Config) ForwardTarget() string {
	if c.Forward.Target != "" {
		return c.Forward.Target
	}
	return DefaultForwardTarget
}

// ForwardMode returns how the helper's liveness is determined.
func (c *Config) ForwardMode() string {
	if c.Forward.Mode != "" {
		return c.Forward.Mode
	}
	return DefaultForwardMode
}

// ForwardState returns the path of the helper's pid record.
func (c *Config) ForwardState() string {
	if c.Forward.State != "" {
		return c.resolve(c.Forward.State)
	}
	return filepath.Join(c.StateDir(), DefaultForwardPIDFile)
}

// StateDir returns the directory holding run history and pid records.
func (c *Config) StateDir() string {
	if c.RawState != "" {
		return c.resolve(c.RawState)
	}
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "webuictl")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", "webuictl")
	}
	return filepath.Join(os.TempDir(), "webuictl")
}

// LogFile returns the path of the append-only operational log. The default
// sits next to the executable.
func (c *Config) LogFile() string {
	if c.Log.File != "" {
		return c.resolve(c.Log.File)
	}
	if exe, err := os.Executable(); err == nil {
		return filepath.Join(filepath.Dir(exe), DefaultLogFile)
	}
	return c.resolve(DefaultLogFile)
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) || c.BaseDir == "" {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error
	switch c.RelayPolicy() {
	case "one", "drain":
	default:
		err = multierr.Append(err, fmt.Errorf("relay.policy %q: must be one or drain", c.Relay.Policy))
	}
	switch c.ForwardMode() {
	case "handle", "probe":
	default:
		err = multierr.Append(err, fmt.Errorf("forward.mode %q: must be handle or probe", c.Forward.Mode))
	}
	if c.RawTimeout != "" {
		if d, perr := time.ParseDuration(c.RawTimeout); perr != nil || d <= 0 {
			err = multierr.Append(err, fmt.Errorf("timeout %q: not a positive duration", c.RawTimeout))
		}
	}
	seen := make(map[string]bool)
	for _, v := range c.EnvVars() {
		if seen[v.Name] {
			err = multierr.Append(err, fmt.Errorf("env %s: declared twice", v.Name))
		}
		seen[v.Name] = true
		err = multierr.Append(err, v.validate(v.Value))
	}
	return err
}

// LoadResult holds the parsed config and where it came from.
type LoadResult struct {
	Config *Config
	Path   string // file that was read; empty when defaults are in use
}

// Load reads the .webuictl file from dir. If no file exists, a default
// Config anchored at dir is returned.
func Load(dir string) (*LoadResult, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	res, err := LoadFile(filepath.Join(dir, FileName))
	if errors.Is(err, os.ErrNotExist) {
		return &LoadResult{Config: &Config{BaseDir: dir}}, nil
	}
	return res, err
}

// LoadFile reads an explicit configuration file.
func LoadFile(path string) (*LoadResult, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.BaseDir = filepath.Dir(path)
	// "elevate: []" would not survive Save, which omits empty lists.
	if cfg.Elevate != nil && len(cfg.Elevate) == 0 {
		cfg.NoElevate = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return &LoadResult{Config: cfg, Path: path}, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
