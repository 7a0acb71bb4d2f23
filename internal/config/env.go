package config

import (
	"fmt"
	"slices"
	"strings"
)

// Kind selects how an EnvVar's value is edited and rendered.
type Kind string

const (
	// Flag is an on/off toggle rendered as 1 or 0.
	Flag Kind = "flag"
	// Choice is a string picked from Options.
	Choice Kind = "choice"
)

// EnvVar is one -e NAME=VALUE setting passed to the container.
type EnvVar struct {
	Name    string   `yaml:"name"`
	Kind    Kind     `yaml:"kind"`
	Value   string   `yaml:"value"`
	Options []string `yaml:"options,omitempty"` // choice only
}

// DefaultEnv is used when no env list is configured.
var DefaultEnv = []EnvVar{
	{Name: "OLLAMA_FLASH_ATTENTION", Kind: Flag, Value: "1"},
	{Name: "OLLAMA_KV_CACHE_TYPE", Kind: Choice, Value: "Q4_0", Options: []string{"Q4_0", "Q8_0", "f16"}},
	{Name: "OLLAMA_USE_CUDA", Kind: Flag, Value: "1"},
	{Name: "USE_CUDA_DOCKER", Kind: Choice, Value: "true", Options: []string{"true", "false"}},
}

// EnvVars returns the configured variables in declaration order, falling
// back to DefaultEnv.
func (c *Config) EnvVars() []EnvVar {
	src := c.Env
	if len(src) == 0 {
		src = DefaultEnv
	}
	out := make([]EnvVar, len(src))
	for i, v := range src {
		v.Options = slices.Clone(v.Options)
		out[i] = v
	}
	return out
}

// SetEnv changes the value of a declared variable. Flag values accept
// 1/0/true/false/on/off; choice values must be one of the declared options.
func (c *Config) SetEnv(name, value string) error {
	if len(c.Env) == 0 {
		c.Env = c.EnvVars()
	}
	for i := range c.Env {
		v := &c.Env[i]
		if v.Name != name {
			continue
		}
		if v.Kind == Flag {
			value = normalizeFlag(value)
		}
		if err := v.validate(value); err != nil {
			return err
		}
		v.Value = value
		return nil
	}
	return fmt.Errorf("env %s: not declared", name)
}

// Rendered returns the value as passed to the container.
func (v EnvVar) Rendered() string {
	if v.Kind == Flag {
		return normalizeFlag(v.Value)
	}
	return v.Value
}

func (v EnvVar) validate(value string) error {
	if v.Name == "" {
		return fmt.Errorf("env: variable without a name")
	}
	switch v.Kind {
	case Flag:
		if f := normalizeFlag(value); f != "1" && f != "0" {
			return fmt.Errorf("env %s: %q is not a flag value", v.Name, value)
		}
	case Choice:
		if len(v.Options) > 0 && !slices.Contains(v.Options, value) {
			return fmt.Errorf("env %s: %q is not one of %s", v.Name, value, strings.Join(v.Options, ", "))
		}
	default:
		return fmt.Errorf("env %s: unknown kind %q", v.Name, v.Kind)
	}
	return nil
}

func normalizeFlag(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return "1"
	case "0", "false", "off", "no", "":
		return "0"
	}
	return s
}
