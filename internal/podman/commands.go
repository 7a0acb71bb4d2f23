// Package podman builds the container engine invocations used to manage
// the Open WebUI container. Builders are pure: nothing here runs a process.
package podman

import (
	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/config"
	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/runner"
)

// Commands builds engine invocations for one container.
type Commands struct {
	Engine    string
	Elevate   []string
	Container config.ContainerConfig
}

// New derives Commands from cfg with defaults applied.
func New(cfg *config.Config) *Commands {
	return &Commands{
		Engine:    cfg.EngineBinary(),
		Elevate:   cfg.ElevateArgv(),
		Container: cfg.ContainerSpec(),
	}
}

// Run starts the container detached with GPU passthrough, named volumes and
// one -e flag per variable in env.
func (c *Commands) Run(env []config.EnvVar) runner.Invocation {
	args := []string{"run", "-d"}
	for _, p := range c.Container.Ports {
		args = append(args, "-p", p)
	}
	args = append(args,
		"--runtime", c.Container.Runtime,
		"--gpus", c.Container.GPUs,
	)
	for _, v := range c.Container.Volumes {
		args = append(args, "-v", v)
	}
	args = append(args, EnvFlags(env)...)
	args = append(args,
		"--name", c.Container.Name,
		"--restart", c.Container.Restart,
		c.Container.Image,
	)
	return c.engine(args...)
}

// Remove force-removes the container, stopping it if it runs.
func (c *Commands) Remove() runner.Invocation {
	return c.engine("rm", "-f", c.Container.Name)
}

// Pull fetches the latest image without touching the container.
func (c *Commands) Pull() runner.Invocation {
	return c.engine("pull", c.Container.Image)
}

// Logs follows the container's output until it exits.
func (c *Commands) Logs() runner.Invocation {
	return c.engine("logs", "-f", c.Container.Name)
}

// EnvFlags renders env as "-e", "NAME=VALUE" pairs in declaration order.
func EnvFlags(env []config.EnvVar) []string {
	out := make([]string, 0, 2*len(env))
	for _, v := range env {
		out = append(out, "-e", v.Name+"="+v.Rendered())
	}
	return out
}

func (c *Commands) engine(args ...string) runner.Invocation {
	argv := make([]string, 0, len(c.Elevate)+1+len(args))
	argv = append(argv, c.Elevate...)
	argv = append(argv, c.Engine)
	argv = append(argv, args...)
	return runner.Command(argv...)
}
