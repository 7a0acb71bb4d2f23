package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/config"
)

type envOptions struct {
	Save bool
}

func newEnvCommand(root *rootOptions) *cobra.Command {
	opts := &envOptions{}

	cmd := &cobra.Command{
		Use:   "env [NAME=VALUE...]",
		Short: "Show or change the container environment",
		Long: `Without arguments, list the environment variables passed to the container
on start. With NAME=VALUE arguments, change them; --save writes the result to
the configuration file so later invocations use it.`,
		Example: `  webuictl env
  webuictl env OLLAMA_KV_CACHE_TYPE=Q8_0 --save`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnv(cmd, root, opts, args)
		},
	}
	cmd.Flags().BoolVar(&opts.Save, "save", false, "persist the changes to the configuration file")
	return cmd
}

func runEnv(cmd *cobra.Command, root *rootOptions, opts *envOptions, args []string) error {
	s, err := root.load(cmd)
	if err != nil {
		return err
	}
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("%q: expected NAME=VALUE", arg)
		}
		if err := s.cfg.SetEnv(name, value); err != nil {
			return err
		}
	}
	if opts.Save {
		if err := config.Save(s.cfgPath, s.cfg); err != nil {
			return err
		}
		s.diag.WithField("path", s.cfgPath).Info("configuration saved")
	}
	printEnv(cmd, s.cfg.EnvVars())
	return nil
}

func printEnv(cmd *cobra.Command, vars []config.EnvVar) {
	out := cmd.OutOrStdout()
	for _, v := range vars {
		switch v.Kind {
		case config.Choice:
			fmt.Fprintf(out, "%s=%s\t[%s]\n", v.Name, v.Rendered(), strings.Join(v.Options, "|"))
		default:
			fmt.Fprintf(out, "%s=%s\n", v.Name, v.Rendered())
		}
	}
}
