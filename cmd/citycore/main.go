// Command citycore serves the building and elevator API and offers offline
// helpers for snapshot documents.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"citycore/internal/config"
	"citycore/internal/logging"
)

var exitFunc = os.Exit

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		exitFunc(1)
	}
}

type rootOptions struct {
	configPath string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "citycore",
		Short:        "Manage buildings and their elevators",
		SilenceUsage: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")

	root.AddCommand(
		newServeCmd(opts),
		newValidateCmd(),
		newSnapshotCmd(opts),
	)
	return root
}

func (o *rootOptions) load() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg config.Log, out io.Writer) *slog.Logger {
	return logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Level),
		Format: logging.ParseFormat(cfg.Format),
		Output: out,
	})
}
