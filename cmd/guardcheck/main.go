package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/hook-guard/guard"
)

var version = "<unknown>"

// errRejected signals a completed run whose verdict was a rejection. The
// verdict has already been printed.
var errRejected = stderrors.New("hook rejected")

func configureCLI() *cobra.Command {
	var configPath string
	var flags config

	rootCommand := &cobra.Command{
		Use:           "guardcheck [path to hook module]",
		Short:         "Verify a hook module before admission",
		Long:          "guardcheck - statically verify that a WebAssembly hook module is admissible and report its worst-case instruction count",
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			cfg.override(cmd.Flags(), flags)
			if err := cfg.check(); err != nil {
				return err
			}
			return check(cmd, args[0], cfg)
		},
	}

	rootCommand.AddCommand(codesCommand())
	rootCommand.AddCommand(apiCommand())

	defaults := defaultConfig()
	rootCommand.Flags().StringVarP(&configPath, "config", "c", "", "read settings from this YAML file")
	rootCommand.Flags().BoolVar(&flags.Strict, "strict", defaults.Strict, "require every function type to return exactly one value")
	rootCommand.Flags().StringVar(&flags.LogLevel, "log-level", defaults.LogLevel, "diagnostic log level (debug, info, warn, error)")
	rootCommand.Flags().StringVar(&flags.LogFormat, "log-format", defaults.LogFormat, "diagnostic log format (console, json)")
	rootCommand.Flags().StringVar(&flags.Color, "color", defaults.Color, "colorize the verdict (auto, always, never)")

	return rootCommand
}

// check verifies the module at path and prints the verdict.
func check(cmd *cobra.Command, path string, cfg config) error {
	out := cmd.OutOrStdout()

	code, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read module: %w", err)
	}

	logger, err := newLogger(cfg, out)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	guard.SetLogger(logger.Named("guard"))

	logger.Debug("verifying", zap.String("path", path), zap.Int("size", len(code)), zap.Bool("strict", cfg.Strict))

	p := printer{w: out, color: useColor(cfg.Color, out)}
	res, err := guard.Validate(code, cfg.Strict, guard.NewZapSink(logger))
	if err != nil {
		p.rejected(path, err)
		return errRejected
	}
	p.accepted(path, res)
	return nil
}

func main() {
	rootCommand := configureCLI()

	if err := rootCommand.Execute(); err != nil {
		if !stderrors.Is(err, errRejected) {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
		os.Exit(1)
	}
}
