package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/skeinlang/skein/pkg/typer"
)

// Config holds the flags shared by every subcommand.
type Config struct {
	Debug   bool
	Workers int
	NoCache bool
}

func main() {
	var cfg Config

	rootCmd := &cobra.Command{
		Use:   "skein-typer",
		Short: "Skein type and effect checker",
		Long: `skein-typer runs the Skein type and effect checker over built-in
workloads: a small showcase program and a synthetic stress generator.
It reports the checked signatures, purity, and any diagnostics.`,
		Example: `  # Check the showcase program and print every signature
  skein-typer demo

  # Stress the checker with 2000 generated definitions
  skein-typer stress --defs 2000

  # Single worker, no formula cache, debug logging
  skein-typer stress -d --workers 1 --no-cache`,
	}

	rootCmd.PersistentFlags().BoolVarP(&cfg.Debug, "debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().IntVar(&cfg.Workers, "workers", 0, "Max definitions checked concurrently (0 = one per CPU)")
	rootCmd.PersistentFlags().BoolVar(&cfg.NoCache, "no-cache", false, "Disable Boolean formula memoization")

	rootCmd.AddCommand(demoCmd(&cfg))
	rootCmd.AddCommand(stressCmd(&cfg))

	if err := fang.Execute(context.Background(), rootCmd,
		fang.WithVersion("v0.1.0"),
		fang.WithCommit("dev"),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, err.Error())
		}),
	); err != nil {
		os.Exit(1)
	}
}

// loadOptions layers the nearest skein.toml under the command-line flags
// and installs the logger it asks for.
func loadOptions(cfg *Config) typer.Options {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	path, opts, err := typer.FindProjectOptions(wd)
	if err != nil {
		slog.Warn("ignoring project options", "error", err)
		opts = typer.DefaultOptions()
	}

	if cfg.Workers > 0 {
		opts.Parallelism = cfg.Workers
	}
	if cfg.NoCache {
		opts.NoCache = true
	}
	if cfg.Debug {
		opts.LogLevel = "debug"
	}

	setupLogging(opts.LogLevel)
	if path != "" {
		slog.Debug("loaded project options", "path", path)
	}
	return opts
}

func setupLogging(level string) {
	lvl := slog.LevelInfo
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	})
	slog.SetDefault(slog.New(handler))
}
