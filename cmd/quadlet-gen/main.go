// Command quadlet-gen reads quadlet unit files (.container, .volume,
// .network, .pod, .kube, .image, .build) from the configured search
// directories and writes the systemd service units they translate to
// under the given output directory.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/qgen/quadlet-gen/pkg/config"
	"github.com/qgen/quadlet-gen/pkg/generator"
	"github.com/qgen/quadlet-gen/pkg/report"
)

var (
	userMode  bool
	verbose   bool
	dryRun    bool
	noKmsgLog bool
	engineBin string
	unitDirs  []string
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quadlet-gen <output-dir>",
		Short: "Translate quadlet unit files into systemd service units",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return run(args[0])
		},
	}

	cmd.Flags().BoolVarP(&userMode, "user", "u", false, "resolve rootless (XDG) search directories instead of the system ones")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	cmd.Flags().BoolVar(&dryRun, "dryrun", false, "report what would be written without touching the output directory")
	cmd.Flags().BoolVar(&noKmsgLog, "no-kmsg-log", false, "accepted for compatibility with the original generator; this port always logs to stderr")
	cmd.Flags().StringVar(&engineBin, "engine", "", "container engine binary (default: $QUADLET_ENGINE or "+config.DefaultEngineBin+")")
	cmd.Flags().StringArrayVar(&unitDirs, "unit-dir", nil, "unit search directory (repeatable, highest precedence first)")

	return cmd
}

func initLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func run(outputDir string) error {
	initLogging(verbose)

	cfg := config.Load(userMode, verbose, dryRun, engineBin, unitDirs)
	slog.Debug("resolved configuration", "unitDirs", cfg.UnitDirs, "engine", cfg.EngineBin, "userMode", cfg.UserMode, "dryRun", cfg.DryRun)

	source := generator.NewDirSource(cfg.UnitDirs)

	var sink generator.UnitSink
	var dry *generator.DryRunSink
	if cfg.DryRun {
		dry = &generator.DryRunSink{}
		sink = dry
	} else {
		sink = generator.NewDirSink(outputDir)
	}

	result, err := generator.Run(source, sink, generator.Options{
		UserMode:  cfg.UserMode,
		EngineBin: cfg.EngineBin,
	})
	if err != nil {
		slog.Error("generator run failed", "error", err)
		return err
	}

	report.Print(os.Stdout, result)

	failed := result.Failed()
	if len(failed) > 0 {
		fmt.Fprintf(os.Stderr, "%d unit(s) failed to translate\n", len(failed))
		if cfg.DryRun {
			os.Exit(1)
		}
	}

	return nil
}
