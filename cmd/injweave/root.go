package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KOMKZ/go-yogan-inject/config"
	"github.com/KOMKZ/go-yogan-inject/logger"
	"github.com/KOMKZ/go-yogan-inject/telemetry"
	"github.com/KOMKZ/go-yogan-inject/weaver"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

const meterName = "github.com/KOMKZ/go-yogan-inject/cmd/injweave"

// usageError marks errors caused by how the command was invoked.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func newRootCmd() *cobra.Command {
	var configFile, envPrefix string

	cmd := &cobra.Command{
		Use:   "injweave [flags] [patterns...]",
		Short: "Weave dependency injection calls into Go packages",
		Long: `injweave inserts inject.Inject calls into the activation methods of scene
objects and assets, wraps constructors of other injectable types with
inject.Woven, and writes a generated file registering every service and
injectable type of each package.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile, envPrefix, cmd.Flags())
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, args, cmd.OutOrStdout())
		},
	}

	defaults := weaver.DefaultConfig()
	flags := cmd.Flags()
	flags.StringVarP(&configFile, "config", "c", "", "YAML configuration file")
	flags.StringVar(&envPrefix, "env-prefix", "INJWEAVE", "prefix of configuration environment variables")
	flags.String("mode", defaults.Mode, "package loader: types or syntax")
	flags.String("output", defaults.Output, "name of the generated file")
	flags.Bool("dry-run", false, "report changes without writing files")
	flags.String("import-path", "", "import path of the package in syntax mode")
	flags.Int("concurrency", defaults.Concurrency, "packages planned in parallel")
	flags.String("log-level", "info", "debug, info, warn or error")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})
	return cmd
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	fmt.Fprintf(stderr, "injweave: %v\n", err)

	var ue usageError
	if errors.As(err, &ue) || errors.Is(err, config.ErrInvalidConfig) {
		fmt.Fprint(stderr, cmd.UsageString())
		return exitUsage
	}
	return exitError
}

func run(ctx context.Context, cfg AppConfig, patterns []string, out io.Writer) error {
	logger.InitManager(cfg.Logger)
	defer logger.CloseAll()
	log := logger.GetLogger("injweave")

	metrics, err := telemetry.NewMetricsManager(ctx, cfg.Metrics)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.Metrics.ExportTimeout+time.Second)
		defer cancel()
		if err := metrics.Shutdown(sctx); err != nil {
			log.WarnCtx(ctx, "metrics shutdown failed", zap.Error(err))
		}
	}()

	w, err := weaver.New(
		weaver.WithConfig(cfg.Weaver),
		weaver.WithLogger(logger.GetLogger("weaver")),
		weaver.WithMeter(metrics.Meter(meterName)),
	)
	if err != nil {
		return err
	}

	report, err := w.Run(ctx, patterns...)
	if err != nil {
		log.ErrorCtx(ctx, "weaving failed", zap.Error(err))
		return err
	}
	printReport(out, report)
	return nil
}

func printReport(out io.Writer, r *weaver.Report) {
	verb := "wrote"
	if r.DryRun {
		verb = "would write"
	}
	for _, path := range r.Written {
		fmt.Fprintf(out, "%s %s\n", verb, path)
	}
	for _, path := range r.Removed {
		fmt.Fprintf(out, "removed %s\n", path)
	}
	fmt.Fprintf(out, "%d packages, %d types registered, %d woven, %d warnings\n",
		r.Packages, r.Registered, r.Woven, len(r.Warnings))
}
