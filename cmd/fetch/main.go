package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"coinprices-service/internal/bootstrap"
	"coinprices-service/internal/config"
	"coinprices-service/internal/infrastructure/logx"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() { _ = godotenv.Load() }

// Exit codes: 0 all sources succeeded, 1 at least one source failed
// (the snapshot is still written), 2 nothing was written.
const (
	exitOK      = 0
	exitPartial = 1
	exitFatal   = 2
)

type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var (
		outputDir   string
		sources     string
		parallelism int
		logLevel    string
	)

	cmd := &cobra.Command{
		Use:           "fetch",
		Short:         "Fetch crypto prices from every configured source and write today's snapshot",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("output-dir") {
				cfg.OutputDir = outputDir
			}
			if cmd.Flags().Changed("sources") {
				cfg.Sources = config.SplitList(sources)
			}
			if cmd.Flags().Changed("parallelism") {
				cfg.Parallelism = parallelism
			}
			if logLevel != "" {
				if err := logx.SetLevel(logLevel); err != nil {
					return fmt.Errorf("log level: %w", err)
				}
			}
			return run(cmd.Context(), cfg, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.Flags().StringVar(&outputDir, "output-dir", "data", "directory to write the daily snapshot JSON into (env OUTPUT_DIR)")
	cmd.Flags().StringVar(&sources, "sources", "", "comma-separated sources, in run order (env SOURCES)")
	cmd.Flags().IntVar(&parallelism, "parallelism", 1, "how many sources to fetch at once (env FETCH_PARALLELISM)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL")
	return cmd
}

func run(ctx context.Context, cfg config.Config, stdout, stderr io.Writer) error {
	log := logx.L()
	svc, cleanup, err := bootstrap.BuildSnapshotService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	for _, e := range res.Snapshot.Errors {
		fmt.Fprintf(stderr, "%s: %s\n", e.Source, e.Message)
	}
	fmt.Fprintf(stdout, "Saved prices to %s\n", res.Path)
	if code := res.ExitCode(); code != exitOK {
		return exitError{code: exitPartial}
	}
	return nil
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	var ee exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	logx.L().Error("fetch.fatal", zap.Error(err))
	fmt.Fprintf(stderr, "error: %v\n", err)
	return exitFatal
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	_ = logx.L().Sync()
	os.Exit(code)
}
