package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/angelmondragon/txledger/internal/ingest"
	"github.com/angelmondragon/txledger/internal/ledger"
	"github.com/angelmondragon/txledger/internal/report"
	"github.com/angelmondragon/txledger/pkg/config"
	pkgerrors "github.com/angelmondragon/txledger/pkg/errors"
	"github.com/angelmondragon/txledger/pkg/logger"
	"github.com/angelmondragon/txledger/pkg/metrics"
)

const (
	serviceName = "txledger"
	exitUsage   = 2
	usageLine   = "usage: txledger [-input-format auto|csv|jsonl] [-output-format csv|json] <input-file>"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet(serviceName, flag.ContinueOnError)
	flags.SetOutput(stderr)
	inputFormat := flags.String("input-format", "", "input format: auto, csv or jsonl (overrides "+config.EnvInputFormat+")")
	outputFormat := flags.String("output-format", "", "output format: csv or json (overrides "+config.EnvOutputFormat+")")
	flags.Usage = func() {
		fmt.Fprintln(stderr, usageLine)
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return exitUsage
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return exitUsage
	}
	path := flags.Arg(0)

	envErr := godotenv.Load()
	if envErr != nil && errors.Is(envErr, fs.ErrNotExist) {
		envErr = nil
	}

	cfg, err := loadConfig(*inputFormat, *outputFormat)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", serviceName, err)
		return pkgerrors.ExitCode(err)
	}

	logg := logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Output:      stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithRunID(ctx, uuid.NewString())
	ctx = logg.WithInput(ctx, path)
	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	if envErr != nil {
		logg.Warn(logg.WithField(ctx, "error", envErr.Error()), "failed to load .env file")
	}

	registry := prometheus.NewRegistry()
	ledgerMetrics := metrics.NewLedgerMetrics(registry)

	start := time.Now()
	runErr := execute(ctx, cfg, path, stdout, logg, ledgerMetrics)
	ledgerMetrics.ObserveRun(time.Since(start), runErr)

	if cfg.Metrics.Enabled() {
		if err := metrics.WriteTextfile(cfg.Metrics.TextfilePath, registry); err != nil {
			runErr = multierr.Append(runErr, pkgerrors.Wrap(pkgerrors.CodeIO, err, "exporting metrics"))
		}
	}

	if runErr != nil {
		logg.Error(logg.WithField(ctx, "error_dump", pkgerrors.Dump(runErr)), "ledger run failed", runErr)
		fmt.Fprintf(stderr, "%s: %v\n", serviceName, runErr)
		return pkgerrors.ExitCode(runErr)
	}
	return 0
}

// loadConfig reads the environment and applies non-empty flag overrides.
func loadConfig(inputFormat, outputFormat string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "loading config")
	}
	if v := strings.ToLower(strings.TrimSpace(inputFormat)); v != "" {
		cfg.Input.Format = v
	}
	if v := strings.ToLower(strings.TrimSpace(outputFormat)); v != "" {
		cfg.Output.Format = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "loading config")
	}
	return cfg, nil
}

// execute runs one batch. The report is rendered in full before anything reaches
// stdout, so a failed run writes nothing there.
func execute(ctx context.Context, cfg *config.Config, path string, stdout io.Writer, logg *logger.Logger, observer *metrics.LedgerMetrics) (err error) {
	file, err := openInput(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			err = multierr.Append(err, pkgerrors.Wrap(pkgerrors.CodeIO, cerr, "closing input"))
		}
	}()

	format := ingest.Resolve(ingest.Format(cfg.Input.Format), path)
	src, err := ingest.NewSource(format, file)
	if err != nil {
		return err
	}
	logg.Info(logg.WithField(ctx, "format", format.String()), "processing input")

	svc, err := ledger.NewService(ledger.ServiceParams{Logger: logg, Observer: observer})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building ledger service")
	}
	summaries, err := svc.Process(ctx, src)
	if err != nil {
		return err
	}
	observer.SetAccounts(countAccounts(summaries))

	var buf bytes.Buffer
	writer, err := report.NewWriter(report.Format(cfg.Output.Format), &buf)
	if err != nil {
		return err
	}
	if err := writer.Write(summaries); err != nil {
		return err
	}
	if _, err := buf.WriteTo(stdout); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeIO, err, "writing report")
	}
	return nil
}

func openInput(path string) (*os.File, error) {
	file, err := os.Open(path)
	if err == nil {
		return file, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "opening input").
			WithDetails(map[string]any{"path": path})
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeIO, err, "opening input").
		WithDetails(map[string]any{"path": path})
}

func countAccounts(summaries []ledger.AccountSummary) (active, locked int) {
	for _, s := range summaries {
		if s.Locked {
			locked++
			continue
		}
		active++
	}
	return active, locked
}
