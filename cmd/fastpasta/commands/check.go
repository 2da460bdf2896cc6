package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/marmos91/fastpasta/internal/cli/output"
	"github.com/marmos91/fastpasta/internal/dispatch"
	"github.com/marmos91/fastpasta/internal/logger"
	"github.com/marmos91/fastpasta/internal/metrics"
	"github.com/marmos91/fastpasta/internal/scanner"
	"github.com/marmos91/fastpasta/internal/stats"
	"github.com/marmos91/fastpasta/internal/statsstore"
	"github.com/marmos91/fastpasta/internal/statusapi"
	"github.com/marmos91/fastpasta/internal/telemetry"
	"github.com/marmos91/fastpasta/internal/validate"
	"github.com/marmos91/fastpasta/internal/validate/alpide"
	"github.com/marmos91/fastpasta/pkg/config"
)

var reportFormat string

var checkCmd = &cobra.Command{
	Use:   "check <input>",
	Short: "Decode and validate a readout stream, printing a stats report",
	Long: `check runs the full scanner -> dispatcher -> validator -> stats
pipeline over a file, S3 object (s3://bucket/key), or stdin ("-"), then
prints the finalized report (spec §4.6) in the chosen format.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&reportFormat, "format", "table", "report format: table, json, yaml")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(reportFormat)
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "fastpasta",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "fastpasta",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", "error", err)
		}
	}()

	ctx, span := telemetry.StartSpan(ctx, "cmd.check")
	defer span.End()

	m := metrics.Null()
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		m = metrics.New(reg)
		metricsSrv := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsSrv.Shutdown(shutdownCtx)
		}()
		logger.Info("metrics server listening", "port", cfg.Metrics.Port)
	}

	collector := stats.NewCollector(cfg.Decode.MaxTolerateErrors, cfg.Decode.PixelSensor).WithMetrics(m)

	if cfg.StatusAPI.Enabled {
		statusSrv := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.StatusAPI.Port),
			Handler: statusapi.NewRouter(collector),
		}
		go func() {
			if err := statusSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("status api server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = statusSrv.Shutdown(shutdownCtx)
		}()
		logger.Info("status api listening", "port", cfg.StatusAPI.Port)
	}

	events := make(chan stats.Event, 256)
	collectorDone := make(chan struct{})
	go func() {
		collector.Run(events)
		close(collectorDone)
	}()

	reader, closer, err := scanner.OpenInput(ctx, args[0], s3Options(cfg))
	if err != nil {
		close(events)
		<-collectorDone
		return fmt.Errorf("open input: %w", err)
	}
	defer closer.Close()

	sc := scanner.New(reader, scanner.Options{
		Filter:      cfg.Decode.Filter.ToScannerTarget(),
		SkipPayload: cfg.Decode.SkipPayload,
		Sink:        events,
	})

	keyKind := dispatch.KeyByLink
	if cfg.Decode.DispatchKey == "fee" {
		keyKind = dispatch.KeyByFee
	}

	var customChecks stats.CustomChecks
	frameCfg := alpide.FrameConfig{}
	if cfg.Decode.CustomChecksPath != "" {
		if _, err := toml.DecodeFile(cfg.Decode.CustomChecksPath, &customChecks); err != nil {
			close(events)
			<-collectorDone
			return fmt.Errorf("load custom checks: %w", err)
		}
		if customChecks.ChipCountOB != nil {
			frameCfg.ChipCountOB = *customChecks.ChipCountOB
		}
		if customChecks.ChipOrdersOB != nil {
			frameCfg.ChipOrdersOB = *customChecks.ChipOrdersOB
		}
	}

	dispatcher := dispatch.New(keyKind, validate.Config{
		PixelSensor:   cfg.Decode.PixelSensor,
		AlpideEnabled: cfg.Decode.AlpideChecksEnabled,
		AlpideFrame:   frameCfg,
	}, events, m)

	logger.Info("decoding", "input", args[0], "dispatch_key", cfg.Decode.DispatchKey)

	var scanErr error
runLoop:
	for {
		select {
		case <-ctx.Done():
			break runLoop
		default:
		}

		batch, berr := sc.NextBatch()
		dispatcher.DispatchBatch(batch)
		if collector.StopRequested() {
			break
		}
		if berr != nil {
			if !errors.Is(berr, io.EOF) {
				scanErr = berr
			}
			break
		}
	}

	dispatcher.Shutdown()
	close(events)
	<-collectorDone

	if scanErr != nil {
		logger.Error("scan stopped early", "error", scanErr)
	}

	if cfg.Decode.CustomChecksPath != "" {
		collector.ValidateCustomChecks(customChecks)
	}

	if err := writeStats(cfg, collector, format); err != nil {
		return err
	}

	collector.PrintErrors(os.Stderr, cfg.Decode.MuteErrors, cfg.Decode.ErrorCodeFilter)

	if cfg.History.Enabled {
		if err := recordHistory(ctx, cfg, args[0], collector); err != nil {
			logger.Error("history record failed", "error", err)
		}
	}

	if collector.HasFatal() {
		return fmt.Errorf("run aborted on a fatal error")
	}
	return nil
}

// writeStats prints the report (and, if configured, the comparison
// against a previous run) and serializes the snapshot per spec §6.
func writeStats(cfg *config.Config, collector *stats.Collector, format output.Format) error {
	if cfg.Stats.CompareInputPath != "" {
		data, err := os.ReadFile(cfg.Stats.CompareInputPath)
		if err != nil {
			return fmt.Errorf("read comparison stats file: %w", err)
		}
		var other *stats.Collector
		if cfg.Stats.StatsOutputFormat == "toml" {
			other, err = stats.LoadTOML(data)
		} else {
			other, err = stats.LoadJSON(data)
		}
		if err != nil {
			return fmt.Errorf("parse comparison stats file: %w", err)
		}
		for _, diff := range collector.Compare(other) {
			fmt.Fprintln(os.Stdout, diff)
		}
	}

	if err := collector.PrintReport(os.Stdout, format); err != nil {
		return fmt.Errorf("print report: %w", err)
	}

	switch cfg.Stats.StatsOutputMode {
	case "stdout":
		return marshalStats(os.Stdout, cfg, collector)
	case "file":
		f, err := os.Create(cfg.Stats.OutputPath)
		if err != nil {
			return fmt.Errorf("create stats output file: %w", err)
		}
		defer f.Close()
		return marshalStats(f, cfg, collector)
	}
	return nil
}

func marshalStats(w io.Writer, cfg *config.Config, collector *stats.Collector) error {
	var (
		data []byte
		err  error
	)
	if cfg.Stats.StatsOutputFormat == "toml" {
		data, err = collector.MarshalTOML()
	} else {
		data, err = collector.MarshalJSON()
	}
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func recordHistory(ctx context.Context, cfg *config.Config, inputPath string, collector *stats.Collector) error {
	store, err := statsstore.Open(statsstore.Config{
		Driver:      statsstore.Driver(cfg.History.Driver),
		SQLitePath:  cfg.History.SQLitePath,
		PostgresDSN: cfg.History.PostgresDSN,
	})
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	snapshot, err := collector.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal history snapshot: %w", err)
	}

	now := time.Now()
	return store.Save(ctx, statsstore.RunRecord{
		StartedAt:    now,
		FinishedAt:   now,
		InputPath:    inputPath,
		RDHSeen:      collector.Rdh.RDHSeen,
		RDHFiltered:  collector.Rdh.RDHFiltered,
		PayloadBytes: collector.Rdh.PayloadBytes,
		ErrorCount:   uint64(len(collector.Err.Messages)),
		HasFatal:     collector.HasFatal(),
		SnapshotJSON: snapshot,
	})
}
