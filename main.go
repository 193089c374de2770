package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/log/global"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nimdanitro/sensorlog/pkg/monitor"
	"github.com/nimdanitro/sensorlog/pkg/sensor"
	"github.com/nimdanitro/sensorlog/pkg/sink"
	"github.com/nimdanitro/sensorlog/pkg/textfile"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	exitOK     = 0
	exitFatal  = 1
	exitConfig = 2
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Getenv, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// run brings the process up and returns its exit code.
func run(ctx context.Context, args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	dotenvErr := godotenv.Load()

	// Parse command line flags
	cfg, err := parseConfig(normalizeArgs(args), getenv)
	if errors.Is(err, pflag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitConfig
	}

	if cfg.TestRequirements {
		checkRequirements(stdout, requirementProbes(cfg))
		return exitOK
	}

	// Setup Otel
	shutdown, err := setupOTelSDK(ctx)
	defer func() {
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		_ = shutdown(sctx)
	}()
	if err != nil {
		fmt.Fprintln(stderr, "cannot set up telemetry:", err)
		return exitFatal
	}

	// Initialize logger
	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.Lock(zapcore.AddSync(stderr)), cfg.LogLevel),
		otelzap.NewCore("github.com/nimdanitro/sensorlog", otelzap.WithLoggerProvider(global.GetLoggerProvider())),
	)
	logger := zap.New(core)
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	logger.Info("starting up", zap.String("version", version), zap.String("commit", commit), zap.String("buildDate", date))
	if dotenvErr != nil && !errors.Is(dotenvErr, fs.ErrNotExist) {
		logger.Warn("cannot load .env file", zap.Error(dotenvErr))
	}

	// Setup the sensor
	if err := sensor.HostInit(); err != nil {
		logger.Error("cannot initialise gpio", zap.Error(err))
		return exitFatal
	}
	reader, err := sensor.NewDHT(cfg.Pin,
		sensor.WithModel(cfg.Model),
		sensor.WithRetries(cfg.Retries),
		sensor.WithLogger(logger),
	)
	if err != nil {
		logger.Error("cannot create sensor reader", zap.Error(err))
		return exitFatal
	}

	return serve(ctx, cfg, reader, stdout, openDisplay, logger)
}

// serve opens the outputs and polls reader until ctx is done or a read
// fails fatally.
func serve(ctx context.Context, cfg *Config, reader sensor.Reader, stdout io.Writer, display displayOpener, logger *zap.Logger) int {
	sinks := openSinks(cfg, stdout, display, logger)
	defer func() {
		if err := sink.CloseAll(sinks); err != nil {
			logger.Error("cannot close outputs", zap.Error(err))
		}
	}()
	if len(sinks) == 0 {
		logger.Warn("no output enabled, readings are only logged")
	}

	var recorders []monitor.Recorder
	if cfg.MetricsFile != "" {
		rec, err := textfile.New(cfg.MetricsFile, cfg.Pin)
		if err != nil {
			logger.Error("metrics textfile disabled", zap.Error(err))
		} else {
			recorders = append(recorders, rec)
		}
	}

	m, err := monitor.New(reader,
		monitor.WithSinks(sinks...),
		monitor.WithRecorders(recorders...),
		monitor.WithInterval(cfg.Interval),
		monitor.WithExitOnError(cfg.ExitOnError),
		monitor.WithLogger(logger),
	)
	if err != nil {
		logger.Error("cannot create monitor", zap.Error(err))
		return exitFatal
	}

	if err := m.Run(ctx); err != nil {
		logger.Error("terminating", zap.Error(err))
		return exitFatal
	}
	return exitOK
}
