// Package cmdutil holds the setup steps shared by the commands.
package cmdutil

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgx-contrib/pgxtrace"
	"github.com/spf13/viper"
	otlpruntime "go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/furyracing/race-engine/log"
	"github.com/furyracing/race-engine/pkg/config"
	"github.com/furyracing/race-engine/pkg/db/postgres"
	"github.com/furyracing/race-engine/pkg/track"
	"github.com/furyracing/race-engine/pkg/tuning"
	"github.com/furyracing/race-engine/pkg/utils"
)

func ParseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// SetupLogger creates the application and the sql logger according to the
// log flags and installs the former as default logger.
func SetupLogger() (logger, sqlLogger *log.Logger) {
	switch config.LogFormat {
	case "json":
		logger = log.New(
			os.Stderr,
			ParseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
		sqlLogger = log.New(
			os.Stderr,
			ParseLogLevel(config.SQLLogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	default:
		logger = log.DevLogger(
			os.Stderr,
			ParseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
		sqlLogger = log.DevLogger(
			os.Stderr,
			ParseLogLevel(config.SQLLogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	}
	if config.LogFilter != "" {
		if filtered, err := logger.WithFilter(config.LogFilter); err == nil {
			logger = filtered
		} else {
			fmt.Fprintf(os.Stderr, "ignoring invalid log filter %q: %v\n", config.LogFilter, err)
		}
	}
	log.ResetDefault(logger)
	return logger, sqlLogger.Named("sql")
}

// LoadTuning returns the default tuning overridden by the "tuning" key of
// the configuration.
func LoadTuning() (tuning.Tuning, error) {
	t := tuning.Default()
	if viper.IsSet("tuning") {
		if err := viper.UnmarshalKey("tuning", &t); err != nil {
			return t, fmt.Errorf("%w: %w", tuning.ErrInvalidTuning, err)
		}
	}
	return t, t.Validate()
}

// LoadCatalog returns the builtin circuits extended by config.TracksFile.
func LoadCatalog() (*track.Catalog, error) {
	c := track.NewCatalog()
	if config.TracksFile == "" {
		return c, nil
	}
	f, err := os.Open(config.TracksFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	n, err := c.LoadCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.TracksFile, err)
	}
	log.Debug("circuits loaded", log.String("file", config.TracksFile), log.Int("count", n))
	return c, nil
}

// StartTelemetry installs the telemetry providers if enabled. The returned
// value is nil if telemetry is disabled or could not be set up.
func StartTelemetry() *config.Telemetry {
	if !config.EnableTelemetry {
		return nil
	}
	log.Info("Enabling telemetry")
	telemetry, err := config.SetupTelemetry(context.Background())
	if err != nil {
		log.Warn("Could not setup telemetry", log.ErrorField(err))
		return nil
	}
	err = otlpruntime.Start(otlpruntime.WithMinimumReadMemStatsInterval(time.Second))
	if err != nil {
		log.Warn("Could not start runtime metrics", log.ErrorField(err))
	}
	return telemetry
}

// ConnectDB creates the database pool. Statements are logged to sqlLogger
// and traced if telemetry is active.
func ConnectDB(sqlLogger *log.Logger, telemetry *config.Telemetry) *pgxpool.Pool {
	pgTracer := pgxtrace.CompositeQueryTracer{
		postgres.NewMyTracer(sqlLogger, log.DebugLevel),
	}
	if telemetry != nil {
		pgTracer = append(pgTracer, postgres.NewOtlpTracer())
	}
	return postgres.InitWithURL(config.DB, postgres.WithTracer(pgTracer))
}

// WaitForRequiredServices blocks until database and NATS server accept
// connections. Unused services are skipped.
func WaitForRequiredServices(needDB, needNats bool) {
	timeout, err := time.ParseDuration(config.WaitForServices)
	if err != nil {
		log.Warn("Invalid duration value. Setting default 60s", log.ErrorField(err))
		timeout = 60 * time.Second
	}

	wg := sync.WaitGroup{}
	checkTCP := func(addr string) {
		defer wg.Done()
		if err := utils.WaitForTCP(context.Background(), addr, timeout); err != nil {
			log.Fatal("required services not ready", log.ErrorField(err))
		}
	}
	if needDB {
		if postgresAddr := utils.ExtractFromDBURL(config.DB); postgresAddr != "" {
			wg.Add(1)
			go checkTCP(postgresAddr)
		}
	}
	if needNats {
		if natsAddr := utils.ExtractFromNatsURL(config.NatsURL); natsAddr != "" {
			wg.Add(1)
			go checkTCP(natsAddr)
		}
	}
	log.Debug("Waiting for connection checks to return")
	wg.Wait()
	log.Debug("Required services are available")
}
