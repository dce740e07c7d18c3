package serve

import (
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/furyracing/race-engine/log"
	"github.com/furyracing/race-engine/pkg/cmd/cmdutil"
	"github.com/furyracing/race-engine/pkg/config"
	"github.com/furyracing/race-engine/pkg/oracle"
	"github.com/furyracing/race-engine/pkg/race"
	raceRepos "github.com/furyracing/race-engine/pkg/repository/race"
)

var ErrNoNats = errors.New("serve requires --nats-url")

func NewServeCmd() *cobra.Command {
	var requestTimeout time.Duration
	var concurrent bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "answers race requests received via NATS",
		Long: `Answers race requests sent to <subject-prefix>.race.

The request payload is the 36 digit attribute string, the reply contains
combinedResult and encodedHex. Results are published to
<subject-prefix>.results and stored in the database if --archive is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return startServer(requestTimeout, concurrent)
		},
	}
	cmd.Flags().DurationVar(&requestTimeout, "request-timeout", 5*time.Second,
		"max time spent per race request")
	cmd.Flags().BoolVar(&concurrent, "concurrent", true,
		"simulate both players in parallel")
	cmd.Flags().BoolVar(&config.ArchiveResults, "archive", false,
		"store results in the database")
	return cmd
}

//nolint:funlen // by design
func startServer(requestTimeout time.Duration, concurrent bool) error {
	logger, sqlLogger := cmdutil.SetupLogger()
	if config.NatsURL == "" {
		return ErrNoNats
	}
	log.Debug("Config:",
		log.String("nats", config.NatsURL),
		log.String("prefix", config.SubjectPrefix),
		log.Bool("archive", config.ArchiveResults))

	cmdutil.WaitForRequiredServices(config.ArchiveResults, true)
	telemetry := cmdutil.StartTelemetry()

	t, err := cmdutil.LoadTuning()
	if err != nil {
		return err
	}
	catalog, err := cmdutil.LoadCatalog()
	if err != nil {
		return err
	}

	nc, err := oracle.Connect(config.NatsURL, logger.Named("nats"))
	if err != nil {
		return err
	}
	defer nc.Close()

	svcOpts := []race.Option{
		race.WithTuning(t),
		race.WithCatalog(catalog),
		race.WithConcurrency(concurrent),
		race.WithLogger(logger.Named("race")),
		race.WithPublisher(oracle.NewPublisher(nc,
			oracle.WithSubjectPrefix(config.SubjectPrefix),
			oracle.WithLogger(logger.Named("oracle")))),
	}
	if config.ArchiveResults {
		pool := cmdutil.ConnectDB(sqlLogger, telemetry)
		defer pool.Close()
		svcOpts = append(svcOpts, race.WithArchive(raceRepos.NewArchive(pool)))
	}
	svc, err := race.NewService(svcOpts...)
	if err != nil {
		return err
	}

	responder := oracle.NewResponder(svc,
		oracle.WithResponderPrefix(config.SubjectPrefix),
		oracle.WithRequestTimeout(requestTimeout),
		oracle.WithResponderLogger(logger.Named("responder")))
	sub, err := responder.Subscribe(nc)
	if err != nil {
		log.Error("could not subscribe", log.ErrorField(err))
		return err
	}
	log.Info("Server started", log.String("subject", responder.Subject()))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	v := <-sigChan
	log.Debug("Got signal ", log.Any("signal", v))

	if err := sub.Drain(); err != nil {
		log.Warn("could not drain subscription", log.ErrorField(err))
	}
	if telemetry != nil {
		telemetry.Shutdown()
	}
	log.Info("Server terminated")
	return nil
}
