package race

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/furyracing/race-engine/log"
	"github.com/furyracing/race-engine/pkg/attrstring"
	"github.com/furyracing/race-engine/pkg/cmd/cmdutil"
	"github.com/furyracing/race-engine/pkg/config"
	"github.com/furyracing/race-engine/pkg/model"
	"github.com/furyracing/race-engine/pkg/oracle"
	"github.com/furyracing/race-engine/pkg/race"
	raceRepos "github.com/furyracing/race-engine/pkg/repository/race"
	"github.com/furyracing/race-engine/pkg/track"
	"github.com/furyracing/race-engine/pkg/utils"
)

var ErrMissingPlayers = errors.New("both players need 8 attribute values")

type raceOpts struct {
	circuit    int
	weather    int
	player1    []int
	player2    []int
	seedServer string
	seedClient string
	nonce      uint64
	concurrent bool
	details    bool
}

// Output is printed as result of the race command.
type Output struct {
	CombinedResult string            `json:"combinedResult"`
	EncodedHex     string            `json:"encodedHex"`
	ServerSeedHash string            `json:"serverSeedHash,omitempty"`
	Result         *model.RaceResult `json:"result,omitempty"`
}

func NewRaceCmd() *cobra.Command {
	opts := raceOpts{}
	cmd := &cobra.Command{
		Use:   "race [attribute-string]",
		Short: "simulates a race between two cars and prints the packed result",
		Long: `Simulates a race between two cars.

The race is either described by the 36 digit attribute string
(circuit, weather, 8 attributes of player 1, 8 attributes of player 2,
two digits each, circuit 0-based) or by flags.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildRequest(&opts, args)
			if err != nil {
				return err
			}
			return runRace(cmd.Context(), cmd.OutOrStdout(), req, &opts)
		},
	}
	cmd.Flags().IntVar(&opts.circuit, "circuit", 1, "catalog index of the circuit")
	cmd.Flags().IntVar(&opts.weather, "weather", model.MaxWeatherScore, "weather score (0-99)")
	cmd.Flags().IntSliceVar(&opts.player1, "player1", nil,
		"attributes of player 1 (reliability,maneuverability,speed,brakes,balance,aerodynamics,driverSkill,luck)")
	cmd.Flags().IntSliceVar(&opts.player2, "player2", nil, "attributes of player 2")
	cmd.Flags().StringVar(&opts.seedServer, "seed-server", "",
		"server seed, makes the race replayable")
	cmd.Flags().StringVar(&opts.seedClient, "seed-client", "", "client seed")
	cmd.Flags().Uint64Var(&opts.nonce, "nonce", 0, "nonce used with the seeds")
	cmd.Flags().BoolVar(&opts.concurrent, "concurrent", false, "simulate both players in parallel")
	cmd.Flags().BoolVar(&opts.details, "details", false, "include lap times and totals in the output")
	cmd.Flags().BoolVar(&config.ArchiveResults, "archive", false, "store the result in the database")
	return cmd
}

func buildRequest(opts *raceOpts, args []string) (*race.Request, error) {
	var req *race.Request
	if len(args) == 1 {
		parsed, err := attrstring.Parse(args[0])
		if err != nil {
			return nil, err
		}
		req = &race.Request{
			CircuitIndex: track.ContractIndex(parsed.CircuitIndex),
			WeatherScore: parsed.WeatherScore,
			Player1:      parsed.Player1,
			Player2:      parsed.Player2,
		}
	} else {
		if len(opts.player1) != 8 || len(opts.player2) != 8 {
			return nil, ErrMissingPlayers
		}
		req = &race.Request{
			CircuitIndex: opts.circuit,
			WeatherScore: opts.weather,
			Player1:      model.FromValues([8]int(opts.player1)),
			Player2:      model.FromValues([8]int(opts.player2)),
		}
	}
	if opts.seedServer != "" {
		req.Seed = &race.Seed{Server: opts.seedServer, Client: opts.seedClient, Nonce: opts.nonce}
	}
	return req, nil
}

//nolint:funlen // by design
func runRace(ctx context.Context, out io.Writer, req *race.Request, opts *raceOpts) error {
	logger, sqlLogger := cmdutil.SetupLogger()
	telemetry := cmdutil.StartTelemetry()
	if telemetry != nil {
		defer telemetry.Shutdown()
	}

	t, err := cmdutil.LoadTuning()
	if err != nil {
		return err
	}
	catalog, err := cmdutil.LoadCatalog()
	if err != nil {
		return err
	}
	svcOpts := []race.Option{
		race.WithTuning(t),
		race.WithCatalog(catalog),
		race.WithConcurrency(opts.concurrent),
		race.WithLogger(logger.Named("race")),
	}

	cmdutil.WaitForRequiredServices(config.ArchiveResults, config.NatsURL != "")
	if config.ArchiveResults {
		pool := cmdutil.ConnectDB(sqlLogger, telemetry)
		defer pool.Close()
		svcOpts = append(svcOpts, race.WithArchive(raceRepos.NewArchive(pool)))
	}
	if config.NatsURL != "" {
		nc, err := oracle.Connect(config.NatsURL, logger)
		if err != nil {
			return err
		}
		defer nc.Close()
		svcOpts = append(svcOpts, race.WithPublisher(
			oracle.NewPublisher(nc,
				oracle.WithSubjectPrefix(config.SubjectPrefix),
				oracle.WithLogger(logger.Named("oracle")))))
	}

	svc, err := race.NewService(svcOpts...)
	if err != nil {
		return err
	}
	res, err := svc.Run(ctx, req)
	if res == nil {
		return err
	}
	if err != nil {
		log.Warn("result could not be handed over", log.ErrorField(err))
	}

	output := Output{CombinedResult: res.Packed, EncodedHex: res.PackedHex}
	if req.Seed != nil {
		output.ServerSeedHash = utils.HashSeed(req.Seed.Server)
	}
	if opts.details {
		output.Result = res
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(output); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
