package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/furyracing/race-engine/log"
	"github.com/furyracing/race-engine/pkg/cmd/cmdutil"
	"github.com/furyracing/race-engine/pkg/config"
	"github.com/furyracing/race-engine/pkg/model"
	"github.com/furyracing/race-engine/pkg/oracle"
	"github.com/furyracing/race-engine/pkg/weather"
)

func NewWeatherCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weather",
		Short: "weather scoring and weather oracle updates",
	}
	cmd.PersistentFlags().StringVar(&config.WeatherAPIKey, "api-key", "",
		"api key for weatherapi.com")
	cmd.PersistentFlags().StringVar(&config.WeatherBaseURL, "base-url", weather.DefaultBaseURL,
		"base url of the weather api")
	cmd.PersistentFlags().StringVar(&config.KVBucket, "kv-bucket", "fre-weather",
		"jetstream key value bucket holding the latest weather per circuit")

	cmd.AddCommand(newScoreCmd())
	cmd.AddCommand(newFetchCmd())
	cmd.AddCommand(newUpdateCmd())
	cmd.AddCommand(newLatestCmd())
	return cmd
}

func newScoreCmd() *cobra.Command {
	obs := model.WeatherObservation{}
	cmd := &cobra.Command{
		Use:   "score",
		Short: "computes the weather score of the given observation",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdutil.SetupLogger()
			t, err := cmdutil.LoadTuning()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), weather.Score(&obs, t.Weather))
			return err
		},
	}
	cmd.Flags().Float64Var(&obs.TempC, "temp", 15, "temperature (°C)")
	cmd.Flags().Float64Var(&obs.WindKph, "wind", 0, "wind speed (km/h)")
	cmd.Flags().Float64Var(&obs.PrecipMM, "precip", 0, "precipitation (mm)")
	cmd.Flags().Float64Var(&obs.Humidity, "humidity", 50, "humidity (%)")
	cmd.Flags().Float64Var(&obs.Cloud, "cloud", 0, "cloud cover (%)")
	return cmd
}

func newFetchCmd() *cobra.Command {
	var location string
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "fetches and scores the current weather of a location",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdutil.SetupLogger()
			provider, err := newProvider()
			if err != nil {
				return err
			}
			reading, err := provider.Reading(cmd.Context(), location)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), reading)
		},
	}
	cmd.Flags().StringVar(&location, "location", "Monaco", "location to look up")
	return cmd
}

func newUpdateCmd() *cobra.Command {
	var circuit int
	var location string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "fetches the weather of a circuit and publishes its score to the weather oracle",
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateWeather(cmd.Context(), cmd.OutOrStdout(), circuit, location)
		},
	}
	cmd.Flags().IntVar(&circuit, "circuit", 1, "catalog index of the circuit")
	cmd.Flags().StringVar(&location, "location", "",
		"location to look up (default is the circuit name)")
	return cmd
}

func newLatestCmd() *cobra.Command {
	var circuit int
	cmd := &cobra.Command{
		Use:   "latest",
		Short: "prints the last published weather score of a circuit",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, _ := cmdutil.SetupLogger()
			ctx := cmd.Context()
			publisher, closer, err := connectPublisher(ctx, logger)
			if err != nil {
				return err
			}
			defer closer()
			u, err := publisher.LatestWeather(ctx, circuit)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), u)
		},
	}
	cmd.Flags().IntVar(&circuit, "circuit", 1, "catalog index of the circuit")
	return cmd
}

func updateWeather(ctx context.Context, out io.Writer, circuit int, location string) error {
	logger, _ := cmdutil.SetupLogger()
	catalog, err := cmdutil.LoadCatalog()
	if err != nil {
		return err
	}
	profile, err := catalog.Lookup(circuit)
	if err != nil {
		return err
	}
	if location == "" {
		location = profile.Name
	}
	provider, err := newProvider()
	if err != nil {
		return err
	}
	reading, err := provider.Reading(ctx, location)
	if err != nil {
		return err
	}
	update := &oracle.WeatherUpdate{
		CircuitIndex: profile.Index,
		WeatherScore: reading.Score,
		Location:     location,
	}

	if config.NatsURL == "" {
		logger.Warn("no nats url configured, weather update is not published")
	} else {
		cmdutil.WaitForRequiredServices(false, true)
		publisher, closer, err := connectPublisher(ctx, logger)
		if err != nil {
			return err
		}
		defer closer()
		if err := publisher.PublishWeather(ctx, update); err != nil {
			return err
		}
	}
	return writeJSON(out, update)
}

func newProvider() (*weather.Provider, error) {
	t, err := cmdutil.LoadTuning()
	if err != nil {
		return nil, err
	}
	client := weather.NewClient(config.WeatherAPIKey,
		weather.WithBaseURL(config.WeatherBaseURL),
		weather.WithClientLogger(log.Default().Named("weather")))
	return weather.NewProvider(client, t.Weather), nil
}

func connectPublisher(ctx context.Context, logger *log.Logger) (*oracle.Publisher, func(), error) {
	if config.NatsURL == "" {
		return nil, nil, fmt.Errorf("nats url required")
	}
	nc, err := oracle.Connect(config.NatsURL, logger)
	if err != nil {
		return nil, nil, err
	}
	opts := []oracle.Option{
		oracle.WithSubjectPrefix(config.SubjectPrefix),
		oracle.WithLogger(logger.Named("oracle")),
	}
	if config.KVBucket != "" {
		kv, err := oracle.NewWeatherStore(ctx, nc, config.KVBucket)
		if err != nil {
			nc.Close()
			return nil, nil, err
		}
		opts = append(opts, oracle.WithKeyValue(kv))
	}
	return oracle.NewPublisher(nc, opts...), nc.Close, nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
