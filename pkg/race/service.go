// Package race runs complete two player races: lookup, simulation, packing
// and hand over of the result to archive and publisher.
package race

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/furyracing/race-engine/log"
	"github.com/furyracing/race-engine/pkg/encode"
	"github.com/furyracing/race-engine/pkg/model"
	"github.com/furyracing/race-engine/pkg/sim"
	"github.com/furyracing/race-engine/pkg/track"
	"github.com/furyracing/race-engine/pkg/tuning"
)

const instrumentationName = "github.com/furyracing/race-engine/pkg/race"

type (
	// Archive persists race results.
	Archive interface {
		Store(ctx context.Context, r *model.RaceResult) error
	}
	// Publisher forwards race results to interested parties.
	Publisher interface {
		PublishResult(ctx context.Context, r *model.RaceResult) error
	}

	// Seed makes a race replayable. Player n draws from
	// HMAC(Server, "<Client>-p<n>:<Nonce>:<round>").
	Seed struct {
		Server string
		Client string
		Nonce  uint64
	}

	Request struct {
		CircuitIndex int // catalog index
		WeatherScore int
		Player1      model.CarAttributes
		Player2      model.CarAttributes
		Seed         *Seed
	}

	// SourceFactory returns the random source for player 1 or 2.
	SourceFactory func(player int) sim.Source

	Service struct {
		catalog    *track.Catalog
		tuning     tuning.Tuning
		newSource  SourceFactory
		archive    Archive
		publisher  Publisher
		concurrent bool
		now        func() time.Time
		l          *log.Logger

		tracer      trace.Tracer
		simulations metric.Int64Counter
		totalTime   metric.Int64Histogram
	}
	Option func(*Service)
)

func WithCatalog(c *track.Catalog) Option {
	return func(s *Service) {
		s.catalog = c
	}
}

func WithTuning(t tuning.Tuning) Option {
	return func(s *Service) {
		s.tuning = t
	}
}

func WithSourceFactory(f SourceFactory) Option {
	return func(s *Service) {
		s.newSource = f
	}
}

func WithArchive(a Archive) Option {
	return func(s *Service) {
		s.archive = a
	}
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithConcurrency simulates both players in parallel.
func WithConcurrency(enabled bool) Option {
	return func(s *Service) {
		s.concurrent = enabled
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		s.l = l
	}
}

// WithMeterProvider replaces the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Service) {
		s.initMetrics(mp)
	}
}

func NewService(opts ...Option) (*Service, error) {
	s := &Service{
		catalog: track.NewCatalog(),
		tuning:  tuning.Default(),
		newSource: func(int) sim.Source {
			return sim.NewRandSource(rand.Uint64())
		},
		now:    time.Now,
		l:      log.Default().Named("race"),
		tracer: otel.Tracer(instrumentationName),
	}
	s.initMetrics(otel.GetMeterProvider())
	for _, opt := range opts {
		opt(s)
	}
	if err := s.tuning.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) initMetrics(mp metric.MeterProvider) {
	meter := mp.Meter(instrumentationName)
	var err error
	if s.simulations, err = meter.Int64Counter("race.simulations",
		metric.WithDescription("number of simulated races")); err != nil {
		s.l.Warn("could not create counter", log.ErrorField(err))
	}
	if s.totalTime, err = meter.Int64Histogram("race.total_time",
		metric.WithDescription("simulated race time per player"),
		metric.WithUnit("ms")); err != nil {
		s.l.Warn("could not create histogram", log.ErrorField(err))
	}
}

func (s *Service) Catalog() *track.Catalog {
	return s.catalog
}

// Run simulates the race described by req. If archiving or publishing fails
// the complete result is returned together with the error.
func (s *Service) Run(ctx context.Context, req *Request) (*model.RaceResult, error) {
	ctx, span := s.tracer.Start(ctx, "race.Run", trace.WithAttributes(
		attribute.Int("circuit", req.CircuitIndex),
		attribute.Int("weather", req.WeatherScore)))
	defer span.End()

	raw, err := s.catalog.Lookup(req.CircuitIndex)
	if err != nil {
		return nil, err
	}
	if err = validateRequest(req); err != nil {
		return nil, err
	}
	circuit := track.Normalize(raw, s.tuning.Track)

	laps, err := s.simulate(ctx, req, circuit)
	if err != nil {
		return nil, err
	}
	result, err := s.buildResult(req, laps)
	if err != nil {
		return nil, err
	}
	s.record(ctx, result)
	s.l.Info("race finished",
		log.String("id", result.ID.String()),
		log.String("circuit", circuit.Name),
		log.Int("weather", req.WeatherScore),
		log.String("player1", model.FormatMillis(result.Player1Time)),
		log.String("player2", model.FormatMillis(result.Player2Time)),
		log.Int("winner", result.Winner()))

	return result, s.handOver(ctx, result)
}

func validateRequest(req *Request) error {
	if err := model.ValidateWeatherScore(req.WeatherScore); err != nil {
		return err
	}
	if err := req.Player1.Validate(model.SimulationRange); err != nil {
		return fmt.Errorf("player 1: %w", err)
	}
	if err := req.Player2.Validate(model.SimulationRange); err != nil {
		return fmt.Errorf("player 2: %w", err)
	}
	return nil
}

func (s *Service) sourceFor(req *Request, player int) sim.Source {
	if req.Seed != nil {
		return sim.NewSeededSource(req.Seed.Server,
			fmt.Sprintf("%s-p%d", req.Seed.Client, player), req.Seed.Nonce)
	}
	return s.newSource(player)
}

func (s *Service) simulate(
	ctx context.Context,
	req *Request,
	circuit model.NormalizedTrack,
) ([2][]int, error) {
	var laps [2][]int
	players := [2]model.CarAttributes{req.Player1, req.Player2}
	run := func(i int) error {
		_, span := s.tracer.Start(ctx, "race.simulate",
			trace.WithAttributes(attribute.Int("player", i+1)))
		defer span.End()
		simulator := sim.NewSimulator(s.tuning, s.sourceFor(req, i+1))
		var err error
		laps[i], err = simulator.RaceLaps(players[i], circuit, req.WeatherScore)
		return err
	}
	if !s.concurrent {
		for i := range players {
			if err := run(i); err != nil {
				return laps, err
			}
		}
		return laps, nil
	}
	g := errgroup.Group{}
	for i := range players {
		g.Go(func() error { return run(i) })
	}
	err := g.Wait()
	return laps, err
}

func (s *Service) buildResult(req *Request, laps [2][]int) (*model.RaceResult, error) {
	var totals [2]int64
	for i := range laps {
		for _, l := range laps[i] {
			totals[i] += int64(l)
		}
	}
	packed := encode.PackTimes(uint64(totals[0]), uint64(totals[1]))
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	return &model.RaceResult{
		ID:           id,
		CircuitIndex: req.CircuitIndex,
		WeatherScore: req.WeatherScore,
		Player1:      req.Player1,
		Player2:      req.Player2,
		Player1Time:  totals[0],
		Player2Time:  totals[1],
		Player1Laps:  laps[0],
		Player2Laps:  laps[1],
		Packed:       packed.String(),
		PackedHex:    encode.Hex(packed),
		CreatedAt:    s.now().UTC(),
	}, nil
}

func (s *Service) record(ctx context.Context, r *model.RaceResult) {
	attrs := metric.WithAttributes(attribute.Int("circuit", r.CircuitIndex))
	if s.simulations != nil {
		s.simulations.Add(ctx, 1, attrs)
	}
	if s.totalTime != nil {
		s.totalTime.Record(ctx, r.Player1Time, attrs)
		s.totalTime.Record(ctx, r.Player2Time, attrs)
	}
}

func (s *Service) handOver(ctx context.Context, r *model.RaceResult) error {
	var errs []error
	if s.archive != nil {
		if err := s.archive.Store(ctx, r); err != nil {
			s.l.Error("could not archive result",
				log.String("id", r.ID.String()), log.ErrorField(err))
			errs = append(errs, fmt.Errorf("archive: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishResult(ctx, r); err != nil {
			s.l.Error("could not publish result",
				log.String("id", r.ID.String()), log.ErrorField(err))
			errs = append(errs, fmt.Errorf("publish: %w", err))
		}
	}
	return errors.Join(errs...)
}
