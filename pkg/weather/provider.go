package weather

import (
	"context"
	"time"

	"github.com/furyracing/race-engine/log"
	"github.com/furyracing/race-engine/pkg/model"
	"github.com/furyracing/race-engine/pkg/tuning"
	"github.com/furyracing/race-engine/pkg/utils/cache"
	"github.com/furyracing/race-engine/pkg/utils/cache/loadercache"
)

type (
	// Fetcher delivers the current weather for a location.
	Fetcher interface {
		Current(ctx context.Context, location string) (*model.WeatherReport, error)
	}

	// Reading is a scored observation.
	Reading struct {
		Report    *model.WeatherReport
		Score     int
		FetchedAt time.Time
	}

	// Provider scores fetched observations and caches the readings per location.
	Provider struct {
		cache cache.Cache[string, Reading]
	}
	ProviderOption func(*providerConfig)

	providerConfig struct {
		ttl time.Duration
		now func() time.Time
		l   *log.Logger
	}
)

func WithTTL(ttl time.Duration) ProviderOption {
	return func(c *providerConfig) {
		c.ttl = ttl
	}
}

func WithProviderClock(now func() time.Time) ProviderOption {
	return func(c *providerConfig) {
		c.now = now
	}
}

func NewProvider(f Fetcher, cfg tuning.Weather, opts ...ProviderOption) *Provider {
	pc := &providerConfig{
		ttl: 10 * time.Minute,
		now: time.Now,
		l:   log.Default().Named("weather.provider"),
	}
	for _, opt := range opts {
		opt(pc)
	}
	loader := func(ctx context.Context, location string) (*Reading, error) {
		report, err := f.Current(ctx, location)
		if err != nil {
			return nil, err
		}
		r := &Reading{
			Report:    report,
			Score:     Score(&report.Current, cfg),
			FetchedAt: pc.now(),
		}
		pc.l.Info("weather scored",
			log.String("location", location),
			log.Int("score", r.Score))
		return r, nil
	}
	return &Provider{
		cache: loadercache.New(
			loadercache.WithLoader[string, Reading](loader),
			loadercache.WithExpiration[string, Reading](pc.ttl),
			loadercache.WithClock[string, Reading](pc.now),
			loadercache.WithLogger[string, Reading](pc.l),
		),
	}
}

// Reading returns the (possibly cached) scored weather for location.
func (p *Provider) Reading(ctx context.Context, location string) (*Reading, error) {
	return p.cache.Get(ctx, location)
}

// Refresh drops a cached reading and fetches a new one.
func (p *Provider) Refresh(ctx context.Context, location string) (*Reading, error) {
	p.cache.Invalidate(ctx, location)
	return p.cache.Get(ctx, location)
}
