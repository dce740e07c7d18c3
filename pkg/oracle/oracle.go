// Package oracle relays weather scores and race results over NATS to the
// component that submits them to the racing contract.
package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/furyracing/race-engine/log"
	"github.com/furyracing/race-engine/pkg/model"
)

const DefaultSubjectPrefix = "fre"

var ErrNoWeather = errors.New("no weather score stored")

type (
	// Conn is the part of *nats.Conn used for publishing.
	Conn interface {
		Publish(subj string, data []byte) error
		FlushWithContext(ctx context.Context) error
	}

	// WeatherUpdate carries the arguments of updateWeatherDataForCircuit.
	WeatherUpdate struct {
		CircuitIndex int    `json:"circuitIndex"`
		WeatherScore int    `json:"weatherScore"`
		Location     string `json:"location,omitempty"`
	}

	Publisher struct {
		conn   Conn
		prefix string
		kv     jetstream.KeyValue
		l      *log.Logger
	}
	Option func(*Publisher)
)

func WithSubjectPrefix(prefix string) Option {
	return func(p *Publisher) {
		p.prefix = prefix
	}
}

// WithKeyValue keeps the latest weather update per circuit in kv.
func WithKeyValue(kv jetstream.KeyValue) Option {
	return func(p *Publisher) {
		p.kv = kv
	}
}

func WithLogger(l *log.Logger) Option {
	return func(p *Publisher) {
		p.l = l
	}
}

func NewPublisher(conn Conn, opts ...Option) *Publisher {
	p := &Publisher{
		conn:   conn,
		prefix: DefaultSubjectPrefix,
		l:      log.Default().Named("oracle"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) WeatherSubject() string {
	return p.prefix + ".weather"
}

func (p *Publisher) ResultSubject() string {
	return p.prefix + ".results"
}

// PublishWeather announces a new weather score for the circuit with the
// given catalog index.
func (p *Publisher) PublishWeather(ctx context.Context, u *WeatherUpdate) error {
	if err := model.ValidateWeatherScore(u.WeatherScore); err != nil {
		return err
	}
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if err := p.publish(ctx, p.WeatherSubject(), data); err != nil {
		return err
	}
	if p.kv != nil {
		if _, err := p.kv.Put(ctx, weatherKey(u.CircuitIndex), data); err != nil {
			return fmt.Errorf("store weather: %w", err)
		}
	}
	p.l.Info("weather published",
		log.Int("circuit", u.CircuitIndex),
		log.Int("score", u.WeatherScore))
	return nil
}

// LatestWeather returns the last update stored for the circuit.
func (p *Publisher) LatestWeather(ctx context.Context, circuitIndex int) (*WeatherUpdate, error) {
	if p.kv == nil {
		return nil, ErrNoWeather
	}
	entry, err := p.kv.Get(ctx, weatherKey(circuitIndex))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: circuit %d", ErrNoWeather, circuitIndex)
		}
		return nil, err
	}
	var u WeatherUpdate
	if err := json.Unmarshal(entry.Value(), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// PublishResult implements race.Publisher.
func (p *Publisher) PublishResult(ctx context.Context, r *model.RaceResult) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	if err := p.publish(ctx, p.ResultSubject(), data); err != nil {
		return err
	}
	p.l.Debug("result published", log.String("id", r.ID.String()))
	return nil
}

func (p *Publisher) publish(ctx context.Context, subject string, data []byte) error {
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return p.conn.FlushWithContext(ctx)
}

func weatherKey(circuitIndex int) string {
	return "weather." + strconv.Itoa(circuitIndex)
}

// Connect dials the NATS server at url with reconnect logging.
func Connect(url string, l *log.Logger) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("fre"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				l.Warn("nats disconnected", log.ErrorField(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			l.Info("nats reconnected", log.String("url", c.ConnectedUrlRedacted()))
		}),
	)
}

// NewWeatherStore creates (or reuses) the key value bucket for weather updates.
func NewWeatherStore(ctx context.Context, nc *nats.Conn, bucket string) (jetstream.KeyValue, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, err
	}
	return js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:  bucket,
		History: 10,
	})
}

// Noop discards everything. Used when no NATS server is configured.
type Noop struct{}

func (Noop) PublishWeather(context.Context, *WeatherUpdate) error   { return nil }
func (Noop) PublishResult(context.Context, *model.RaceResult) error { return nil }
