package race

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/furyracing/race-engine/pkg/encode"
	"github.com/furyracing/race-engine/pkg/model"
	"github.com/furyracing/race-engine/pkg/sim"
	"github.com/furyracing/race-engine/pkg/track"
	"github.com/furyracing/race-engine/pkg/tuning"
)

type memArchive struct {
	mutex   sync.Mutex
	results []*model.RaceResult
	err     error
}

func (m *memArchive) Store(_ context.Context, r *model.RaceResult) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.err != nil {
		return m.err
	}
	m.results = append(m.results, r)
	return nil
}

type memPublisher struct {
	published []*model.RaceResult
	err       error
}

func (m *memPublisher) PublishResult(_ context.Context, r *model.RaceResult) error {
	m.published = append(m.published, r)
	return m.err
}

func uniform(v int) model.CarAttributes {
	return model.FromValues([8]int{v, v, v, v, v, v, v, v})
}

func fixed(_ int) sim.Source { return sim.FixedSource(0.5) }

func TestService_Run_monaco(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	archive := &memArchive{}
	pub := &memPublisher{}
	s, err := NewService(
		WithSourceFactory(fixed),
		WithArchive(archive),
		WithPublisher(pub),
		WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	weak := uniform(50)
	weak.Speed = 20
	res, err := s.Run(context.Background(), &Request{
		CircuitIndex: track.ContractIndex(0),
		WeatherScore: 90,
		Player1:      uniform(50),
		Player2:      weak,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(778600), res.Player1Time)
	assert.Greater(t, res.Player2Time, res.Player1Time)
	assert.Equal(t, 1, res.Winner())
	assert.Len(t, res.Player1Laps, 10)
	assert.Equal(t, now, res.CreatedAt)
	assert.NotEqual(t, uuid.Nil, res.ID)

	packed, err := encode.ParseDecimal(res.Packed)
	require.NoError(t, err)
	t1, t2, err := encode.UnpackTimes(packed)
	require.NoError(t, err)
	assert.Equal(t, uint64(res.Player1Time), t1)
	assert.Equal(t, uint64(res.Player2Time), t2)
	assert.Equal(t, encode.Hex(packed), res.PackedHex)

	require.Len(t, archive.results, 1)
	assert.Same(t, res, archive.results[0])
	require.Len(t, pub.published, 1)
}

func TestService_Run_seedIsReplayable(t *testing.T) {
	for _, concurrent := range []bool{false, true} {
		s, err := NewService(WithConcurrency(concurrent))
		require.NoError(t, err)
		req := &Request{
			CircuitIndex: 3,
			WeatherScore: 40,
			Player1:      uniform(20),
			Player2:      uniform(70),
			Seed:         &Seed{Server: "s3cr3t", Client: "player", Nonce: 12},
		}
		a, err := s.Run(context.Background(), req)
		require.NoError(t, err)
		b, err := s.Run(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, a.Player1Laps, b.Player1Laps)
		assert.Equal(t, a.Player2Laps, b.Player2Laps)
		assert.Equal(t, a.Packed, b.Packed)
		assert.NotEqual(t, a.ID, b.ID)
	}
}

func TestService_Run_invalid(t *testing.T) {
	s, err := NewService(WithSourceFactory(fixed))
	require.NoError(t, err)
	tests := []struct {
		name string
		req  *Request
		want error
	}{
		{"unknown circuit", &Request{CircuitIndex: 42, Player1: uniform(1), Player2: uniform(1)}, track.ErrUnknownCircuit},
		{"weather", &Request{CircuitIndex: 1, WeatherScore: 120, Player1: uniform(1), Player2: uniform(1)},
			model.ErrWeatherOutOfRange},
		{"player 2", &Request{CircuitIndex: 1, Player1: uniform(1), Player2: uniform(100)},
			model.ErrAttributeOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.Run(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, res)
		})
	}
}

func TestService_Run_handOverFailure(t *testing.T) {
	errDown := errors.New("down")
	s, err := NewService(
		WithSourceFactory(fixed),
		WithArchive(&memArchive{err: errDown}),
		WithPublisher(&memPublisher{}))
	require.NoError(t, err)

	res, err := s.Run(context.Background(), &Request{
		CircuitIndex: 2, WeatherScore: 99, Player1: uniform(50), Player2: uniform(50),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errDown)
	require.NotNil(t, res)
	assert.Equal(t, 0, res.Winner())
}

func TestService_Run_metrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	s, err := NewService(WithSourceFactory(fixed), WithMeterProvider(mp))
	require.NoError(t, err)

	for range 3 {
		_, err = s.Run(context.Background(), &Request{
			CircuitIndex: 1, WeatherScore: 90, Player1: uniform(50), Player2: uniform(50),
		})
		require.NoError(t, err)
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	found := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			found[m.Name] = true
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				require.Len(t, data.DataPoints, 1)
				assert.Equal(t, int64(3), data.DataPoints[0].Value)
			case metricdata.Histogram[int64]:
				require.Len(t, data.DataPoints, 1)
				assert.Equal(t, uint64(6), data.DataPoints[0].Count)
				assert.Equal(t, int64(6*778600), data.DataPoints[0].Sum)
			}
		}
	}
	assert.True(t, found["race.simulations"])
	assert.True(t, found["race.total_time"])
}

func TestNewService_invalidTuning(t *testing.T) {
	s, err := NewService(WithSourceFactory(fixed))
	require.NoError(t, err)
	for _, modify := range []func(tn *tuning.Tuning){
		func(tn *tuning.Tuning) { tn.Laps = 3 },
		func(tn *tuning.Tuning) { tn.Lap.ImpactUnit = -1000 },
	} {
		bad := s.tuning
		modify(&bad)
		_, err = NewService(WithTuning(bad))
		assert.ErrorIs(t, err, tuning.ErrInvalidTuning)
	}
}
