package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furyracing/race-engine/log"
	"github.com/furyracing/race-engine/pkg/model"
	"github.com/furyracing/race-engine/testsupport/tcnats"
)

type message struct {
	subject string
	data    []byte
}

type fakeConn struct {
	msgs       []message
	publishErr error
	flushes    int
}

func (f *fakeConn) Publish(subj string, data []byte) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.msgs = append(f.msgs, message{subj, data})
	return nil
}

func (f *fakeConn) FlushWithContext(context.Context) error {
	f.flushes++
	return nil
}

func TestPublisher_PublishWeather(t *testing.T) {
	conn := &fakeConn{}
	p := NewPublisher(conn, WithSubjectPrefix("racing"))
	err := p.PublishWeather(context.Background(), &WeatherUpdate{CircuitIndex: 1, WeatherScore: 79})
	require.NoError(t, err)

	require.Len(t, conn.msgs, 1)
	assert.Equal(t, "racing.weather", conn.msgs[0].subject)
	assert.JSONEq(t, `{"circuitIndex":1,"weatherScore":79}`, string(conn.msgs[0].data))
	assert.Equal(t, 1, conn.flushes)

	_, err = p.LatestWeather(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNoWeather)
}

func TestPublisher_PublishWeather_invalid(t *testing.T) {
	conn := &fakeConn{}
	p := NewPublisher(conn)
	err := p.PublishWeather(context.Background(), &WeatherUpdate{CircuitIndex: 1, WeatherScore: 100})
	assert.ErrorIs(t, err, model.ErrWeatherOutOfRange)
	assert.Empty(t, conn.msgs)
}

func TestPublisher_PublishResult(t *testing.T) {
	conn := &fakeConn{}
	p := NewPublisher(conn)
	r := &model.RaceResult{
		ID:           uuid.New(),
		CircuitIndex: 1,
		Player1Time:  778600,
		Player2Time:  781234,
		Packed:       "1",
		PackedHex:    "0x01",
	}
	require.NoError(t, p.PublishResult(context.Background(), r))
	require.Len(t, conn.msgs, 1)
	assert.Equal(t, "fre.results", conn.msgs[0].subject)

	var got model.RaceResult
	require.NoError(t, json.Unmarshal(conn.msgs[0].data, &got))
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, r.Player2Time, got.Player2Time)
}

func TestPublisher_publishError(t *testing.T) {
	errClosed := errors.New("closed")
	p := NewPublisher(&fakeConn{publishErr: errClosed})
	err := p.PublishResult(context.Background(), &model.RaceResult{})
	assert.ErrorIs(t, err, errClosed)
}

func TestNoop(t *testing.T) {
	var n Noop
	assert.NoError(t, n.PublishWeather(context.Background(), &WeatherUpdate{}))
	assert.NoError(t, n.PublishResult(context.Background(), &model.RaceResult{}))
}

func TestPublisher_nats(t *testing.T) {
	url := tcnats.SetupNats(t)
	nc, err := Connect(url, log.Default())
	require.NoError(t, err)
	defer nc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	kv, err := NewWeatherStore(ctx, nc, "fre-test")
	require.NoError(t, err)

	received := make(chan *nats.Msg, 1)
	sub, err := nc.ChanSubscribe("fre.weather", received)
	require.NoError(t, err)
	defer func() { _ = sub.Unsubscribe() }()

	p := NewPublisher(nc, WithKeyValue(kv))
	require.NoError(t, p.PublishWeather(ctx, &WeatherUpdate{CircuitIndex: 4, WeatherScore: 55}))

	select {
	case msg := <-received:
		assert.JSONEq(t, `{"circuitIndex":4,"weatherScore":55}`, string(msg.Data))
	case <-ctx.Done():
		t.Fatal("no weather message received")
	}

	latest, err := p.LatestWeather(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 55, latest.WeatherScore)

	_, err = p.LatestWeather(ctx, 3)
	assert.ErrorIs(t, err, ErrNoWeather)
}
