package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/furyracing/race-engine/log"
	"github.com/furyracing/race-engine/pkg/attrstring"
	"github.com/furyracing/race-engine/pkg/model"
	"github.com/furyracing/race-engine/pkg/race"
	"github.com/furyracing/race-engine/pkg/track"
)

var ErrNoResult = errors.New("race produced no result")

type (
	// Runner simulates races.
	Runner interface {
		Run(ctx context.Context, req *race.Request) (*model.RaceResult, error)
	}

	// RaceReply is the answer to a race request.
	RaceReply struct {
		CombinedResult string `json:"combinedResult,omitempty"`
		EncodedHex     string `json:"encodedHex,omitempty"`
		Error          string `json:"error,omitempty"`
	}

	// Responder answers race requests sent to <prefix>.race. The request
	// payload is the compact attribute string.
	Responder struct {
		runner  Runner
		prefix  string
		timeout time.Duration
		l       *log.Logger
	}
	ResponderOption func(*Responder)
)

func WithResponderPrefix(prefix string) ResponderOption {
	return func(r *Responder) {
		r.prefix = prefix
	}
}

func WithResponderLogger(l *log.Logger) ResponderOption {
	return func(r *Responder) {
		r.l = l
	}
}

// WithRequestTimeout limits the time spent per request.
func WithRequestTimeout(d time.Duration) ResponderOption {
	return func(r *Responder) {
		r.timeout = d
	}
}

func NewResponder(runner Runner, opts ...ResponderOption) *Responder {
	r := &Responder{
		runner:  runner,
		prefix:  DefaultSubjectPrefix,
		timeout: 5 * time.Second,
		l:       log.Default().Named("responder"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Responder) Subject() string {
	return r.prefix + ".race"
}

// Subscribe registers the responder on nc. All instances share a queue group
// so each request is answered once.
func (r *Responder) Subscribe(nc *nats.Conn) (*nats.Subscription, error) {
	return nc.QueueSubscribe(r.Subject(), r.prefix+"-racers", func(msg *nats.Msg) {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		data, err := json.Marshal(r.Handle(ctx, msg.Data))
		if err != nil {
			r.l.Error("could not encode reply", log.ErrorField(err))
			return
		}
		if err := msg.Respond(data); err != nil {
			r.l.Warn("could not respond", log.ErrorField(err))
		}
	})
}

// Handle decodes the attribute string and runs the race.
func (r *Responder) Handle(ctx context.Context, payload []byte) *RaceReply {
	parsed, err := attrstring.Parse(strings.TrimSpace(string(payload)))
	if err != nil {
		return &RaceReply{Error: err.Error()}
	}
	res, err := r.runner.Run(ctx, &race.Request{
		CircuitIndex: track.ContractIndex(parsed.CircuitIndex),
		WeatherScore: parsed.WeatherScore,
		Player1:      parsed.Player1,
		Player2:      parsed.Player2,
	})
	if res == nil {
		if err == nil {
			r.l.Error("runner returned neither result nor error")
			err = ErrNoResult
		}
		return &RaceReply{Error: err.Error()}
	}
	if err != nil {
		// result is complete, only the hand over failed
		r.l.Warn("race finished with hand over errors", log.ErrorField(err))
	}
	return &RaceReply{CombinedResult: res.Packed, EncodedHex: res.PackedHex}
}
