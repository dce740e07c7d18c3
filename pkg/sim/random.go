package sim

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"math/rand/v2"
	"sync"
)

// Source delivers uniformly distributed values in [0,1).
// A Source is owned by one race; share it between goroutines only if the
// implementation says so.
type Source interface {
	Float64() float64
}

type randSource struct {
	mutex sync.Mutex
	r     *rand.Rand
}

// NewRandSource returns a PCG backed source. It is safe for concurrent use.
func NewRandSource(seed uint64) Source {
	return &randSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *randSource) Float64() float64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.r.Float64()
}

// SeededSource derives its values from HMAC-SHA256(serverSeed, "clientSeed:nonce:round").
// Given the seeds, every value of a race can be recomputed by a third party.
type SeededSource struct {
	mutex      sync.Mutex
	serverSeed []byte
	clientSeed string
	nonce      uint64
	round      uint64
	pos        int
	buffer     [sha256.Size]byte
}

func NewSeededSource(serverSeed, clientSeed string, nonce uint64) *SeededSource {
	s := &SeededSource{
		serverSeed: []byte(serverSeed),
		clientSeed: clientSeed,
		nonce:      nonce,
	}
	s.fill()
	return s
}

// Float64 consumes 4 bytes of the stream.
func (s *SeededSource) Float64() float64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	ret := 0.0
	div := 1.0
	for range 4 {
		div *= 256
		ret += float64(s.next()) / div
	}
	return ret
}

func (s *SeededSource) next() byte {
	if s.pos >= len(s.buffer) {
		s.round++
		s.fill()
	}
	b := s.buffer[s.pos]
	s.pos++
	return b
}

func (s *SeededSource) fill() {
	h := hmac.New(sha256.New, s.serverSeed)
	fmt.Fprintf(h, "%s:%d:%d", s.clientSeed, s.nonce, s.round)
	copy(s.buffer[:], h.Sum(nil))
	s.pos = 0
}

// FixedSource always returns the same value. 0.5 removes the lap noise.
type FixedSource float64

func (f FixedSource) Float64() float64 { return float64(f) }

// SequenceSource replays values in order and starts over when exhausted.
type SequenceSource struct {
	mutex  sync.Mutex
	values []float64
	idx    int
}

func NewSequenceSource(values ...float64) *SequenceSource {
	if len(values) == 0 {
		panic("sim: empty sequence")
	}
	return &SequenceSource{values: values}
}

func (s *SequenceSource) Float64() float64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	v := s.values[s.idx%len(s.values)]
	s.idx++
	return v
}
