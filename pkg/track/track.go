package track

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"sync"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/furyracing/race-engine/pkg/model"
	"github.com/furyracing/race-engine/pkg/tuning"
)

var (
	ErrUnknownCircuit = errors.New("unknown circuit")
	ErrInvalidTrack   = errors.New("invalid track")
)

// builtin circuits, keyed by catalog index (1-based)
var builtin = []model.TrackProfile{
	{
		Index:             1,
		Name:              "Monaco",
		LapLength:         3.337,
		MaxSpeed:          290,
		FullThrottle:      0.59,
		LongestFlatOut:    669,
		DownforceLevel:    90,
		GearChangesPerLap: 47,
		TechnicalFactor:   0.8,
		BestLapTime:       74260,
	},
	{
		Index:             2,
		Name:              "Monza",
		LapLength:         5.793,
		MaxSpeed:          360,
		FullThrottle:      0.77,
		LongestFlatOut:    1120,
		DownforceLevel:    20,
		GearChangesPerLap: 42,
		TechnicalFactor:   0.3,
		BestLapTime:       81046,
	},
	{
		Index:             3,
		Name:              "Silverstone",
		LapLength:         5.891,
		MaxSpeed:          330,
		FullThrottle:      0.66,
		LongestFlatOut:    770,
		DownforceLevel:    60,
		GearChangesPerLap: 44,
		TechnicalFactor:   0.55,
		BestLapTime:       87097,
	},
	{
		Index:             4,
		Name:              "Spa-Francorchamps",
		LapLength:         7.004,
		MaxSpeed:          340,
		FullThrottle:      0.70,
		LongestFlatOut:    1400,
		DownforceLevel:    45,
		GearChangesPerLap: 48,
		TechnicalFactor:   0.6,
		BestLapTime:       106286,
	},
}

// Catalog is a set of circuits addressable by index. Safe for concurrent use.
type Catalog struct {
	mutex  sync.RWMutex
	tracks map[int]model.TrackProfile
}

// NewCatalog returns a catalog holding the builtin circuits.
func NewCatalog() *Catalog {
	c := &Catalog{tracks: make(map[int]model.TrackProfile)}
	for _, t := range builtin {
		c.tracks[t.Index] = t
	}
	return c
}

// Lookup returns the circuit with the given catalog index.
func (c *Catalog) Lookup(index int) (*model.TrackProfile, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	t, ok := c.tracks[index]
	if !ok {
		return nil, fmt.Errorf("%w: index %d", ErrUnknownCircuit, index)
	}
	return &t, nil
}

// All returns the circuits ordered by index.
func (c *Catalog) All() []model.TrackProfile {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	ret := lo.Values(c.tracks)
	sort.Slice(ret, func(i, j int) bool { return ret[i].Index < ret[j].Index })
	return ret
}

// Add validates t and stores it, replacing a circuit with the same index.
func (c *Catalog) Add(t *model.TrackProfile) error {
	if err := Validate(t); err != nil {
		return err
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.tracks[t.Index] = *t
	return nil
}

type catalogFile struct {
	Tracks []model.TrackProfile `yaml:"tracks"`
}

// LoadCatalog reads circuits from a yaml document of the form
//
//	tracks:
//	  - index: 5
//	    name: Suzuka
//	    ...
//
// and adds them to c. Nothing is added if any entry is invalid.
func (c *Catalog) LoadCatalog(r io.Reader) (int, error) {
	var f catalogFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidTrack, err)
	}
	for i := range f.Tracks {
		if err := Validate(&f.Tracks[i]); err != nil {
			return 0, err
		}
	}
	dups := lo.FindDuplicatesBy(f.Tracks, func(t model.TrackProfile) int { return t.Index })
	if len(dups) > 0 {
		return 0, fmt.Errorf("%w: duplicate index %d", ErrInvalidTrack, dups[0].Index)
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for _, t := range f.Tracks {
		c.tracks[t.Index] = t
	}
	return len(f.Tracks), nil
}

// WriteCatalog writes all circuits in the format read by LoadCatalog.
func (c *Catalog) WriteCatalog(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(catalogFile{Tracks: c.All()}); err != nil {
		return err
	}
	return enc.Close()
}

// ContractIndex maps the 0-based circuit index used on chain and in the
// compact attribute string to the catalog index.
func ContractIndex(raw int) int {
	return raw + 1
}

// Validate checks the raw profile for values the simulator cannot use.
func Validate(t *model.TrackProfile) error {
	switch {
	case t.Index <= 0:
		return fmt.Errorf("%w: index must be positive, got %d", ErrInvalidTrack, t.Index)
	case t.BestLapTime <= 0:
		return fmt.Errorf("%w: %s best lap time must be positive", ErrInvalidTrack, t.Name)
	case t.LapLength <= 0:
		return fmt.Errorf("%w: %s lap length must be positive", ErrInvalidTrack, t.Name)
	case t.FullThrottle < 0 || t.FullThrottle > 1:
		return fmt.Errorf("%w: %s full throttle must be a fraction", ErrInvalidTrack, t.Name)
	case t.TechnicalFactor < 0 || t.TechnicalFactor > 1:
		return fmt.Errorf("%w: %s technical factor must be a fraction", ErrInvalidTrack, t.Name)
	}
	return nil
}

// Normalize maps the raw profile onto the [0,1] factors used by the simulator.
// Max speed ends in [MaxSpeedFloor,1]; lap length and best lap time keep their units.
func Normalize(t *model.TrackProfile, r tuning.TrackRanges) model.NormalizedTrack {
	maxSpeed := unit(t.MaxSpeed, r.MaxSpeed)*(1-r.MaxSpeedFloor) + r.MaxSpeedFloor
	return model.NormalizedTrack{
		Index:             t.Index,
		Name:              t.Name,
		BestLapTime:       t.BestLapTime,
		LapLength:         t.LapLength,
		MaxSpeed:          clamp(maxSpeed, r.MaxSpeedFloor, 1),
		FullThrottle:      clamp(t.FullThrottle, 0, 1),
		LongestFlatOut:    unit(t.LongestFlatOut, r.LongestFlatOut),
		DownforceLevel:    unit(t.DownforceLevel, r.Downforce),
		GearChangesPerLap: unit(t.GearChangesPerLap, r.GearChanges),
		TechnicalFactor:   clamp(t.TechnicalFactor, 0, 1),
	}
}

// unit maps v from r onto [0,1], clamping values outside of r.
func unit(v float64, r tuning.Range) float64 {
	return clamp((v-r.Min)/r.Width(), 0, 1)
}

func clamp(v, lower, upper float64) float64 {
	return math.Max(lower, math.Min(upper, v))
}
