// Package sim computes lap and race times from a car build, a normalized
// circuit and a weather score.
package sim

import (
	"math"

	"github.com/furyracing/race-engine/pkg/model"
	"github.com/furyracing/race-engine/pkg/tuning"
)

// Impacts are the penalties of one lap in seconds, all of them >= 0.
type Impacts struct {
	Speed           float64 `json:"speed"`
	Maneuverability float64 `json:"maneuverability"`
	Reliability     float64 `json:"reliability"`
	Aerodynamics    float64 `json:"aerodynamics"`
	DriverSkill     float64 `json:"driverSkill"`
	Brakes          float64 `json:"brakes"`
	Balance         float64 `json:"balance"`
	Weather         float64 `json:"weather"`
}

func (i Impacts) Sum() float64 {
	return i.Speed + i.Maneuverability + i.Reliability + i.Aerodynamics +
		i.DriverSkill + i.Brakes + i.Balance + i.Weather
}

type Simulator struct {
	lap  tuning.Lap
	laps int
	src  Source
}

// NewSimulator panics if src is nil.
func NewSimulator(t tuning.Tuning, src Source) *Simulator {
	if src == nil {
		panic("sim: nil random source")
	}
	return &Simulator{lap: t.Lap, laps: t.Laps, src: src}
}

// WithSource returns a copy of s drawing from src.
func (s *Simulator) WithSource(src Source) *Simulator {
	return NewSimulator(tuning.Tuning{Lap: s.lap, Laps: s.laps}, src)
}

func (s *Simulator) Laps() int {
	return s.laps
}

// Impacts computes the penalty terms. Each attribute term has the form
// max(0, (ref - attr) * factors...) and is therefore non-increasing in its attribute.
func (s *Simulator) Impacts(a model.CarAttributes, t model.NormalizedTrack, weather int) Impacts {
	l := s.lap
	ref := l.ReferenceAttribute
	frac := func(v int) float64 { return float64(v) / l.AttributeScale }
	short := func(v int) float64 { return ref - float64(v) }
	// weather score shares the attribute scale
	w := frac(weather)

	return Impacts{
		Speed: positive(short(a.Speed) *
			l.SpeedThrottle.Apply(t.FullThrottle) *
			(1 - (frac(a.Brakes)+frac(a.Aerodynamics)+frac(a.Balance))/3) *
			w *
			(1 - t.MaxSpeed) *
			(1 - t.GearChangesPerLap)),
		Maneuverability: positive(short(a.Maneuverability) *
			t.TechnicalFactor * l.ManeuverTechnical *
			(1 - frac(a.Balance)) *
			w *
			(1 - t.DownforceLevel) *
			(1 - t.GearChangesPerLap)),
		Reliability: positive(short(a.Reliability) *
			l.ReliabilityLength.Apply(t.LapLength) *
			(1 - t.FullThrottle) *
			(1 - t.GearChangesPerLap)),
		Aerodynamics: positive(short(a.Aerodynamics) *
			l.AeroDownforce.Apply(t.DownforceLevel) *
			w *
			(1 - t.FullThrottle) *
			(1 - t.LongestFlatOut)),
		DriverSkill: positive(short(a.DriverSkill) *
			l.DriverSkill *
			(1 - t.GearChangesPerLap)),
		Brakes: positive(short(a.Brakes) *
			l.BrakesFlatOut.Apply(t.LongestFlatOut) *
			(1 - frac(a.Speed)) *
			(1 - t.LapLength/l.BrakesLapLengthScale) *
			(1 - t.MaxSpeed)),
		Balance: positive(short(a.Balance) *
			l.BalanceLength.Apply(t.LapLength) *
			(1 - t.LongestFlatOut) *
			(1 - t.DownforceLevel)),
		Weather: positive((l.WeatherMax - float64(weather)) * l.WeatherImpact),
	}
}

// BaseLapTime is the lap time without noise, in ms.
func (s *Simulator) BaseLapTime(a model.CarAttributes, t model.NormalizedTrack, weather int) float64 {
	return float64(t.BestLapTime) + s.lap.ImpactUnit*s.Impacts(a, t, weather).Sum()
}

// NoiseBound is the largest absolute noise a lap can receive for the given driver skill.
func (s *Simulator) NoiseBound(driverSkill int) float64 {
	return s.lap.Variability / 2 * s.skillFactor(driverSkill)
}

// LapTime simulates one lap in ms. It draws exactly one value from the source.
func (s *Simulator) LapTime(a model.CarAttributes, t model.NormalizedTrack, weather int) (int, error) {
	if err := validate(a, weather); err != nil {
		return 0, err
	}
	return s.lapTime(a, t, weather), nil
}

func (s *Simulator) lapTime(a model.CarAttributes, t model.NormalizedTrack, weather int) int {
	noise := (s.src.Float64() - 0.5) * s.lap.Variability * s.skillFactor(a.DriverSkill)
	return int(math.Max(0, math.Round(s.BaseLapTime(a, t, weather)+noise)))
}

// skillFactor is 1 at the skill midpoint and shrinks as skill rises.
func (s *Simulator) skillFactor(driverSkill int) float64 {
	return positive(1 - (float64(driverSkill)-s.lap.SkillMidpoint)/s.lap.SkillSpan)
}

func validate(a model.CarAttributes, weather int) error {
	if err := a.Validate(model.SimulationRange); err != nil {
		return err
	}
	return model.ValidateWeatherScore(weather)
}

func positive(v float64) float64 {
	return math.Max(0, v)
}
