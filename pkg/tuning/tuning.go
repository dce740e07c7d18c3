// Package tuning holds every constant used by the weather scorer, the track
// normalization and the lap simulator.
package tuning

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidTuning = errors.New("invalid tuning")

// RaceLaps is the fixed number of laps of every race.
const RaceLaps = 10

type (
	// Range is a closed interval [Min,Max] in the unit of the value it describes.
	Range struct {
		Min float64 `json:"min" mapstructure:"min" yaml:"min"`
		Max float64 `json:"max" mapstructure:"max" yaml:"max"`
	}

	// WeatherWeights must sum to 1.
	WeatherWeights struct {
		Temperature   float64 `json:"temperature"   mapstructure:"temperature"   yaml:"temperature"`
		Wind          float64 `json:"wind"          mapstructure:"wind"          yaml:"wind"`
		Precipitation float64 `json:"precipitation" mapstructure:"precipitation" yaml:"precipitation"`
		Humidity      float64 `json:"humidity"      mapstructure:"humidity"      yaml:"humidity"`
		Cloud         float64 `json:"cloud"         mapstructure:"cloud"         yaml:"cloud"`
	}

	// WeatherRanges are the assumed extremes used to map raw values onto 0..Scale.
	WeatherRanges struct {
		Temperature   Range `json:"temperature"   mapstructure:"temperature"   yaml:"temperature"`   // °C
		Wind          Range `json:"wind"          mapstructure:"wind"          yaml:"wind"`          // km/h
		Precipitation Range `json:"precipitation" mapstructure:"precipitation" yaml:"precipitation"` // mm
		Humidity      Range `json:"humidity"      mapstructure:"humidity"      yaml:"humidity"`      // %
		Cloud         Range `json:"cloud"         mapstructure:"cloud"         yaml:"cloud"`         // %
	}

	Weather struct {
		Weights WeatherWeights `json:"weights" mapstructure:"weights" yaml:"weights"`
		Ranges  WeatherRanges  `json:"ranges"  mapstructure:"ranges"  yaml:"ranges"`
		// Scale is the top of the score scale (best conditions).
		Scale float64 `json:"scale" mapstructure:"scale" yaml:"scale"`
	}

	// TrackRanges are the reference ranges used to normalize raw track data.
	TrackRanges struct {
		MaxSpeed       Range   `json:"maxSpeed"       mapstructure:"maxSpeed"       yaml:"maxSpeed"`       // km/h
		MaxSpeedFloor  float64 `json:"maxSpeedFloor"  mapstructure:"maxSpeedFloor"  yaml:"maxSpeedFloor"`  // lowest normalized max speed
		GearChanges    Range   `json:"gearChanges"    mapstructure:"gearChanges"    yaml:"gearChanges"`    // count per lap
		LongestFlatOut Range   `json:"longestFlatOut" mapstructure:"longestFlatOut" yaml:"longestFlatOut"` // m
		Downforce      Range   `json:"downforce"      mapstructure:"downforce"      yaml:"downforce"`      // level
	}

	// Coefficient is the "base + factor*x" term used by several impacts.
	Coefficient struct {
		Base   float64 `json:"base"   mapstructure:"base"   yaml:"base"`
		Factor float64 `json:"factor" mapstructure:"factor" yaml:"factor"`
	}

	Lap struct {
		// ReferenceAttribute is the attribute value at which a shortfall starts to cost time.
		ReferenceAttribute float64 `json:"referenceAttribute" mapstructure:"referenceAttribute" yaml:"referenceAttribute"`
		// AttributeScale converts attributes into fractions (attr/AttributeScale).
		AttributeScale float64 `json:"attributeScale" mapstructure:"attributeScale" yaml:"attributeScale"`

		SpeedThrottle        Coefficient `json:"speedThrottle"        mapstructure:"speedThrottle"        yaml:"speedThrottle"`
		ManeuverTechnical    float64     `json:"maneuverTechnical"    mapstructure:"maneuverTechnical"    yaml:"maneuverTechnical"`
		ReliabilityLength    Coefficient `json:"reliabilityLength"    mapstructure:"reliabilityLength"    yaml:"reliabilityLength"`
		AeroDownforce        Coefficient `json:"aeroDownforce"        mapstructure:"aeroDownforce"        yaml:"aeroDownforce"`
		DriverSkill          float64     `json:"driverSkill"          mapstructure:"driverSkill"          yaml:"driverSkill"`
		BrakesFlatOut        Coefficient `json:"brakesFlatOut"        mapstructure:"brakesFlatOut"        yaml:"brakesFlatOut"`
		BrakesLapLengthScale float64     `json:"brakesLapLengthScale" mapstructure:"brakesLapLengthScale" yaml:"brakesLapLengthScale"` // km
		BalanceLength        Coefficient `json:"balanceLength"        mapstructure:"balanceLength"        yaml:"balanceLength"`

		// WeatherMax is the best weather score, WeatherImpact the seconds lost per point below it.
		WeatherMax    float64 `json:"weatherMax"    mapstructure:"weatherMax"    yaml:"weatherMax"`
		WeatherImpact float64 `json:"weatherImpact" mapstructure:"weatherImpact" yaml:"weatherImpact"`

		// ImpactUnit converts the impact sum into milliseconds.
		ImpactUnit float64 `json:"impactUnit" mapstructure:"impactUnit" yaml:"impactUnit"`

		// Variability is the full width of the uniform lap noise in ms (±Variability/2).
		Variability float64 `json:"variability" mapstructure:"variability" yaml:"variability"`
		// SkillMidpoint is the driver skill at which the noise is not scaled.
		SkillMidpoint float64 `json:"skillMidpoint" mapstructure:"skillMidpoint" yaml:"skillMidpoint"`
		// SkillSpan controls how strongly driver skill scales the noise.
		SkillSpan float64 `json:"skillSpan" mapstructure:"skillSpan" yaml:"skillSpan"`
	}

	Tuning struct {
		Weather Weather     `json:"weather" mapstructure:"weather" yaml:"weather"`
		Track   TrackRanges `json:"track"   mapstructure:"track"   yaml:"track"`
		Lap     Lap         `json:"lap"     mapstructure:"lap"     yaml:"lap"`
		// Laps is the number of laps per race, always RaceLaps.
		Laps int `json:"laps" mapstructure:"laps" yaml:"laps"`
	}
)

// Default returns the tuning used by the racing contract.
func Default() Tuning {
	return Tuning{
		Weather: Weather{
			Weights: WeatherWeights{
				Temperature:   0.3,
				Wind:          0.2,
				Precipitation: 0.3,
				Humidity:      0.1,
				Cloud:         0.1,
			},
			Ranges: WeatherRanges{
				Temperature:   Range{Min: -10, Max: 40},
				Wind:          Range{Min: 0, Max: 100},
				Precipitation: Range{Min: 0, Max: 50},
				Humidity:      Range{Min: 0, Max: 100},
				Cloud:         Range{Min: 0, Max: 100},
			},
			Scale: 99,
		},
		Track: TrackRanges{
			MaxSpeed:       Range{Min: 290, Max: 360},
			MaxSpeedFloor:  0.1,
			GearChanges:    Range{Min: 30, Max: 70},
			LongestFlatOut: Range{Min: 0, Max: 1500},
			Downforce:      Range{Min: 0, Max: 100},
		},
		Lap: Lap{
			ReferenceAttribute:   50,
			AttributeScale:       100,
			SpeedThrottle:        Coefficient{Base: 0.15, Factor: 0.03},
			ManeuverTechnical:    0.3,
			ReliabilityLength:    Coefficient{Base: 0.15, Factor: 0.01},
			AeroDownforce:        Coefficient{Base: 0.15, Factor: 0.05},
			DriverSkill:          0.2,
			BrakesFlatOut:        Coefficient{Base: 0.15, Factor: 0.01},
			BrakesLapLengthScale: 100,
			BalanceLength:        Coefficient{Base: 0.15, Factor: 0.01},
			WeatherMax:           99,
			WeatherImpact:        0.4,
			ImpactUnit:           1000,
			Variability:          250,
			SkillMidpoint:        50,
			SkillSpan:            100,
		},
		Laps: RaceLaps,
	}
}

func (c Coefficient) Apply(x float64) float64 {
	return c.Base + c.Factor*x
}

func (r Range) Width() float64 {
	return r.Max - r.Min
}

// Validate reports inconsistent values.
func (t Tuning) Validate() error {
	w := t.Weather.Weights
	sum := w.Temperature + w.Wind + w.Precipitation + w.Humidity + w.Cloud
	if math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("%w: weather weights sum to %v", ErrInvalidTuning, sum)
	}
	ranges := map[string]Range{
		"weather.temperature":   t.Weather.Ranges.Temperature,
		"weather.wind":          t.Weather.Ranges.Wind,
		"weather.precipitation": t.Weather.Ranges.Precipitation,
		"weather.humidity":      t.Weather.Ranges.Humidity,
		"weather.cloud":         t.Weather.Ranges.Cloud,
		"track.maxSpeed":        t.Track.MaxSpeed,
		"track.gearChanges":     t.Track.GearChanges,
		"track.longestFlatOut":  t.Track.LongestFlatOut,
		"track.downforce":       t.Track.Downforce,
	}
	for name, r := range ranges {
		if r.Width() <= 0 {
			return fmt.Errorf("%w: empty range %s [%v,%v]", ErrInvalidTuning, name, r.Min, r.Max)
		}
	}
	if t.Weather.Scale <= 0 {
		return fmt.Errorf("%w: weather scale must be positive", ErrInvalidTuning)
	}
	if t.Lap.AttributeScale <= 0 || t.Lap.BrakesLapLengthScale <= 0 || t.Lap.SkillSpan <= 0 {
		return fmt.Errorf("%w: lap scales must be positive", ErrInvalidTuning)
	}
	l := t.Lap
	// negative factors would turn penalties into time savings
	factors := map[string]float64{
		"lap.speedThrottle.base":       l.SpeedThrottle.Base,
		"lap.speedThrottle.factor":     l.SpeedThrottle.Factor,
		"lap.maneuverTechnical":        l.ManeuverTechnical,
		"lap.reliabilityLength.base":   l.ReliabilityLength.Base,
		"lap.reliabilityLength.factor": l.ReliabilityLength.Factor,
		"lap.aeroDownforce.base":       l.AeroDownforce.Base,
		"lap.aeroDownforce.factor":     l.AeroDownforce.Factor,
		"lap.driverSkill":              l.DriverSkill,
		"lap.brakesFlatOut.base":       l.BrakesFlatOut.Base,
		"lap.brakesFlatOut.factor":     l.BrakesFlatOut.Factor,
		"lap.balanceLength.base":       l.BalanceLength.Base,
		"lap.balanceLength.factor":     l.BalanceLength.Factor,
		"lap.variability":              l.Variability,
	}
	for name, v := range factors {
		if v < 0 {
			return fmt.Errorf("%w: negative %s %v", ErrInvalidTuning, name, v)
		}
	}
	if l.ImpactUnit <= 0 {
		return fmt.Errorf("%w: impact unit must be positive, got %v", ErrInvalidTuning, l.ImpactUnit)
	}
	if l.WeatherImpact <= 0 {
		return fmt.Errorf("%w: weather impact must be positive, got %v", ErrInvalidTuning, l.WeatherImpact)
	}
	if l.WeatherMax < t.Weather.Scale {
		return fmt.Errorf("%w: weather max %v below weather scale %v",
			ErrInvalidTuning, l.WeatherMax, t.Weather.Scale)
	}
	if t.Laps != RaceLaps {
		return fmt.Errorf("%w: a race has %d laps, got %d", ErrInvalidTuning, RaceLaps, t.Laps)
	}
	return nil
}
