package weather

import (
	"math"

	"github.com/furyracing/race-engine/pkg/model"
	"github.com/furyracing/race-engine/pkg/tuning"
)

// Score converts a raw observation into a favorability score in [0,99].
// Each factor is mapped linearly onto the score scale and clamped to it,
// so observations beyond the assumed extremes cannot push the result
// outside the scale. Temperature counts positively, all other factors are
// inverted (less is better).
func Score(obs *model.WeatherObservation, cfg tuning.Weather) int {
	scale := cfg.Scale
	temp := normalize(obs.TempC, cfg.Ranges.Temperature, scale)
	wind := normalize(obs.WindKph, cfg.Ranges.Wind, scale)
	precip := normalize(obs.PrecipMM, cfg.Ranges.Precipitation, scale)
	humidity := normalize(obs.Humidity, cfg.Ranges.Humidity, scale)
	cloud := normalize(obs.Cloud, cfg.Ranges.Cloud, scale)

	w := cfg.Weights
	score := temp*w.Temperature +
		(scale-wind)*w.Wind +
		(scale-precip)*w.Precipitation +
		(scale-humidity)*w.Humidity +
		(scale-cloud)*w.Cloud

	return int(math.Round(score))
}

func normalize(value float64, r tuning.Range, scale float64) float64 {
	v := (value - r.Min) / r.Width() * scale
	return math.Max(0, math.Min(scale, v))
}
