package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/furyracing/race-engine/pkg/model"
	"github.com/furyracing/race-engine/pkg/tuning"
)

func obs(temp, wind, precip, humidity, cloud float64) *model.WeatherObservation {
	return &model.WeatherObservation{
		TempC: temp, WindKph: wind, PrecipMM: precip, Humidity: humidity, Cloud: cloud,
	}
}

func TestScore(t *testing.T) {
	cfg := tuning.Default().Weather
	tests := []struct {
		name string
		obs  *model.WeatherObservation
		want int
	}{
		// 49.5*0.3 + 99*0.2 + 99*0.3 + 49.5*0.1 + 99*0.1 = 79.2
		{"mild and dry", obs(15, 0, 0, 50, 0), 79},
		{"cold storm", obs(-10, 100, 50, 100, 100), 0},
		// only the temperature term remains: 99*0.3
		{"hot storm", obs(40, 100, 50, 100, 100), 30},
		{"perfect", obs(40, 0, 0, 0, 0), 99},
		{"clamped beyond extremes", obs(-30, 250, 120, 140, 130), 0},
		{"clamped hot", obs(60, 0, 0, 0, 0), 99},
		// 33.66*0.3 + 79.2*0.2 + 97.02*0.3 + 24.75*0.1 + 49.5*0.1 = 62.469
		{"monaco afternoon", obs(7, 20, 1, 75, 50), 62},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.obs, cfg)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, model.MinWeatherScore)
			assert.LessOrEqual(t, got, model.MaxWeatherScore)
		})
	}
}

func TestScore_monotone(t *testing.T) {
	cfg := tuning.Default().Weather
	prev := Score(obs(20, 0, 0, 50, 50), cfg)
	for wind := 10.0; wind <= 100; wind += 10 {
		cur := Score(obs(20, wind, 0, 50, 50), cfg)
		assert.LessOrEqual(t, cur, prev, "wind %v", wind)
		prev = cur
	}
}
