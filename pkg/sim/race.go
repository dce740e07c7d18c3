package sim

import (
	"github.com/samber/lo"

	"github.com/furyracing/race-engine/pkg/model"
)

// RaceLaps simulates every lap of a race, always the configured number of laps.
func (s *Simulator) RaceLaps(a model.CarAttributes, t model.NormalizedTrack, weather int) ([]int, error) {
	if err := validate(a, weather); err != nil {
		return nil, err
	}
	laps := make([]int, s.laps)
	for i := range laps {
		laps[i] = s.lapTime(a, t, weather)
	}
	return laps, nil
}

// TotalRaceTime is the sum of RaceLaps in ms.
func (s *Simulator) TotalRaceTime(a model.CarAttributes, t model.NormalizedTrack, weather int) (int64, error) {
	laps, err := s.RaceLaps(a, t, weather)
	if err != nil {
		return 0, err
	}
	return lo.SumBy(laps, func(l int) int64 { return int64(l) }), nil
}
