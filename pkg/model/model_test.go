package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCarAttributes_Validate(t *testing.T) {
	tests := []struct {
		name    string
		attrs   CarAttributes
		r       AttributeRange
		wantErr bool
	}{
		{
			name:  "all midpoint",
			attrs: FromValues([8]int{50, 50, 50, 50, 50, 50, 50, 50}),
			r:     SimulationRange,
		},
		{
			name:  "bounds inclusive",
			attrs: FromValues([8]int{0, 99, 0, 99, 0, 99, 0, 99}),
			r:     SimulationRange,
		},
		{
			name:    "luck too high",
			attrs:   FromValues([8]int{1, 1, 1, 1, 1, 1, 1, 11}),
			r:       AttributeRange{Min: 1, Max: 10},
			wantErr: true,
		},
		{
			name:    "negative speed",
			attrs:   CarAttributes{Speed: -1},
			r:       SimulationRange,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.attrs.Validate(tt.r)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrAttributeOutOfRange), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCarAttributes_ValuesRoundTrip(t *testing.T) {
	v := [8]int{1, 2, 3, 4, 5, 6, 7, 8}
	a := FromValues(v)
	assert.Equal(t, v, a.Values())
	assert.Equal(t, 3, a.Speed)
	assert.Equal(t, 7, a.DriverSkill)
	assert.Equal(t, 28, a.BudgetPoints())
}

func TestValidateWeatherScore(t *testing.T) {
	assert.NoError(t, ValidateWeatherScore(0))
	assert.NoError(t, ValidateWeatherScore(99))
	assert.ErrorIs(t, ValidateWeatherScore(100), ErrWeatherOutOfRange)
	assert.ErrorIs(t, ValidateWeatherScore(-1), ErrWeatherOutOfRange)
}

func TestFormatMillis(t *testing.T) {
	assert.Equal(t, "778.600", FormatMillis(778600))
	assert.Equal(t, "74.260", FormatMillis(74260))
	assert.Equal(t, "0.005", FormatMillis(5))
}

func TestRaceResult_Winner(t *testing.T) {
	assert.Equal(t, 1, (&RaceResult{Player1Time: 10, Player2Time: 11}).Winner())
	assert.Equal(t, 2, (&RaceResult{Player1Time: 12, Player2Time: 11}).Winner())
	assert.Equal(t, 0, (&RaceResult{Player1Time: 11, Player2Time: 11}).Winner())
}
