package attrstring

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furyracing/race-engine/pkg/model"
)

func TestParse(t *testing.T) {
	got, err := Parse("0090" + "0102030405060708" + "9998979695949392")
	require.NoError(t, err)
	want := &Request{
		CircuitIndex: 0,
		WeatherScore: 90,
		Player1: model.CarAttributes{
			Reliability: 1, Maneuverability: 2, Speed: 3, Brakes: 4,
			Balance: 5, Aerodynamics: 6, DriverSkill: 7, Luck: 8,
		},
		Player2: model.CarAttributes{
			Reliability: 99, Maneuverability: 98, Speed: 97, Brakes: 96,
			Balance: 95, Aerodynamics: 94, DriverSkill: 93, Luck: 92,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}

	s, err := Format(got)
	require.NoError(t, err)
	assert.Equal(t, "0090"+"0102030405060708"+"9998979695949392", s)
}

func TestParse_invalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"empty", "", ErrInvalidLength},
		{"short", "0090010203040506070899989796959493", ErrInvalidLength},
		{"long", "00900102030405060708999897969594939200", ErrInvalidLength},
		{"letter", "0090010203040506070899989796959493x2", ErrInvalidDigit},
		{"sign", "-19001020304050607089998979695949392", ErrInvalidDigit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFormat_invalid(t *testing.T) {
	_, err := Format(&Request{CircuitIndex: 100})
	assert.ErrorIs(t, err, ErrInvalidDigit)
	_, err = Format(&Request{Player2: model.CarAttributes{Luck: -1}})
	assert.ErrorIs(t, err, ErrInvalidDigit)
}
