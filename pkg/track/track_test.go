package track

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furyracing/race-engine/pkg/model"
	"github.com/furyracing/race-engine/pkg/tuning"
)

func TestCatalog_Lookup(t *testing.T) {
	c := NewCatalog()
	monaco, err := c.Lookup(ContractIndex(0))
	require.NoError(t, err)
	assert.Equal(t, "Monaco", monaco.Name)
	assert.Equal(t, 74260, monaco.BestLapTime)

	_, err = c.Lookup(99)
	assert.ErrorIs(t, err, ErrUnknownCircuit)
	_, err = c.Lookup(0)
	assert.ErrorIs(t, err, ErrUnknownCircuit)
}

func TestCatalog_All(t *testing.T) {
	all := NewCatalog().All()
	require.Len(t, all, 4)
	for i, tr := range all {
		assert.Equal(t, i+1, tr.Index)
		assert.NoError(t, Validate(&tr))
	}
}

func TestNormalize_monaco(t *testing.T) {
	monaco, err := NewCatalog().Lookup(1)
	require.NoError(t, err)
	got := Normalize(monaco, tuning.Default().Track)
	want := model.NormalizedTrack{
		Index:             1,
		Name:              "Monaco",
		BestLapTime:       74260,
		LapLength:         3.337,
		MaxSpeed:          0.1,
		FullThrottle:      0.59,
		LongestFlatOut:    0.446,
		DownforceLevel:    0.9,
		GearChangesPerLap: 0.425,
		TechnicalFactor:   0.8,
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_clampsOutliers(t *testing.T) {
	raw := &model.TrackProfile{
		Index: 9, Name: "outlier", LapLength: 4, BestLapTime: 90000,
		MaxSpeed: 400, GearChangesPerLap: 10, LongestFlatOut: 3000, DownforceLevel: 120,
		FullThrottle: 0.5, TechnicalFactor: 0.5,
	}
	got := Normalize(raw, tuning.Default().Track)
	assert.InDelta(t, 1.0, got.MaxSpeed, 1e-9)
	assert.InDelta(t, 0.0, got.GearChangesPerLap, 1e-9)
	assert.InDelta(t, 1.0, got.LongestFlatOut, 1e-9)
	assert.InDelta(t, 1.0, got.DownforceLevel, 1e-9)

	raw.MaxSpeed = 100
	assert.InDelta(t, 0.1, Normalize(raw, tuning.Default().Track).MaxSpeed, 1e-9)
}

func TestCatalog_LoadCatalog(t *testing.T) {
	doc := `
tracks:
  - index: 5
    name: Suzuka
    lapLength: 5.807
    maxSpeed: 320
    fullThrottle: 0.65
    longestFlatOut: 1000
    downforceLevel: 70
    gearChangesPerLap: 46
    technicalFactor: 0.7
    bestLapTime: 90983
  - index: 1
    name: Monaco (wet)
    lapLength: 3.337
    maxSpeed: 280
    fullThrottle: 0.5
    longestFlatOut: 669
    downforceLevel: 95
    gearChangesPerLap: 47
    technicalFactor: 0.9
    bestLapTime: 80000
`
	c := NewCatalog()
	n, err := c.LoadCatalog(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	suzuka, err := c.Lookup(5)
	require.NoError(t, err)
	assert.Equal(t, "Suzuka", suzuka.Name)
	assert.InDelta(t, 0.65, suzuka.FullThrottle, 0)

	monaco, err := c.Lookup(1)
	require.NoError(t, err)
	assert.Equal(t, 80000, monaco.BestLapTime)
	assert.Len(t, c.All(), 5)
}

func TestCatalog_LoadCatalog_invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not yaml", "tracks: [:"},
		{"bad lap time", "tracks:\n  - {index: 7, name: x, lapLength: 1, bestLapTime: 0}\n"},
		{"bad throttle", "tracks:\n  - {index: 7, name: x, lapLength: 1, bestLapTime: 1, fullThrottle: 59}\n"},
		{
			"duplicate",
			"tracks:\n  - {index: 7, name: x, lapLength: 1, bestLapTime: 1}\n" +
				"  - {index: 7, name: y, lapLength: 1, bestLapTime: 1}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCatalog()
			_, err := c.LoadCatalog(strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, ErrInvalidTrack)
			assert.Len(t, c.All(), 4)
		})
	}
}

func TestCatalog_Add(t *testing.T) {
	c := NewCatalog()
	assert.ErrorIs(t, c.Add(&model.TrackProfile{Index: -1}), ErrInvalidTrack)
	require.NoError(t, c.Add(&model.TrackProfile{
		Index: 6, Name: "Eagles Canyon Raceway", LapLength: 2.4, BestLapTime: 61000,
		MaxSpeed: 295, FullThrottle: 0.55, TechnicalFactor: 0.6,
	}))
	tr, err := c.Lookup(6)
	require.NoError(t, err)
	assert.Equal(t, "Eagles Canyon Raceway", tr.Name)
}

func TestCatalog_WriteCatalog(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCatalog().WriteCatalog(&buf))
	assert.Contains(t, buf.String(), "name: Monaco")

	c := &Catalog{tracks: make(map[int]model.TrackProfile)}
	n, err := c.LoadCatalog(&buf)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	if diff := cmp.Diff(NewCatalog().All(), c.All()); diff != "" {
		t.Errorf("WriteCatalog() mismatch (-want +got):\n%s", diff)
	}
}
