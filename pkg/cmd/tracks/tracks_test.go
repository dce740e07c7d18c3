package tracks

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furyracing/race-engine/pkg/model"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewTracksCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTracksCmd_yaml(t *testing.T) {
	out, err := run(t)
	require.NoError(t, err)
	assert.Contains(t, out, "tracks:")
	assert.Contains(t, out, "name: Spa-Francorchamps")
}

func TestTracksCmd_json(t *testing.T) {
	out, err := run(t, "--format", "json")
	require.NoError(t, err)
	var tracks []model.TrackProfile
	require.NoError(t, json.Unmarshal([]byte(out), &tracks))
	require.Len(t, tracks, 4)
	assert.Equal(t, "Monaco", tracks[0].Name)
	assert.Equal(t, 74260, tracks[0].BestLapTime)
}

func TestTracksCmd_normalized(t *testing.T) {
	out, err := run(t, "--normalized")
	require.NoError(t, err)
	var tracks []model.NormalizedTrack
	require.NoError(t, json.Unmarshal([]byte(out), &tracks))
	require.Len(t, tracks, 4)
	assert.InDelta(t, 0.9, tracks[0].DownforceLevel, 1e-9)
	for _, tr := range tracks {
		assert.GreaterOrEqual(t, tr.MaxSpeed, 0.1)
		assert.LessOrEqual(t, tr.GearChangesPerLap, 1.0)
	}
}

func TestTracksCmd_unknownFormat(t *testing.T) {
	_, err := run(t, "--format", "xml")
	assert.Error(t, err)
}
