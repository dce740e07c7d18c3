package weather

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furyracing/race-engine/pkg/oracle"
	"github.com/furyracing/race-engine/pkg/track"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewWeatherCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestScoreCmd(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"defaults", nil, "79"},
		{"storm", []string{"--temp", "-10", "--wind", "100", "--precip", "50", "--humidity", "100", "--cloud", "100"}, "0"},
		{"perfect", []string{"--temp", "40", "--humidity", "0"}, "99"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"score"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, strings.TrimSpace(out))
		})
	}
}

func TestUpdateCmd_withoutNats(t *testing.T) {
	var location string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		location = r.URL.Query().Get("q")
		_, _ = w.Write([]byte(`{"location":{"name":"Monza"},
			"current":{"temp_c":15,"wind_kph":0,"precip_mm":0,"humidity":50,"cloud":0}}`))
	}))
	defer srv.Close()

	out, err := run(t, "update", "--api-key", "secret", "--base-url", srv.URL, "--circuit", "2")
	require.NoError(t, err)

	var update oracle.WeatherUpdate
	require.NoError(t, json.Unmarshal([]byte(out), &update))
	assert.Equal(t, "Monza", location)
	assert.Equal(t, oracle.WeatherUpdate{CircuitIndex: 2, WeatherScore: 79, Location: "Monza"}, update)
}

func TestUpdateCmd_unknownCircuit(t *testing.T) {
	_, err := run(t, "update", "--api-key", "secret", "--circuit", "42")
	assert.ErrorIs(t, err, track.ErrUnknownCircuit)
}

func TestLatestCmd_requiresNats(t *testing.T) {
	_, err := run(t, "latest")
	assert.Error(t, err)
}
