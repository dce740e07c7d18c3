package build

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furyracing/race-engine/pkg/allocator"
	"github.com/furyracing/race-engine/pkg/model"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewBuildCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBuildCmd_generate(t *testing.T) {
	out, err := run(t, "--seed", "7", "--count", "5")
	require.NoError(t, err)

	scanner := bufio.NewScanner(bytes.NewBufferString(out))
	n := 0
	for scanner.Scan() {
		var b Build
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &b))
		assert.Equal(t, 40, b.Points)
		assert.NoError(t, allocator.Random().Check(b.Attributes))
		assert.Len(t, b.Fingerprint, 16)
		n++
	}
	assert.Equal(t, 5, n)

	again, err := run(t, "--seed", "7", "--count", "5")
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestBuildCmd_check(t *testing.T) {
	out, err := run(t, "--preset", "manual", "--check", "10,10,10,5,2,2,1,10")
	require.NoError(t, err)
	assert.Equal(t, "ok: 40 of 40 points used\n", out)

	_, err = run(t, "--preset", "manual", "--check", "10,10,10,5,2,2,2,10")
	assert.ErrorIs(t, err, allocator.ErrOverBudget)

	_, err = run(t, "--check", "1,2,3")
	assert.ErrorIs(t, err, model.ErrAttributeOutOfRange)
}

func TestBuildCmd_unknownPreset(t *testing.T) {
	_, err := run(t, "--preset", "gold")
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	a := model.FromValues([8]int{1, 2, 3, 4, 5, 6, 7, 99})
	assert.Equal(t, "0102030405060799", fingerprint(a))
}
