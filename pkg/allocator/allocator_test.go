package allocator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furyracing/race-engine/pkg/model"
	"github.com/furyracing/race-engine/pkg/sim"
)

func TestGenerate(t *testing.T) {
	src := sim.NewRandSource(42)
	for _, cfg := range []Config{Random(), Manual(), {Min: 0, Max: 99, Budget: 300}} {
		for range 500 {
			a, err := cfg.Generate(src)
			require.NoError(t, err)
			assert.Equal(t, cfg.Budget, a.BudgetPoints())
			require.NoError(t, cfg.Check(a))
		}
	}
}

func TestGenerate_extremeSources(t *testing.T) {
	for _, src := range []sim.Source{sim.FixedSource(0), sim.FixedSource(0.999999)} {
		a, err := Random().Generate(src)
		require.NoError(t, err)
		assert.Equal(t, 40, a.BudgetPoints())
		assert.NoError(t, Random().Check(a))
	}
}

func TestGenerate_infeasible(t *testing.T) {
	for _, cfg := range []Config{
		{Min: 3, Max: 8, Budget: 10},
		{Min: 3, Max: 8, Budget: 60},
		{Min: 5, Max: 4, Budget: 30},
	} {
		_, err := cfg.Generate(sim.FixedSource(0.5))
		assert.ErrorIs(t, err, ErrInfeasible)
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name  string
		attrs model.CarAttributes
		want  error
	}{
		{"ok", model.FromValues([8]int{5, 5, 5, 5, 5, 5, 5, 10}), nil},
		{"budget exact", model.FromValues([8]int{10, 10, 10, 4, 2, 2, 2, 1}), nil},
		{"over budget", model.FromValues([8]int{10, 10, 10, 5, 2, 2, 2, 1}), ErrOverBudget},
		{"below range", model.FromValues([8]int{0, 5, 5, 5, 5, 5, 5, 5}), model.ErrAttributeOutOfRange},
		{"luck above range", model.FromValues([8]int{1, 1, 1, 1, 1, 1, 1, 11}), model.ErrAttributeOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Manual().Check(tt.attrs)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}
