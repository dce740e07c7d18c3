// Package allocator produces and checks point budgeted car builds.
package allocator

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/furyracing/race-engine/pkg/model"
	"github.com/furyracing/race-engine/pkg/sim"
)

var (
	ErrOverBudget = errors.New("attribute budget exceeded")
	ErrInfeasible = errors.New("budget cannot be met within attribute range")
)

// budgeted is the number of attributes paid from the budget (all but luck).
const budgeted = 7

// Config describes a build: every attribute in [Min,Max], the budgeted
// attributes summing to at most Budget.
type Config struct {
	Min    int `json:"min"    mapstructure:"min"`
	Max    int `json:"max"    mapstructure:"max"`
	Budget int `json:"budget" mapstructure:"budget"`
}

// Manual is the rule applied to builds edited by a player.
func Manual() Config {
	return Config{Min: 1, Max: 10, Budget: 40}
}

// Random is the rule used for generated builds.
func Random() Config {
	return Config{Min: 3, Max: 8, Budget: 40}
}

func (c Config) Range() model.AttributeRange {
	return model.AttributeRange{Min: c.Min, Max: c.Max}
}

// Check enforces the producer side invariant.
func (c Config) Check(a model.CarAttributes) error {
	if err := a.Validate(c.Range()); err != nil {
		return err
	}
	if used := a.BudgetPoints(); used > c.Budget {
		return fmt.Errorf("%w: %d points used, budget is %d", ErrOverBudget, used, c.Budget)
	}
	return nil
}

// Generate draws a build whose budgeted attributes use exactly Budget points.
// The attributes are filled in random order; each draw keeps the remaining
// budget reachable for the attributes still to be filled.
func (c Config) Generate(src sim.Source) (model.CarAttributes, error) {
	if c.Min > c.Max || c.Min*budgeted > c.Budget || c.Max*budgeted < c.Budget {
		return model.CarAttributes{}, fmt.Errorf("%w: %d attributes in [%d,%d], budget %d",
			ErrInfeasible, budgeted, c.Min, c.Max, c.Budget)
	}
	intn := func(n int) int {
		return min(int(src.Float64()*float64(n)), n-1)
	}

	order := lo.Range(budgeted)
	for i := len(order) - 1; i > 0; i-- {
		j := intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}

	var values [8]int
	remaining := c.Budget
	for n, idx := range order {
		left := budgeted - n - 1
		upper := min(c.Max, remaining-left*c.Min)
		lower := max(c.Min, remaining-left*c.Max)
		values[idx] = lower + intn(upper-lower+1)
		remaining -= values[idx]
	}
	// luck is free
	values[budgeted] = c.Min + intn(c.Max-c.Min+1)
	return model.FromValues(values), nil
}
