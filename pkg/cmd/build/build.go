package build

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/furyracing/race-engine/pkg/allocator"
	"github.com/furyracing/race-engine/pkg/cmd/cmdutil"
	"github.com/furyracing/race-engine/pkg/model"
	"github.com/furyracing/race-engine/pkg/sim"
)

type buildOpts struct {
	preset string
	seed   uint64
	count  int
	check  []int
}

// Build is one generated car build.
type Build struct {
	Attributes  model.CarAttributes `json:"attributes"`
	Points      int                 `json:"points"`
	Fingerprint string              `json:"fingerprint"`
}

func NewBuildCmd() *cobra.Command {
	opts := buildOpts{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "generates or checks point budgeted car builds",
		Long: `Generates random car builds that use the complete point budget.

The rule is selected by --preset (random: 3..8 per attribute, manual: 1..10,
both with a budget of 40 points excluding luck) and may be replaced by the
"allocator" key of the config file. With --check the given build is
validated against the rule instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdutil.SetupLogger()
			cfg, err := allocatorConfig(opts.preset)
			if err != nil {
				return err
			}
			if len(opts.check) > 0 {
				return checkBuild(cmd.OutOrStdout(), cfg, opts.check)
			}
			return generate(cmd.OutOrStdout(), cfg, &opts)
		},
	}
	cmd.Flags().StringVar(&opts.preset, "preset", "random", "allocation rule (random, manual)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "seed for the random source (0: random)")
	cmd.Flags().IntVar(&opts.count, "count", 1, "number of builds to generate")
	cmd.Flags().IntSliceVar(&opts.check, "check", nil, "build to check (8 values)")
	return cmd
}

func allocatorConfig(preset string) (allocator.Config, error) {
	var cfg allocator.Config
	switch preset {
	case "random":
		cfg = allocator.Random()
	case "manual":
		cfg = allocator.Manual()
	default:
		return cfg, fmt.Errorf("unknown preset %q", preset)
	}
	if viper.IsSet("allocator") {
		if err := viper.UnmarshalKey("allocator", &cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func generate(out io.Writer, cfg allocator.Config, opts *buildOpts) error {
	seed := opts.seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	src := sim.NewRandSource(seed)
	enc := json.NewEncoder(out)
	for range opts.count {
		a, err := cfg.Generate(src)
		if err != nil {
			return err
		}
		if err := enc.Encode(Build{
			Attributes:  a,
			Points:      a.BudgetPoints(),
			Fingerprint: fingerprint(a),
		}); err != nil {
			return err
		}
	}
	return nil
}

func checkBuild(out io.Writer, cfg allocator.Config, values []int) error {
	if len(values) != 8 {
		return fmt.Errorf("%w: got %d values", model.ErrAttributeOutOfRange, len(values))
	}
	a := model.FromValues([8]int(values))
	if err := cfg.Check(a); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "ok: %d of %d points used\n", a.BudgetPoints(), cfg.Budget)
	return err
}

// fingerprint renders the attributes as the 16 digit player part of the
// attribute string.
func fingerprint(a model.CarAttributes) string {
	v := a.Values()
	return strings.Join(lo.Map(v[:], func(x, _ int) string {
		return fmt.Sprintf("%02d", x)
	}), "")
}
