package tracks

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/furyracing/race-engine/pkg/cmd/cmdutil"
	"github.com/furyracing/race-engine/pkg/model"
	"github.com/furyracing/race-engine/pkg/track"
)

func NewTracksCmd() *cobra.Command {
	var format string
	var normalized bool
	cmd := &cobra.Command{
		Use:   "tracks",
		Short: "lists the circuits of the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdutil.SetupLogger()
			catalog, err := cmdutil.LoadCatalog()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if normalized {
				t, err := cmdutil.LoadTuning()
				if err != nil {
					return err
				}
				ret := make([]model.NormalizedTrack, 0)
				for _, p := range catalog.All() {
					ret = append(ret, track.Normalize(&p, t.Track))
				}
				return writeJSON(out, ret)
			}
			switch format {
			case "yaml":
				return catalog.WriteCatalog(out)
			case "json":
				return writeJSON(out, catalog.All())
			default:
				return fmt.Errorf("unknown format %q", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "output format (yaml, json)")
	cmd.Flags().BoolVar(&normalized, "normalized", false,
		"print the normalized factors used by the simulator (json)")
	return cmd
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
