package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"constella/orrery/internal/forcesim"
	"constella/orrery/internal/graph"
	"constella/orrery/internal/layout"
	"constella/orrery/internal/logging"
)

var (
	validateRounds int
	validateSeed   string
	validateJSON   bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the layout codec against a force-directed reference",
	Long: `Places the community with the layout codec, then runs a classical
force-directed simulation over the same graph and measures how closely the
codec tracks it: per-member positional error and R² over interacting-pair
distances. The simulation is offline tooling only; nothing it produces is
persisted or exported.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()

		t, err := loadTuning()
		if err != nil {
			return err
		}
		if validateRounds > 0 {
			t.Force.Rounds = validateRounds
		}

		snap, err := graph.SnapshotFromDB(d, graph.SnapshotOptions{Weights: t.Mass})
		if err != nil {
			return fmt.Errorf("loading graph: %w", err)
		}
		if snap.Len() == 0 {
			fmt.Println("store has no members, nothing to validate")
			return nil
		}

		seed := validateSeed
		if seed == "" {
			state, err := d.GetLayoutState()
			if err != nil {
				return fmt.Errorf("loading layout state: %w", err)
			}
			if state != nil {
				seed = state.BestSeed
			}
		}

		logging.Info("validate", "placing %d members with seed %q", snap.Len(), seed)
		placed := layout.Place(snap, seed, t.Layout)

		radius := layout.TargetRadius(snap.Len(), t.Layout.Spacing)
		logging.Info("validate", "running force reference (%d rounds)", t.Force.Rounds)
		reference := forcesim.Run(snap, radius, t.Force)

		comp := forcesim.Compare(snap, placed.Positions, reference)

		if validateJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(comp)
		}

		fmt.Printf("\n  CODEC vs FORCE REFERENCE\n")
		fmt.Println("  ────────────────────────────────────────")
		fmt.Printf("  Members compared: %d  Interaction pairs: %d\n", comp.Nodes, comp.Pairs)
		fmt.Printf("  Positional error: mean=%.2f median=%.2f max=%.2f\n",
			comp.MeanError, comp.MedianError, comp.MaxError)
		fmt.Printf("  Pair-distance R²: %.4f\n\n", comp.RSquared)
		return nil
	},
}

func init() {
	validateCmd.Flags().IntVar(&validateRounds, "rounds", 0, "Simulation rounds (0 = tuning value)")
	validateCmd.Flags().StringVar(&validateSeed, "seed", "", "Seed to validate (default: the stored best seed)")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(validateCmd)
}
