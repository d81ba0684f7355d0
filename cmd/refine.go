package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"constella/orrery/internal/db"
	"constella/orrery/internal/geom"
	"constella/orrery/internal/graph"
	"constella/orrery/internal/layout"
	"constella/orrery/internal/logging"
)

var (
	refineCycles   int
	refineSeed     string
	refineVariants int
	refineSave     bool
	refineJSON     bool
)

type refineReport struct {
	Members  int                   `json:"members"`
	Sessions []layout.HistoryEntry `json:"sessions"`
	BestSeed string                `json:"best_seed"`
	Saved    bool                  `json:"saved"`
}

var refineCmd = &cobra.Command{
	Use:   "refine",
	Short: "Run refinement cycles over the community store",
	Long: `Loads the community store, indexes it into a snapshot, and runs one or
more refinement cycles. Each cycle lays out several seed variants, scores
them for cohesion and stability, and installs the fittest. With --save the
accepted layout and per-cycle fitness are persisted, so the next run resumes
from the same session counter and seed.`,
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
		if refineVariants > 0 {
			t.Layout.Variants = refineVariants
		}

		snap, err := graph.SnapshotFromDB(d, graph.SnapshotOptions{Weights: t.Mass})
		if err != nil {
			return fmt.Errorf("loading graph: %w", err)
		}

		engine, err := layout.NewEngine("", t.Layout)
		if err != nil {
			return err
		}

		state, err := d.GetLayoutState()
		if err != nil {
			return fmt.Errorf("loading layout state: %w", err)
		}
		if state != nil {
			stored, err := graph.StoredLayout(d)
			if err != nil {
				return fmt.Errorf("loading stored layout: %w", err)
			}
			engine.Restore(state.Session, state.BestSeed, stored)
			logging.Info("refine", "resuming from session %d (seed %q)", state.Session, state.BestSeed)
		}
		if refineSeed != "" {
			engine.Restore(0, refineSeed, nil)
		}

		report := refineReport{Members: snap.Len(), Saved: refineSave}
		for i := 0; i < refineCycles; i++ {
			cycle := engine.Refine(snap)
			if cycle == nil {
				logging.Info("refine", "store has no members, nothing to refine")
				break
			}
			w := cycle.Winner
			logging.Info("refine", "session %d: fitness=%.4f cohesion=%.4f stability=%.4f temp=%.3f variant=%d",
				cycle.Session, w.Score.Fitness, w.Score.Cohesion, w.Score.Stability, cycle.Temperature, w.Index)

			entry := layout.HistoryEntry{
				Session:     cycle.Session,
				Seed:        w.Seed,
				Fitness:     w.Score.Fitness,
				Cohesion:    w.Score.Cohesion,
				Stability:   w.Score.Stability,
				Temperature: cycle.Temperature,
			}
			report.Sessions = append(report.Sessions, entry)

			if refineSave {
				if err := persistCycle(d, engine, entry); err != nil {
					return err
				}
			}
		}
		report.BestSeed = engine.BestSeed()

		if refineJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		if len(report.Sessions) == 0 {
			fmt.Println("no cycles ran (empty store)")
			return nil
		}
		fmt.Printf("\n  %-8s %-8s %-9s %-9s %-6s %s\n", "session", "fitness", "cohesion", "stability", "temp", "seed")
		for _, s := range report.Sessions {
			fmt.Printf("  %-8d %-8.4f %-9.4f %-9.4f %-6.3f %s\n",
				s.Session, s.Fitness, s.Cohesion, s.Stability, s.Temperature, s.Seed)
		}
		fmt.Printf("\n  best seed: %q", report.BestSeed)
		if report.Saved {
			fmt.Print("  (saved)")
		}
		fmt.Println()
		return nil
	},
}

// persistCycle writes the accepted layout and the cycle's fitness record.
func persistCycle(d *db.DB, engine *layout.Engine, entry layout.HistoryEntry) error {
	now := time.Now().Unix()
	accepted := engine.Accepted()

	positions := make([]db.Position, 0, len(accepted))
	for _, id := range sortedKeys(accepted) {
		pos := accepted[id]
		positions = append(positions, db.Position{
			MemberID: id, X: pos.X, Y: pos.Y, Z: pos.Z, UpdatedAt: now,
		})
	}

	state := db.LayoutState{Session: engine.Session(), BestSeed: engine.BestSeed()}
	if err := d.SaveLayout(state, positions); err != nil {
		return fmt.Errorf("saving layout: %w", err)
	}

	rec := db.FitnessRecord{
		Session:     entry.Session,
		Seed:        entry.Seed,
		Fitness:     entry.Fitness,
		Cohesion:    entry.Cohesion,
		Stability:   entry.Stability,
		Temperature: entry.Temperature,
		RecordedAt:  now,
	}
	if err := d.AppendFitness(rec); err != nil {
		return err
	}
	return nil
}

func sortedKeys(m map[string]geom.Vec3) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	refineCmd.Flags().IntVar(&refineCycles, "cycles", 1, "Number of refinement cycles to run")
	refineCmd.Flags().StringVar(&refineSeed, "seed", "", "Override the base seed instead of resuming the stored one")
	refineCmd.Flags().IntVar(&refineVariants, "variants", 0, "Variants per cycle (0 = tuning value)")
	refineCmd.Flags().BoolVar(&refineSave, "save", false, "Persist the accepted layout and fitness history")
	refineCmd.Flags().BoolVar(&refineJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(refineCmd)
}
