package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"constella/orrery/internal/db"
	"constella/orrery/internal/geom"
	"constella/orrery/internal/graph"
	"constella/orrery/internal/layout"
	"constella/orrery/internal/logging"
)

var exportOut string

// exportMember is one positioned member in the export document. Visual
// seeds the renderer's animation state at the accepted position so a
// fresh client starts from the stored layout instead of the origin.
type exportMember struct {
	ID       string       `json:"id"`
	Username string       `json:"username"`
	Mass     float64      `json:"mass"`
	Pos      geom.Vec3    `json:"pos"`
	Visual   graph.Visual `json:"visual"`
}

// exportDoc is the renderer-boundary document: the accepted layout,
// the current neighborhoods, and the fitness history. Everything a
// renderer needs to draw the community and its refinement trend;
// nothing it doesn't.
type exportDoc struct {
	GeneratedAt   int64                 `json:"generated_at"`
	Seed          string                `json:"seed"`
	Session       int                   `json:"session"`
	WorldRadius   float64               `json:"world_radius"`
	Members       []exportMember        `json:"members"`
	Neighborhoods []*graph.Neighborhood `json:"neighborhoods"`
	History       []db.FitnessRecord    `json:"fitness_history"`
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the renderer-boundary JSON document",
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

		snap, err := graph.SnapshotFromDB(d, graph.SnapshotOptions{Weights: t.Mass})
		if err != nil {
			return fmt.Errorf("loading graph: %w", err)
		}
		stored, err := graph.StoredLayout(d)
		if err != nil {
			return fmt.Errorf("loading stored layout: %w", err)
		}

		doc := exportDoc{
			GeneratedAt: time.Now().Unix(),
			WorldRadius: layout.TargetRadius(snap.Len(), t.Layout.Spacing),
		}

		state, err := d.GetLayoutState()
		if err != nil {
			return fmt.Errorf("loading layout state: %w", err)
		}
		if state != nil {
			doc.Seed = state.BestSeed
			doc.Session = state.Session
		}

		// Positions come from the store; neighborhoods are recomputed
		// with the stored seed, which reproduces the accepted hashes
		// and centers as long as the store is unchanged since refine.
		for _, id := range snap.MemberIDs() {
			pos, ok := stored[id]
			if !ok {
				continue
			}
			m := snap.Members[id]
			doc.Members = append(doc.Members, exportMember{
				ID: id, Username: m.Username, Mass: m.Mass, Pos: pos,
				Visual: m.Visual,
			})
		}
		if snap.Len() > 0 {
			doc.Neighborhoods = layout.Place(snap, doc.Seed, t.Layout).Neighborhoods
		}

		history, err := d.FitnessHistory(0)
		if err != nil {
			return fmt.Errorf("loading fitness history: %w", err)
		}
		doc.History = history

		out := os.Stdout
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				return fmt.Errorf("creating %s: %w", exportOut, err)
			}
			defer f.Close()
			out = f
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding export: %w", err)
		}
		if exportOut != "" {
			logging.Info("export", "wrote %d members, %d neighborhoods, %d history records to %s",
				len(doc.Members), len(doc.Neighborhoods), len(doc.History), exportOut)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}
