package cmd

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"constella/orrery/internal/geom"
	"constella/orrery/internal/graph"
	"constella/orrery/internal/layout"
	"constella/orrery/internal/lod"
	"constella/orrery/internal/logging"
	"constella/orrery/internal/octree"
)

var (
	queryAt        string
	queryRadius    float64
	queryTolerance float64
	queryJSON      bool
)

type queryReport struct {
	Camera     geom.Vec3          `json:"camera"`
	Distance   float64            `json:"distance"`
	Tier       string             `json:"tier"`
	CellSize   float64            `json:"cell_size"`
	Blend      float64            `json:"blend"`
	Entries    []octree.Entry     `json:"entries"`
	Aggregates []octree.Aggregate `json:"aggregates"`
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run a distance-aware LOD query against the stored layout",
	Long: `Builds an octree over the stored layout and queries it from a camera
point. Subtrees near the camera resolve to individual members; far ones
collapse into aggregates at the cell size the active LOD tier requests.
The headline tier for the camera's distance from the world center is
annotated on the result, along with the cross-fade blend factor.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		camera, err := parseVec3(queryAt)
		if err != nil {
			return fmt.Errorf("parsing --at: %w", err)
		}

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
		if len(stored) == 0 {
			fmt.Println("no stored layout (run refine --save first)")
			return nil
		}

		tree, err := buildTree(snap, stored, t.Layout)
		if err != nil {
			return err
		}

		selector, err := lod.NewSelector(t.LOD)
		if err != nil {
			return err
		}
		distance := camera.Distance(geom.Vec3{})
		sel := selector.Select(distance)

		result := tree.QueryLOD(camera, selector.CellSizeAt, queryTolerance)
		if queryRadius > 0 {
			result = filterByRadius(result, camera, queryRadius)
		}

		report := queryReport{
			Camera:     camera,
			Distance:   distance,
			Tier:       sel.Tier.Name,
			CellSize:   sel.Tier.CellSize,
			Blend:      sel.Blend,
			Entries:    result.Entries,
			Aggregates: result.Aggregates,
		}

		if queryJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		fmt.Printf("\n  camera (%.1f, %.1f, %.1f)  distance %.1f\n", camera.X, camera.Y, camera.Z, distance)
		fmt.Printf("  tier %s  cell %.0f  blend %.2f\n", report.Tier, report.CellSize, report.Blend)
		fmt.Println("  ────────────────────────────────────────")
		fmt.Printf("  %d individual members, %d aggregates\n", len(report.Entries), len(report.Aggregates))
		for _, e := range report.Entries {
			fmt.Printf("    %s  (%.1f, %.1f, %.1f)  mass %.1f\n", truncID(e.ID), e.Pos.X, e.Pos.Y, e.Pos.Z, e.Mass)
		}
		for _, a := range report.Aggregates {
			fmt.Printf("    [%d members]  (%.1f, %.1f, %.1f)  mass %.1f\n",
				a.Count, a.Center.X, a.Center.Y, a.Center.Z, a.Mass)
		}
		fmt.Println()
		return nil
	},
}

// buildTree loads the stored positions into an octree. Bounds grow
// past the nominal world radius when the stored layout was computed
// for a larger population than the store holds now.
func buildTree(snap *graph.Snapshot, stored map[string]geom.Vec3, p layout.Params) (*octree.Tree, error) {
	entries := make([]octree.Entry, 0, len(stored))
	maxAbs := 0.0
	for id, pos := range stored {
		mass := 1.0
		if m, ok := snap.Members[id]; ok {
			mass = m.Mass
		}
		entries = append(entries, octree.Entry{ID: id, Pos: pos, Mass: mass})
		for _, v := range [3]float64{pos.X, pos.Y, pos.Z} {
			maxAbs = math.Max(maxAbs, math.Abs(v))
		}
	}

	bounds := layout.WorldBounds(snap.Len(), p)
	if maxAbs*1.01 > bounds.Max.X {
		bounds = geom.NewBox(geom.Vec3{}, maxAbs*1.01)
	}

	tree, refused, err := octree.Build(bounds, octree.DefaultCapacity, octree.DefaultMaxDepth, entries)
	if err != nil {
		return nil, fmt.Errorf("building octree: %w", err)
	}
	if refused > 0 {
		logging.Info("query", "octree refused %d out-of-bounds positions", refused)
	}
	logging.Debug("query", "octree holds %d entries in %v", tree.Len(), bounds)
	return tree, nil
}

func filterByRadius(in *octree.LODResult, center geom.Vec3, radius float64) *octree.LODResult {
	out := &octree.LODResult{}
	for _, e := range in.Entries {
		if e.Pos.Distance(center) <= radius {
			out.Entries = append(out.Entries, e)
		}
	}
	for _, a := range in.Aggregates {
		if a.Center.Distance(center) <= radius {
			out.Aggregates = append(out.Aggregates, a)
		}
	}
	return out
}

// parseVec3 parses "x,y,z" into a vector.
func parseVec3(s string) (geom.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return geom.Vec3{}, fmt.Errorf("expected x,y,z, got %q", s)
	}
	var coords [3]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return geom.Vec3{}, fmt.Errorf("bad coordinate %q: %w", part, err)
		}
		coords[i] = v
	}
	return geom.Vec3{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}

func init() {
	queryCmd.Flags().StringVar(&queryAt, "at", "0,0,0", "Camera position as x,y,z")
	queryCmd.Flags().Float64Var(&queryRadius, "radius", 0, "Only return results within this distance of the camera (0 = all)")
	queryCmd.Flags().Float64Var(&queryTolerance, "tolerance", 0.25, "Cell-size matching tolerance for aggregation")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(queryCmd)
}
