package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"constella/orrery/internal/geom"
	"constella/orrery/internal/graph"
)

var memberJSON bool

type memberReport struct {
	ID               string           `json:"id"`
	Username         string           `json:"username"`
	JoinedAt         *int64           `json:"joined_at"`
	DaysSober        int              `json:"days_sober"`
	ServerComments   int              `json:"server_comments"`
	Mass             float64          `json:"mass"`
	Engagement       float64          `json:"engagement"`
	Posts            int              `json:"posts"`
	PostComments     int              `json:"post_comments"`
	Direct           int              `json:"direct"`
	Degree           int              `json:"degree"`
	NeighborhoodSize int              `json:"neighborhood_size"`
	Risk             *graph.RiskScore `json:"risk,omitempty"`
	Position         *geom.Vec3       `json:"position,omitempty"`
}

var memberCmd = &cobra.Command{
	Use:   "member <id|prefix|username>",
	Short: "Show one member's graph stats and layout placement",
	Args:  cobra.ExactArgs(1),
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

		m, err := ResolveMember(d, args[0])
		if err != nil {
			return err
		}

		snap, err := graph.SnapshotFromDB(d, graph.SnapshotOptions{Weights: t.Mass})
		if err != nil {
			return fmt.Errorf("loading graph: %w", err)
		}

		st := snap.Stats[m.ID]
		report := memberReport{
			ID:             m.ID,
			Username:       m.Username,
			JoinedAt:       m.JoinedAt,
			DaysSober:      snap.DaysSober(m.ID),
			ServerComments: m.ServerComments,
			Mass:           snap.Members[m.ID].Mass,
			Engagement:     snap.Engagement(m.ID),
			Posts:          st.Posts,
			PostComments:   st.PostComments,
			Direct:         st.Direct,
			Degree:         len(st.Neighbors),
		}

		for _, nh := range snap.Neighborhoods() {
			for _, id := range nh.Members {
				if id == m.ID {
					report.NeighborhoodSize = nh.Size()
				}
			}
		}

		if rs, ok := snap.Risk[m.ID]; ok {
			report.Risk = &rs
		}

		stored, err := graph.StoredLayout(d)
		if err != nil {
			return fmt.Errorf("loading stored layout: %w", err)
		}
		if pos, ok := stored[m.ID]; ok {
			report.Position = &pos
		}

		if memberJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		fmt.Printf("\n  %s (%s)\n", report.Username, truncID(report.ID))
		fmt.Println("  ────────────────────────────────────────")
		if report.JoinedAt != nil {
			fmt.Printf("  Joined %s\n", humanize.Time(time.Unix(*report.JoinedAt, 0)))
		}
		if report.DaysSober > 0 {
			fmt.Printf("  %d days since reference date\n", report.DaysSober)
		}
		fmt.Printf("  Mass %.2f  engagement %.2f  server comments %d\n",
			report.Mass, report.Engagement, report.ServerComments)
		fmt.Printf("  Posts %d (comments received %d)  direct %d  degree %d\n",
			report.Posts, report.PostComments, report.Direct, report.Degree)
		fmt.Printf("  Neighborhood of %d members\n", report.NeighborhoodSize)
		if report.Risk != nil {
			fmt.Printf("  Risk %.2f (%s)\n", report.Risk.Risk, report.Risk.Level)
		}
		if report.Position != nil {
			fmt.Printf("  Position (%.1f, %.1f, %.1f)\n",
				report.Position.X, report.Position.Y, report.Position.Z)
		} else {
			fmt.Println("  No stored position (run refine --save)")
		}
		fmt.Println()
		return nil
	},
}

func init() {
	memberCmd.Flags().BoolVar(&memberJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(memberCmd)
}
