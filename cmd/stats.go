package cmd

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"constella/orrery/internal/graph"
)

var (
	statsTopN      int
	statsQuietDays int
	statsJSON      bool
)

type statsReport struct {
	Store  map[string]int         `json:"store"`
	Report *graph.CommunityReport `json:"report"`
	Health *graph.HealthReport    `json:"health"`
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store counts, community structure, and a health score",
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

		store, err := d.Stats()
		if err != nil {
			return fmt.Errorf("counting store rows: %w", err)
		}

		snap, err := graph.SnapshotFromDB(d, graph.SnapshotOptions{Weights: t.Mass})
		if err != nil {
			return fmt.Errorf("loading graph: %w", err)
		}
		report := graph.BuildReport(snap, statsTopN)
		health := graph.CommunityHealth(snap, statsQuietDays)

		if statsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(statsReport{Store: store, Report: report, Health: health})
		}

		printStats(store, report, health, snap)
		return nil
	},
}

func printStats(store map[string]int, report *graph.CommunityReport, health *graph.HealthReport, snap *graph.Snapshot) {
	barLen := int(health.Score * 20)
	if barLen > 20 {
		barLen = 20
	}
	bar := strings.Repeat("█", barLen) + strings.Repeat("░", 20-barLen)
	fmt.Printf("\n  Community Health: %.0f%%  [%s]\n", health.Score*100, bar)
	fmt.Printf("  breakdown: connectivity=%.2f cohesion=%.2f activity=%.2f resilience=%.2f\n",
		health.Breakdown.Connectivity,
		health.Breakdown.Cohesion,
		health.Breakdown.Activity,
		health.Breakdown.Resilience)

	fmt.Println("\n  STORE")
	fmt.Println("  ────────────────────────────────────────")
	for _, table := range []string{"members", "posts", "comments", "risk_scores", "layout_positions", "fitness_history"} {
		fmt.Printf("  %-18s %s\n", table, humanize.Comma(int64(store[table])))
	}

	fmt.Println("\n  COMMUNITY")
	fmt.Println("  ────────────────────────────────────────")
	fmt.Printf("  Members: %d  Interaction pairs: %d  Posts counted: %d\n",
		report.TotalMembers, report.TotalPairs, report.TotalPosts)
	fmt.Printf("  Neighborhoods: %d (largest %d, smallest %d)\n",
		report.Neighborhoods, report.LargestNeighborhood, report.SmallestNeighborhood)

	if report.IsolatedCount > 0 {
		fmt.Printf("  Isolated: %d members with no interactions\n", report.IsolatedCount)
		for _, id := range report.IsolatedIDs {
			username := "?"
			if m := snap.Members[id]; m != nil {
				username = m.Username
			}
			fmt.Printf("    - %s (%s)\n", truncID(id), truncName(username, 40))
		}
		if report.IsolatedCount > len(report.IsolatedIDs) {
			fmt.Printf("    ... and %d more\n", report.IsolatedCount-len(report.IsolatedIDs))
		}
	}

	fmt.Println("\n  Degree distribution:")
	printHistogram(report.DegreeHistogram)

	fmt.Println("\n  Neighborhood sizes:")
	printHistogram(report.NeighborhoodHistogram)

	if len(report.TopEngaged) > 0 {
		fmt.Println("\n  Most engaged members:")
		for _, m := range report.TopEngaged {
			fmt.Printf("    %s mass=%.1f degree=%d direct=%d  %s\n",
				truncID(m.ID), m.Mass, m.Degree, m.Direct, truncName(m.Username, 40))
		}
	}

	cn := health.Connectors
	if cn.ConnectorCount > 0 || cn.ThinTieCount > 0 {
		fmt.Println("\n  RESILIENCE")
		fmt.Println("  ────────────────────────────────────────")
		if cn.ConnectorCount > 0 {
			fmt.Printf("  %d connectors (removal splits a neighborhood):\n", cn.ConnectorCount)
			limit := 10
			if len(cn.Connectors) < limit {
				limit = len(cn.Connectors)
			}
			for _, c := range cn.Connectors[:limit] {
				fmt.Printf("    %s ties=%d  %s\n", truncID(c.ID), c.Ties, truncName(c.Username, 40))
			}
			if cn.ConnectorCount > limit {
				fmt.Printf("    ... and %d more\n", cn.ConnectorCount-limit)
			}
		}
		if cn.ThinTieCount > 0 {
			fmt.Printf("  %d thin ties (only link between two groups):\n", cn.ThinTieCount)
			limit := 10
			if len(cn.ThinTies) < limit {
				limit = len(cn.ThinTies)
			}
			for _, tt := range cn.ThinTies[:limit] {
				fmt.Printf("    %s <-> %s\n", truncName(tt.AUsername, 30), truncName(tt.BUsername, 30))
			}
			if cn.ThinTieCount > limit {
				fmt.Printf("    ... and %d more\n", cn.ThinTieCount-limit)
			}
		}
	}

	if q := health.Quiet; q.QuietCount > 0 {
		fmt.Println("\n  QUIET")
		fmt.Println("  ────────────────────────────────────────")
		fmt.Printf("  %d of %d tracked members quiet for %d+ days:\n",
			q.QuietCount, q.TrackedCount, statsQuietDays)
		limit := 10
		if len(q.QuietMembers) < limit {
			limit = len(q.QuietMembers)
		}
		for _, m := range q.QuietMembers[:limit] {
			note := ""
			if m.LastActive == 0 {
				note = " (never commented)"
			}
			fmt.Printf("    %s %dd quiet%s  %s\n", truncID(m.ID), m.DaysQuiet, note, truncName(m.Username, 40))
		}
		if q.QuietCount > limit {
			fmt.Printf("    ... and %d more\n", q.QuietCount-limit)
		}
	}
	fmt.Println()
}

func printHistogram(buckets []graph.DegreeBucket) {
	for _, b := range buckets {
		if b.Count > 0 {
			barWidth := int(math.Log2(float64(b.Count))) + 2
			if barWidth < 1 {
				barWidth = 1
			}
			fmt.Printf("    %5s: %4d  %s\n", b.Label, b.Count, strings.Repeat("=", barWidth))
		}
	}
}

func truncName(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Back off to a safe UTF-8 boundary
	truncated := s[:max]
	for len(truncated) > 0 && truncated[len(truncated)-1]>>6 == 2 {
		truncated = truncated[:len(truncated)-1]
	}
	return truncated + "..."
}

func init() {
	statsCmd.Flags().IntVar(&statsTopN, "top-n", 10, "Number of top items to show per section")
	statsCmd.Flags().IntVar(&statsQuietDays, "quiet-days", 30, "Days without a comment before a member counts as quiet")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(statsCmd)
}
