package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"constella/orrery/internal/forcesim"
	"constella/orrery/internal/graph"
	"constella/orrery/internal/layout"
	"constella/orrery/internal/lod"
)

// Tuning is the full parameter document: every numeric knob of the
// layout codec, mass formula, force simulation, and LOD tier table in
// one yaml file. Sections and fields absent from the file keep their
// defaults.
type Tuning struct {
	Layout layout.Params     `yaml:"layout"`
	Mass   graph.MassWeights `yaml:"mass"`
	Force  forcesim.Params   `yaml:"force"`
	LOD    []lod.Tier        `yaml:"lod"`
}

// DefaultTuning returns the built-in parameter set.
func DefaultTuning() Tuning {
	return Tuning{
		Layout: layout.DefaultParams(),
		Mass:   graph.DefaultMassWeights(),
		Force:  forcesim.DefaultParams(),
		LOD:    lod.DefaultTiers(),
	}
}

// LoadTuning returns the defaults overlaid with the yaml file at path.
// An empty path returns pure defaults. The merged result is validated
// the same way the constructors would.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("reading tuning file: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("parsing tuning file: %w", err)
	}
	if err := t.Layout.Validate(); err != nil {
		return t, fmt.Errorf("tuning file %s: %w", path, err)
	}
	if _, err := lod.NewSelector(t.LOD); err != nil {
		return t, fmt.Errorf("tuning file %s: %w", path, err)
	}
	return t, nil
}

// loadTuning applies the persistent --tuning flag.
func loadTuning() (Tuning, error) {
	return LoadTuning(tuningPath)
}

var tuningCmd = &cobra.Command{
	Use:   "tuning",
	Short: "Inspect or scaffold the yaml tuning file",
}

var tuningInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default tuning file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "orrery.tuning.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("refusing to overwrite existing %s", path)
		}

		data, err := yaml.Marshal(DefaultTuning())
		if err != nil {
			return fmt.Errorf("marshaling defaults: %w", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Printf("wrote default tuning to %s\n", path)
		return nil
	},
}

var tuningShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective tuning after applying --tuning",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTuning()
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(t)
		if err != nil {
			return fmt.Errorf("marshaling tuning: %w", err)
		}
		os.Stdout.Write(data)
		return nil
	},
}

func init() {
	tuningCmd.AddCommand(tuningInitCmd)
	tuningCmd.AddCommand(tuningShowCmd)
	rootCmd.AddCommand(tuningCmd)
}
