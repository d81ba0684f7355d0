package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"constella/orrery/internal/db"
	"github.com/spf13/cobra"
)

var (
	dbPath     string
	tuningPath string
)

var rootCmd = &cobra.Command{
	Use:   "orrery",
	Short: "Deterministic 3D layout engine for the community graph",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to .orrery.db community store")
	rootCmd.PersistentFlags().StringVar(&tuningPath, "tuning", "", "Path to a yaml tuning file overriding default parameters")
}

// DiscoverDB finds the database path using priority: env > flag > walk-up > XDG fallback
func DiscoverDB() (string, error) {
	// 1. Environment variable
	if envPath := os.Getenv("ORRERY_DB"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	// 2. CLI flag
	if dbPath != "" {
		if _, err := os.Stat(dbPath); err == nil {
			return dbPath, nil
		}
		return "", fmt.Errorf("database not found at --db path: %s", dbPath)
	}

	// 3. Walk up from CWD
	dir, err := os.Getwd()
	if err == nil {
		for {
			candidate := filepath.Join(dir, ".orrery.db")
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	// 4. XDG fallback
	home, err := os.UserHomeDir()
	if err == nil {
		xdgPath := filepath.Join(home, ".local", "share", "com.constella.orrery", "orrery.db")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath, nil
		}
	}

	return "", fmt.Errorf("no .orrery.db found (set ORRERY_DB, use --db, or run from a directory containing .orrery.db)")
}

// CreateDBPath resolves where a new database should live when none exists
// yet: env, then flag, then .orrery.db in the current directory. Unlike
// DiscoverDB it never requires the file to exist.
func CreateDBPath() string {
	if envPath := os.Getenv("ORRERY_DB"); envPath != "" {
		return envPath
	}
	if dbPath != "" {
		return dbPath
	}
	return ".orrery.db"
}

// OpenDatabase discovers and opens the database
func OpenDatabase() (*db.DB, error) {
	path, err := DiscoverDB()
	if err != nil {
		return nil, err
	}
	return db.OpenDB(path)
}

// ResolveMember finds a member by full ID, ID prefix, or username.
func ResolveMember(d *db.DB, reference string) (*db.Member, error) {
	// 1. Exact ID match
	member, err := d.GetMember(reference)
	if err == nil && member != nil {
		return member, nil
	}

	// 2. ID prefix match (≥6 hex/dash chars)
	if len(reference) >= 6 && isHexDash(reference) {
		matches, err := d.MembersByIDPrefix(reference, 10)
		if err == nil {
			switch len(matches) {
			case 1:
				return &matches[0], nil
			case 0:
				// fall through to username
			default:
				lines := make([]string, len(matches))
				for i, m := range matches {
					lines[i] = fmt.Sprintf("  %s %s", truncID(m.ID), m.Username)
				}
				return nil, fmt.Errorf("ambiguous reference '%s'. %d matches:\n%s\nUse a full member ID instead.",
					reference, len(matches), joinLines(lines))
			}
		}
	}

	// 3. Username match
	matches, err := d.MembersByUsername(reference, 10)
	if err == nil {
		switch len(matches) {
		case 1:
			return &matches[0], nil
		case 0:
			// fall through to not found
		default:
			lines := make([]string, len(matches))
			for i, m := range matches {
				lines[i] = fmt.Sprintf("  %s %s", truncID(m.ID), m.Username)
			}
			return nil, fmt.Errorf("ambiguous reference '%s'. %d matches:\n%s\nUse a member ID instead.",
				reference, len(matches), joinLines(lines))
		}
	}

	return nil, fmt.Errorf("member not found: %s", reference)
}

func isHexDash(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') || c == '-') {
			return false
		}
	}
	return true
}

func joinLines(lines []string) string {
	result := ""
	for i, l := range lines {
		if i > 0 {
			result += "\n"
		}
		result += l
	}
	return result
}

func truncID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
