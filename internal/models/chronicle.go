package models

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ChronicleEntry records a single resolved action or choice.
type ChronicleEntry struct {
	Day      int         `yaml:"day"`
	Move     string      `yaml:"move"` // "travel", "rest", "forage" or "choice: <text>"
	Outcome  string      `yaml:"outcome"`
	Status   Status      `yaml:"status"`
	Distance int         `yaml:"distance"`
	Changes  StatChanges `yaml:"changes,omitempty"`
}

// Chronicle is the written record of one playthrough.
type Chronicle struct {
	RunID   string           `yaml:"run_id"`
	Journey string           `yaml:"journey"`
	Entries []ChronicleEntry `yaml:"entries"`
}

// Diff returns the resource changes between two snapshots.
func Diff(before, after GameState) StatChanges {
	return StatChanges{
		Health: after.Health - before.Health,
		Hunger: after.Hunger - before.Hunger,
		Warmth: after.Warmth - before.Warmth,
		Morale: after.Morale - before.Morale,
		Fish:   after.Inventory.Fish - before.Inventory.Fish,
	}
}

// Save writes the chronicle and the final state under dir/<run id>.
// Chronicles are an export; nothing reads them back into a game.
func (c *Chronicle) Save(dir string, final GameState) (string, error) {
	if c.RunID == "" {
		return "", fmt.Errorf("chronicle has no run id")
	}
	runDir := filepath.Join(dir, c.RunID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	chronicleData, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(runDir, "chronicle.yaml"), chronicleData, 0644); err != nil {
		return "", err
	}

	stateData, err := yaml.Marshal(final)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(runDir, "final_state.yaml"), stateData, 0644); err != nil {
		return "", err
	}

	return runDir, nil
}

// ListChronicles returns the run ids exported under dir.
func ListChronicles(dir string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []string{}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var runs []string
	for _, entry := range entries {
		if entry.IsDir() {
			// chronicle.yaml marks a complete export
			path := filepath.Join(dir, entry.Name(), "chronicle.yaml")
			if _, err := os.Stat(path); err == nil {
				runs = append(runs, entry.Name())
			}
		}
	}
	return runs, nil
}
