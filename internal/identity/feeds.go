package identity

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadClassificationMap reads the synced name→label feed
// ({"Name": "paid", ...}). An empty path yields an empty map; every
// lookup then resolves to the unknown label.
func LoadClassificationMap(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("missing_classification_feed %s: %w", path, err)
	}
	var labels map[string]string
	if err := json.Unmarshal(raw, &labels); err != nil {
		return nil, fmt.Errorf("invalid_classification_feed %s: %w", path, err)
	}
	return labels, nil
}

// TrackedHours is one operator's time-tracking summary from the hours
// feed. Consumed by surrounding tooling, not by the core aggregate.
type TrackedHours struct {
	TotalMinutes float64            `json:"total_minutes"`
	TotalHours   float64            `json:"total_hours"`
	DailyMinutes map[string]float64 `json:"daily_minutes"`
}

type trackedHoursFile struct {
	Chatters map[string]TrackedHours `json:"chatters"`
}

// LoadTrackedHours reads the synced per-operator hours feed.
func LoadTrackedHours(path string) (map[string]TrackedHours, error) {
	if path == "" {
		return map[string]TrackedHours{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("missing_hours_feed %s: %w", path, err)
	}
	var file trackedHoursFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("invalid_hours_feed %s: %w", path, err)
	}
	if file.Chatters == nil {
		file.Chatters = map[string]TrackedHours{}
	}
	return file.Chatters, nil
}
