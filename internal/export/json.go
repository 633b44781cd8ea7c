package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/playtime/internal/stats"
	"github.com/sadopc/playtime/internal/store"
)

type sessionsExport struct {
	ExportedAt string        `json:"exported_at"`
	Count      int           `json:"count"`
	Sessions   []jsonSession `json:"sessions"`
}

type jsonSession struct {
	ID          int64  `json:"id"`
	GameID      string `json:"game_id"`
	Game        string `json:"game"`
	StartTime   string `json:"start_time"`
	DurationSec int64  `json:"duration_seconds"`
	Duration    string `json:"duration"`
	Source      string `json:"source,omitempty"`
}

type dailyExport struct {
	ExportedAt string            `json:"exported_at"`
	HasPrev    bool              `json:"hasPrev"`
	HasNext    bool              `json:"hasNext"`
	Days       []stats.DayBucket `json:"data"`
}

func SessionsToJSON(rows []store.SessionRow, path string) error {
	export := sessionsExport{
		ExportedAt: exportedAt(),
		Count:      len(rows),
	}

	for _, r := range rows {
		export.Sessions = append(export.Sessions, jsonSession{
			ID:          r.ID,
			GameID:      r.GameID,
			Game:        r.GameName,
			StartTime:   store.FormatTimestamp(r.StartedAt),
			DurationSec: r.Duration,
			Duration:    formatDuration(r.Duration),
			Source:      sourceOf(r.Source),
		})
	}

	return writeJSON(export, path)
}

func DailyToJSON(report *stats.DailyReport, path string) error {
	return writeJSON(dailyExport{
		ExportedAt: exportedAt(),
		HasPrev:    report.HasPrev,
		HasNext:    report.HasNext,
		Days:       report.Days,
	}, path)
}

func exportedAt() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func writeJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
