package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sadopc/playtime/internal/stats"
	"github.com/sadopc/playtime/internal/store"
)

func SessionsToCSV(rows []store.SessionRow, path string) error {
	return writeCSV(path,
		[]string{"ID", "Game ID", "Game", "Start", "Duration (s)", "Duration", "Source"},
		func(w *csv.Writer) error {
			for _, r := range rows {
				record := []string{
					strconv.FormatInt(r.ID, 10),
					r.GameID,
					r.GameName,
					store.FormatTimestamp(r.StartedAt),
					strconv.FormatInt(r.Duration, 10),
					formatDuration(r.Duration),
					sourceOf(r.Source),
				}
				if err := w.Write(record); err != nil {
					return err
				}
			}
			return nil
		})
}

// DailyToCSV writes one row per game and day. Days without play get a single
// row with empty game columns so the calendar stays gap-free.
func DailyToCSV(report *stats.DailyReport, path string) error {
	return writeCSV(path,
		[]string{"Date", "Game ID", "Game", "Seconds", "Duration", "Sessions", "Day Total (s)"},
		func(w *csv.Writer) error {
			for _, d := range report.Days {
				total := strconv.FormatInt(d.Total, 10)
				if len(d.Games) == 0 {
					if err := w.Write([]string{d.Date, "", "", "0", formatDuration(0), "0", total}); err != nil {
						return err
					}
					continue
				}
				for _, g := range d.Games {
					record := []string{
						d.Date,
						g.Game.ID,
						g.Game.Name,
						strconv.FormatInt(g.Seconds, 10),
						formatDuration(g.Seconds),
						strconv.Itoa(g.SessionCount),
						total,
					}
					if err := w.Write(record); err != nil {
						return err
					}
				}
			}
			return nil
		})
}

func writeCSV(path string, header []string, body func(w *csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := body(w); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func formatDuration(secs int64) string {
	sign := ""
	if secs < 0 {
		sign = "-"
		secs = -secs
	}
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, h, m, s)
}

func sourceOf(source *string) string {
	if source == nil {
		return ""
	}
	return *source
}
