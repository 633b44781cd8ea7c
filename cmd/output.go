package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	gameColor   = color.New(color.FgMagenta)
	mutedColor  = color.New(color.FgHiBlack)
	goodColor   = color.New(color.FgGreen)
	warnColor   = color.New(color.FgYellow)
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// formatSeconds renders a signed duration as 1h02m03s.
func formatSeconds(secs int64) string {
	sign := ""
	if secs < 0 {
		sign = "-"
		secs = -secs
	}
	h, m, s := secs/3600, secs/60%60, secs%60
	if h > 0 {
		return fmt.Sprintf("%s%dh%02dm%02ds", sign, h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%s%dm%02ds", sign, m, s)
	}
	return fmt.Sprintf("%s%ds", sign, s)
}

func relative(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

func printNav(w io.Writer, hasPrev, hasNext bool, earlier, later string) {
	if hasPrev {
		mutedColor.Fprintf(w, "  more data before %s\n", earlier)
	}
	if hasNext {
		mutedColor.Fprintf(w, "  more data after %s\n", later)
	}
}
