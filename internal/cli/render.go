package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/lydakis/cmdconsole/internal/activity"
	"github.com/lydakis/cmdconsole/internal/api"
	"github.com/lydakis/cmdconsole/internal/console"
	"github.com/lydakis/cmdconsole/internal/payload"
	"github.com/lydakis/cmdconsole/internal/response"
)

// writeOutcome prints the status line and body to stdout and the classified
// failure, if any, to stderr.
func writeOutcome(stdout, stderr io.Writer, o console.Outcome) {
	if o.Sent() {
		fmt.Fprintf(stdout, "Status: %s  Latency: %s\n", response.FormatStatus(o.Status), response.FormatLatency(o.Latency))
	}
	if body := response.PrettyJSON(o.Body); body != "" {
		fmt.Fprintln(stdout, body)
	}
	if o.Err != nil {
		writeErrorInfo(stderr, o.Err)
	}
}

func writeErrorInfo(w io.Writer, info *response.ErrorInfo) {
	fmt.Fprintf(w, "cmdconsole: %s\n", info.Error())
	for _, d := range info.Details {
		fmt.Fprintf(w, "  - %s\n", d)
	}
}

// writeLogTable renders records as a table. Raw text is cut to fit width
// when width is positive.
func writeLogTable(w io.Writer, records []activity.Record, width int) {
	if len(records) == 0 {
		return
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		action := r.Action()
		if action == "" {
			action = "-"
		}
		rows = append(rows, []string{r.ID, r.Status, formatTime(r.CreatedAt), action, r.RawText})
	}

	if width > 0 {
		fixed := 0
		for col := 0; col < 4; col++ {
			widest := 0
			for _, row := range rows {
				widest = max(widest, lipgloss.Width(row[col]))
			}
			fixed += widest + 3
		}
		for _, row := range rows {
			row[4] = truncate(row[4], width-fixed)
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		Headers("ID", "STATUS", "CREATED", "ACTION", "RAW TEXT").
		Rows(rows...)
	fmt.Fprintln(w, t.String())
}

func writeRecord(w io.Writer, r activity.Record) {
	fmt.Fprintf(w, "id:       %s\n", r.ID)
	fmt.Fprintf(w, "status:   %s\n", r.Status)
	fmt.Fprintf(w, "created:  %s\n", formatTime(r.CreatedAt))
	fmt.Fprintf(w, "api key:  %s\n", optional(r.APIKeyName, r.APIKeyID))
	fmt.Fprintf(w, "role:     %s\n", optional(r.Role))
	fmt.Fprintf(w, "raw text: %s\n", r.RawText)
	fmt.Fprintln(w, "intent:")
	fmt.Fprintln(w, payload.Format(r.Intent))
}

func writeReference(w io.Writer, ref api.Reference) {
	fmt.Fprintln(w, "assets:")
	if len(ref.Assets) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, a := range ref.Assets {
		fmt.Fprintf(w, "  %-12s %s\n", a.ID, a.Name)
	}
	fmt.Fprintln(w, "tasks:")
	if len(ref.Tasks) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, t := range ref.Tasks {
		fmt.Fprintf(w, "  %-12s %s\n", t.ID, t.Title)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func optional(values ...*string) string {
	for _, v := range values {
		if v != nil && *v != "" {
			return *v
		}
	}
	return "-"
}

func truncate(s string, w int) string {
	if lipgloss.Width(s) <= w {
		return s
	}
	if w <= 1 {
		return ""
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) > w-1 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
