package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/fleveque/lastmosaic/internal/export"
)

var (
	stageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))
	doneStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#95E1A3"))
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#D51007")).
			Padding(0, 1)
)

// progressPrinter prints one styled line per export stage.
func progressPrinter(w io.Writer) export.ProgressFunc {
	return func(stage export.Stage, message string) {
		if stage == export.StageComplete {
			fmt.Fprintln(w, doneStyle.Render("✓ "+message))
			return
		}
		fmt.Fprintln(w, stageStyle.Render("• "+message))
	}
}

// summary renders the result box shown after an export.
func summary(res *export.Result) string {
	lines := fmt.Sprintf("%s\n%s %dx%d, %s\n%s",
		doneStyle.Render(res.Location),
		dimStyle.Render(string(res.Format)),
		res.Width, res.Height,
		humanize.Bytes(uint64(res.Bytes)),
		dimStyle.Render(fmt.Sprintf("layout %s · render %s · compress %s · total %s",
			round(res.Stats.LayoutTime), round(res.Stats.RenderTime),
			round(res.Stats.CompressTime), round(res.Stats.Total()))),
	)
	if res.Degraded {
		lines += "\n" + warnStyle.Render("compression failed, saved the uncompressed PNG")
	}
	return boxStyle.Render(lines)
}

func round(d time.Duration) time.Duration {
	return d.Round(time.Millisecond)
}
