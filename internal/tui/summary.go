package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/handiism/ranksim/internal/report"
)

// RenderSummary renders the per-album table and the per-pair means of a run
// for printing after a batch.
func RenderSummary(idx *report.Index) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Ranking similarity, %d album(s)", len(idx.Albums))))
	b.WriteString("\n")

	headers := []string{"Album", "Artist", "Tracks"}
	var pairs []string
	if len(idx.Albums) > 0 {
		for _, c := range idx.Albums[0].Comparisons {
			pairs = append(pairs, c.Pair)
		}
	}
	for _, p := range pairs {
		headers = append(headers, "loss "+p)
	}
	for _, p := range pairs {
		headers = append(headers, "sim "+p)
	}
	headers = append(headers, "Score")

	// sims[row][i] keeps the raw values for coloring.
	sims := make([][]*float64, len(idx.Albums))
	rows := make([][]string, len(idx.Albums))
	for i, a := range idx.Albums {
		row := []string{a.Album, a.Artist, fmt.Sprintf("%d", a.TotalTracks)}
		for _, c := range a.Comparisons {
			row = append(row, formatLoss(c.Loss))
		}
		for _, c := range a.Comparisons {
			row = append(row, formatFloat(c.Similarity))
			sims[i] = append(sims[i], c.Similarity)
		}
		row = append(row, formatFloat(a.MeanScore))
		rows[i] = row
	}

	simStart := 3 + len(pairs)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return base.Bold(true).Foreground(lipgloss.Color("#4ECDC4"))
			}
			if col >= simStart && col < simStart+len(pairs) && row >= 0 && row < len(sims) {
				return similarityStyle(sims[row][col-simStart]).Padding(0, 1)
			}
			if col == 0 {
				return albumStyle.Padding(0, 1)
			}
			return base
		})
	b.WriteString(t.Render())
	b.WriteString("\n\n")

	b.WriteString(subtitleStyle.Render("Mean similarity per pair"))
	b.WriteString("\n")
	for _, s := range idx.Summary {
		if s.Count == 0 {
			b.WriteString(fmt.Sprintf("  %-28s %s\n", s.Pair, dimStyle.Render(undefined)))
			continue
		}
		mean := s.MeanSimilarity
		b.WriteString(fmt.Sprintf("  %-28s %s  %s\n",
			s.Pair,
			similarityStyle(&mean).Render(fmt.Sprintf("%+.2f", mean)),
			dimStyle.Render(fmt.Sprintf("(n=%d, mean loss %.1f)", s.Count, s.MeanLoss)),
		))
	}

	if len(idx.Failures) > 0 {
		b.WriteString("\n")
		for _, f := range idx.Failures {
			b.WriteString(warningStyle.Render(fmt.Sprintf("! %s (%s): %s", f.Album, f.SpotifyID, f.Error)))
			b.WriteString("\n")
		}
	}

	return b.String()
}
