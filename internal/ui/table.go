package ui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/gmusic/internal/models"
	"github.com/desertthunder/gmusic/internal/shared"
)

var (
	headerStyle = NewBold("#7D56F4").Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = NewStyle("#626262")
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

// ResultsTable renders tracks, then albums, then artists as a single table.
func ResultsTable(results *models.Results) string {
	t := newTable("Kind", "Artist", "Album", "Title", "Length", "Score", "URL")

	for _, tr := range results.Tracks {
		t.Row("track",
			models.Deref(tr.Artist),
			models.Deref(tr.Album),
			models.Deref(tr.Track),
			shared.FormatDuration(models.Deref(tr.Duration)),
			formatScore(tr.Score),
			tr.URL,
		)
	}
	for _, a := range results.Albums {
		t.Row("album", models.Deref(a.Artist), models.Deref(a.Album), "", "", formatScore(a.Score), "")
	}
	for _, a := range results.Artists {
		t.Row("artist", models.Deref(a.Name), "", "", "", formatScore(a.Score), "")
	}

	return t.Render()
}

// HistoryTable renders query records newest first, as returned by the repository.
func HistoryTable(records []*models.QueryRecord) string {
	t := newTable("#", "Kind", "Query", "Tracks", "Albums", "Artists", "When")

	for _, rec := range records {
		t.Row(
			strconv.Itoa(rec.Sequence()),
			string(rec.Kind()),
			rec.Query(),
			strconv.Itoa(rec.TrackCount()),
			strconv.Itoa(rec.AlbumCount()),
			strconv.Itoa(rec.ArtistCount()),
			rec.CreatedAt().Local().Format("2006-01-02 15:04"),
		)
	}

	return t.Render()
}

func formatScore(score float64) string {
	return fmt.Sprintf("%.3f", score)
}
