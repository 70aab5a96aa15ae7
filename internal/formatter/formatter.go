// package formatter renders search results and query history as CSV, Markdown or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/gmusic/internal/models"
	"github.com/desertthunder/gmusic/internal/shared"
)

// Format names an output rendering.
type Format string

const (
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts text, csv, markdown (or md), case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, s)
	}
}

// Render dispatches to the exporter for f.
func Render(f Format, query string, results *models.Results) ([]byte, error) {
	switch f {
	case FormatCSV:
		return ExportToCSV(results)
	case FormatMarkdown:
		return ExportToMarkdown(query, results)
	case FormatText:
		return ExportToText(query, results)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, f)
	}
}

// ExportToCSV writes one row per result with columns: Kind, Artist, Album, Title, Year, Track, Disc, Duration, Size, Score, URL
func ExportToCSV(results *models.Results) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Kind", "Artist", "Album", "Title", "Year", "Track", "Disc", "Duration", "Size", "Score", "URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	var records [][]string
	for _, t := range results.Tracks {
		records = append(records, []string{
			"track",
			models.Deref(t.Artist),
			models.Deref(t.Album),
			models.Deref(t.Track),
			optionalInt(t.Year),
			optionalInt(t.AlbumPos),
			optionalInt(t.DiscNumber),
			shared.FormatDuration(models.Deref(t.Duration)),
			optionalInt64(t.Size),
			formatScore(t.Score),
			t.URL,
		})
	}
	for _, a := range results.Albums {
		records = append(records, []string{
			"album", models.Deref(a.Artist), models.Deref(a.Album), "", optionalInt(a.Year), "", "", "", "", formatScore(a.Score), "",
		})
	}
	for _, a := range results.Artists {
		records = append(records, []string{
			"artist", models.Deref(a.Name), "", "", "", "", "", "", "", formatScore(a.Score), "",
		})
	}

	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders results under Tracks, Albums and Artists headings
func ExportToMarkdown(query string, results *models.Results) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Results for %s\n\n", query))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n", len(results.Tracks)))
	buf.WriteString(fmt.Sprintf("**Albums**: %d\n", len(results.Albums)))
	buf.WriteString(fmt.Sprintf("**Artists**: %d\n", len(results.Artists)))

	if len(results.Tracks) > 0 {
		buf.WriteString("\n## Tracks\n\n")
		for i, t := range results.Tracks {
			albumPart := ""
			if album := models.Deref(t.Album); album != "" {
				albumPart = fmt.Sprintf(" (%s)", album)
			}
			durationPart := ""
			if d := shared.FormatDuration(models.Deref(t.Duration)); d != "" {
				durationPart = fmt.Sprintf(" [%s]", d)
			}
			buf.WriteString(fmt.Sprintf("%d. %s - %s%s%s `%s`\n",
				i+1, models.Deref(t.Artist), models.Deref(t.Track), albumPart, durationPart, t.URL))
		}
	}

	if len(results.Albums) > 0 {
		buf.WriteString("\n## Albums\n\n")
		for i, a := range results.Albums {
			yearPart := ""
			if a.Year != nil {
				yearPart = fmt.Sprintf(" (%d)", *a.Year)
			}
			buf.WriteString(fmt.Sprintf("%d. %s - %s%s\n", i+1, models.Deref(a.Artist), models.Deref(a.Album), yearPart))
		}
	}

	if len(results.Artists) > 0 {
		buf.WriteString("\n## Artists\n\n")
		for i, a := range results.Artists {
			buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, models.Deref(a.Name)))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText renders results as numbered plain-text lines
func ExportToText(query string, results *models.Results) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Query: %s\n", query))
	buf.WriteString(fmt.Sprintf("Results: %d\n", results.Len()))

	if len(results.Tracks) > 0 {
		buf.WriteString("\nTracks:\n")
		for i, t := range results.Tracks {
			buf.WriteString(fmt.Sprintf("%d. %s - %s  %s\n", i+1, models.Deref(t.Artist), models.Deref(t.Track), t.URL))
		}
	}
	if len(results.Albums) > 0 {
		buf.WriteString("\nAlbums:\n")
		for i, a := range results.Albums {
			buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, models.Deref(a.Artist), models.Deref(a.Album)))
		}
	}
	if len(results.Artists) > 0 {
		buf.WriteString("\nArtists:\n")
		for i, a := range results.Artists {
			buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, models.Deref(a.Name)))
		}
	}

	return buf.Bytes(), nil
}

// HistoryToCSV writes one row per query record with columns: Sequence, QID, Kind, Query, Tracks, Albums, Artists, Created
func HistoryToCSV(records []*models.QueryRecord) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Sequence", "QID", "Kind", "Query", "Tracks", "Albums", "Artists", "Created"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, rec := range records {
		record := []string{
			strconv.Itoa(rec.Sequence()),
			rec.QID(),
			string(rec.Kind()),
			rec.Query(),
			strconv.Itoa(rec.TrackCount()),
			strconv.Itoa(rec.AlbumCount()),
			strconv.Itoa(rec.ArtistCount()),
			rec.CreatedAt().UTC().Format("2006-01-02T15:04:05Z"),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteExport writes rendered output to path, creating or truncating it.
func WriteExport(data []byte, path string) error {
	if path == "" {
		return fmt.Errorf("%w: output path", shared.ErrMissingArgument)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optionalInt64(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}
