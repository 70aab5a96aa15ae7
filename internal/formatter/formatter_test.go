package formatter

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/gmusic/internal/models"
	"github.com/desertthunder/gmusic/internal/shared"
	th "github.com/desertthunder/gmusic/internal/testing"
)

func ptr[T any](v T) *T { return &v }

func sampleResults() *models.Results {
	return &models.Results{
		Tracks: []models.TrackResult{
			{
				Artist:     ptr("Artist One"),
				Album:      ptr("Album One"),
				Track:      ptr("Song One"),
				Year:       ptr(2011),
				AlbumPos:   ptr(3),
				DiscNumber: ptr(1),
				Size:       ptr(int64(9876543)),
				Duration:   ptr(245.0),
				URL:        "gmusic:track:Tabc",
				Checked:    true,
				Score:      0.5,
			},
			{Track: ptr("Untitled"), URL: "gmusic:track:Tdef", Checked: true, Score: 0.25},
		},
		Albums:  []models.AlbumResult{{Artist: ptr("Artist One"), Album: ptr("Album One"), Year: ptr(2011), Score: 1}},
		Artists: []models.ArtistResult{{Name: ptr("Artist One"), Score: 2}},
	}
}

func TestParseFormat(t *testing.T) {
	tc := []struct {
		in   string
		want Format
	}{
		{in: "", want: FormatText},
		{in: "text", want: FormatText},
		{in: "CSV", want: FormatCSV},
		{in: "md", want: FormatMarkdown},
		{in: " markdown ", want: FormatMarkdown},
	}

	for _, tt := range tc {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}

	t.Run("Unknown", func(t *testing.T) {
		if _, err := ParseFormat("yaml"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleResults())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		lines := strings.Split(strings.TrimSpace(output), "\n")

		if lines[0] != "Kind,Artist,Album,Title,Year,Track,Disc,Duration,Size,Score,URL" {
			t.Errorf("CSV missing headers, got: %s", lines[0])
		}
		if len(lines) != 5 {
			t.Fatalf("expected header plus 4 rows, got %d", len(lines))
		}
		if lines[1] != "track,Artist One,Album One,Song One,2011,3,1,4:05,9876543,0.5,gmusic:track:Tabc" {
			t.Errorf("unexpected track row: %s", lines[1])
		}
		if lines[2] != "track,,,Untitled,,,,,,0.25,gmusic:track:Tdef" {
			t.Errorf("expected absent fields to be empty, got: %s", lines[2])
		}
		if !strings.HasPrefix(lines[3], "album,Artist One,Album One,,2011") {
			t.Errorf("unexpected album row: %s", lines[3])
		}
		if !strings.HasPrefix(lines[4], "artist,Artist One,") {
			t.Errorf("unexpected artist row: %s", lines[4])
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown("artist one", sampleResults())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Results for artist one",
			"**Tracks**: 2",
			"## Tracks",
			"1. Artist One - Song One (Album One) [4:05] `gmusic:track:Tabc`",
			"## Albums",
			"1. Artist One - Album One (2011)",
			"## Artists",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToMarkdown Empty", func(t *testing.T) {
		data, err := ExportToMarkdown("nothing", models.NewResults())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}
		if strings.Contains(string(data), "## Tracks") {
			t.Error("expected no section headings for empty results")
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText("artist one", sampleResults())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Results: 4") {
			t.Errorf("expected total count, got:\n%s", output)
		}
		if !strings.Contains(output, "1. Artist One - Song One  gmusic:track:Tabc") {
			t.Errorf("expected track line, got:\n%s", output)
		}
	})

	t.Run("Render", func(t *testing.T) {
		for _, f := range []Format{FormatText, FormatCSV, FormatMarkdown} {
			data, err := Render(f, "q", sampleResults())
			if err != nil {
				t.Errorf("Render(%s) failed: %v", f, err)
			}
			if len(data) == 0 {
				t.Errorf("Render(%s) produced no output", f)
			}
		}

		if _, err := Render(Format("xml"), "q", sampleResults()); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("HistoryToCSV", func(t *testing.T) {
		created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		records := []*models.QueryRecord{
			models.RestoreQueryRecord("id1", 7, "qid-1", models.QueryResolve, `"A" "B" "C"`, 1, 0, 0, created, created),
		}

		data, err := HistoryToCSV(records)
		if err != nil {
			t.Fatalf("HistoryToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Sequence,QID,Kind,Query,Tracks,Albums,Artists,Created") {
			t.Errorf("missing headers, got: %s", output)
		}
		if !strings.Contains(output, `7,qid-1,resolve,"""A"" ""B"" ""C""",1,0,0,2024-03-01T12:00:00Z`) {
			t.Errorf("unexpected row, got: %s", output)
		}
	})

	t.Run("WriteExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "results.csv")

		if err := WriteExport([]byte("hello"), path); err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if got := th.MustReadFile(t, path); got != "hello" {
			t.Errorf("unexpected file content %q", got)
		}

		if err := WriteExport([]byte("x"), ""); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}
