package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/gmusic/internal/formatter"
	"github.com/desertthunder/gmusic/internal/models"
	"github.com/desertthunder/gmusic/internal/resolver"
	"github.com/desertthunder/gmusic/internal/server"
	"github.com/desertthunder/gmusic/internal/shared"
	"github.com/desertthunder/gmusic/internal/ui"
	"github.com/urfave/cli/v3"
)

// Search queries the catalog directly and prints every result list.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}
	if !r.client.Credentials().Configured() {
		return fmt.Errorf("%w: email and password are required", shared.ErrNotConfigured)
	}

	maxResults := cmd.Int("max")
	if maxResults < 0 {
		return fmt.Errorf("%w: --max must not be negative", shared.ErrInvalidFlag)
	}

	observers, cleanup := r.historyObservers()
	defer cleanup()

	r.logger.Debug("searching", "query", query, "max", maxResults)

	results, err := r.client.Search(ctx, query, maxResults)
	rec := models.NewQueryRecord(shared.GenerateID(), models.QuerySearch, query, results)
	for _, observe := range observers {
		observe(rec, err)
	}
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(results, cmd.Bool("pretty"))
	}

	return r.render(cmd.String("format"), cmd.String("output"), query, results)
}

func (r *Runner) render(format, output, query string, results *models.Results) error {
	if format == "table" && output == "" {
		if results.Len() == 0 {
			return r.writePlain("%s\n", ui.Styles.Warn("No results"))
		}
		return r.writePlain("%s\n", ui.ResultsTable(results))
	}
	if format == "table" {
		format = string(formatter.FormatText)
	}

	f, err := formatter.ParseFormat(format)
	if err != nil {
		return err
	}

	data, err := formatter.Render(f, query, results)
	if err != nil {
		return err
	}

	if output == "" {
		return r.writePlain("%s", data)
	}
	if err := formatter.WriteExport(data, output); err != nil {
		return err
	}
	return r.writePlain("✓ Wrote %d results to %s\n", results.Len(), output)
}

// Resolve runs a resolve through the resolver, the way a host would, and prints the matched track.
func (r *Runner) Resolve(ctx context.Context, cmd *cli.Command) error {
	artist, album, title := cmd.String("artist"), cmd.String("album"), cmd.String("title")
	if artist == "" && album == "" && title == "" {
		return fmt.Errorf("%w: one of --artist, --album or --title", shared.ErrMissingArgument)
	}

	collector := server.NewCollector()
	observers, cleanup := r.historyObservers()
	defer cleanup()

	res, err := r.newResolver(collector, append(observers, collector.Observe)...)
	if err != nil {
		return err
	}
	defer res.Close()

	res.Init(ctx)
	if !res.Configured() {
		return fmt.Errorf("%w: email and password are required", shared.ErrNotConfigured)
	}

	qid := shared.GenerateID()
	done := collector.Begin(qid)
	res.Resolve(qid, artist, album, title)

	select {
	case <-done:
	case <-ctx.Done():
		collector.Finish(qid)
		return ctx.Err()
	}

	results := collector.Finish(qid)

	if cmd.Bool("json") {
		return r.writeJSON(results.Tracks, cmd.Bool("pretty"))
	}

	if len(results.Tracks) == 0 {
		return r.writePlain("%s\n", ui.Styles.Warn("No match for "+resolver.BuildResolveQuery(artist, album, title)))
	}

	track := results.Tracks[0]
	r.writePlain("%s\n", ui.Styles.OK("✓ "+models.Deref(track.Artist)+" - "+models.Deref(track.Track)))
	if album := models.Deref(track.Album); album != "" {
		r.writePlain("Album: %s\n", album)
	}
	if d := shared.FormatDuration(models.Deref(track.Duration)); d != "" {
		r.writePlain("Length: %s\n", d)
	}
	return r.writePlain("URL: %s\n", track.URL)
}
