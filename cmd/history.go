package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/gmusic/internal/formatter"
	"github.com/desertthunder/gmusic/internal/models"
	"github.com/desertthunder/gmusic/internal/shared"
	"github.com/desertthunder/gmusic/internal/ui"
	"github.com/urfave/cli/v3"
)

// HistoryList prints recent queries from the query log.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	criteria := map[string]any{"limit": cmd.Int("limit")}

	switch kind := models.QueryKind(cmd.String("kind")); kind {
	case "":
	case models.QuerySearch, models.QueryResolve:
		criteria["kind"] = kind
	default:
		return fmt.Errorf("%w: --kind must be search or resolve, got %q", shared.ErrInvalidFlag, kind)
	}

	repo, db, err := r.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := repo.List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("csv") {
		data, err := formatter.HistoryToCSV(records)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	}

	if len(records) == 0 {
		return r.writePlain("%s\n", ui.Styles.Warn("No queries recorded"))
	}
	return r.writePlain("%s\n", ui.HistoryTable(records))
}

// HistoryClear removes every entry from the query log.
func (r *Runner) HistoryClear(ctx context.Context, cmd *cli.Command) error {
	repo, db, err := r.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := repo.Clear()
	if err != nil {
		return err
	}

	r.logger.Info("history cleared", "entries", n)
	return r.writePlain("✓ Removed %d entries\n", n)
}
