package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	derrors "git.home.luguber.info/inful/docpress/internal/errors"
	"git.home.luguber.info/inful/docpress/internal/history"
)

const historyTimeLayout = "2006-01-02 15:04:05"

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int `short:"l" help:"Number of builds to show" default:"10"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if cfg.HistoryDB == "" {
		return derrors.ConfigRequired("history_db")
	}

	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return derrors.ExternalFailed("history", err).WithContext("path", cfg.HistoryDB)
	}
	defer func() { _ = store.Close() }()

	entries, err := store.Recent(context.Background(), h.Limit)
	if err != nil {
		return derrors.ExternalFailed("history", err).WithContext("path", cfg.HistoryDB)
	}

	tw := tabwriter.NewWriter(g.stdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STARTED\tMODE\tOUTCOME\tWORK\tPUBLISHED\tFAILED\tSTALE\tDURATION\tNEWEST")
	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\t%s\n",
			e.StartedAt.Local().Format(historyTimeLayout), e.Mode, e.Outcome,
			e.Work, e.Published, e.Failed, e.StaleRemoved, e.Duration, e.Newest)
	}
	return tw.Flush()
}
