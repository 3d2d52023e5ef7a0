package main

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/csheth/mindsnack/internal/catalog"
	"github.com/csheth/mindsnack/internal/progress"
)

func newProgressCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Show how many cards you have read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load()
			if err != nil {
				return err
			}
			defer a.close()

			store := a.openStore()
			defer store.Close()
			return writeProgress(cmd.OutOrStdout(), a.dataset, store)
		},
	}
}

func writeProgress(w io.Writer, ds *catalog.Dataset, store *progress.Store) error {
	total := ds.Total()
	read := store.CountRead(ds.CardIDs())
	if total == 0 {
		_, err := fmt.Fprintln(w, "Read 0/0 (0%)\nThe dataset has no cards.")
		return err
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Read"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetRenderBlankState(true),
	)
	if err := bar.Set(read); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	for _, category := range ds.Categories() {
		ids := make([]string, 0, len(category.Models))
		for _, mdl := range category.Models {
			ids = append(ids, mdl.CardID())
		}
		if _, err := fmt.Fprintf(w, "  %s: %d/%d\n", category.Name, store.CountRead(ids), len(ids)); err != nil {
			return err
		}
	}

	last, ok := store.LastRead()
	if !ok {
		_, err := fmt.Fprintln(w, "No card opened yet.")
		return err
	}
	title := last
	if mdl, found := ds.Lookup(last); found {
		title = fmt.Sprintf("%s (%s)", mdl.ResolvedTitle(), last)
	}
	_, err := fmt.Fprintf(w, "Last read: %s\n", title)
	return err
}
