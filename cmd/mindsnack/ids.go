package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/csheth/mindsnack/internal/catalog"
)

func newIDsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ids",
		Short: "List every card id, for use with browse --card",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load()
			if err != nil {
				return err
			}
			defer a.close()
			return writeIDs(cmd.OutOrStdout(), a.dataset)
		},
	}
}

func writeIDs(w io.Writer, ds *catalog.Dataset) error {
	for _, category := range ds.Categories() {
		for _, mdl := range category.Models {
			if _, err := fmt.Fprintf(w, "%s\t%s\n", mdl.CardID(), mdl.ResolvedTitle()); err != nil {
				return err
			}
		}
	}
	return nil
}
