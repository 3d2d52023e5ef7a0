package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/csheth/mindsnack/internal/catalog"
	"github.com/csheth/mindsnack/internal/search"
)

type searchOptions struct {
	format   string
	category int
}

type searchResult struct {
	Category string        `json:"category"`
	Position int           `json:"position"`
	Models   []searchEntry `json:"models"`
}

type searchEntry struct {
	ID    string   `json:"id"`
	Name  string   `json:"model_name"`
	Title string   `json:"title"`
	TLDR  string   `json:"tldr"`
	Tags  []string `json:"tags"`
}

func newSearchCmd(opts *globalOptions) *cobra.Command {
	so := &searchOptions{}
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Print the cards matching a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if so.format != "text" && so.format != "json" {
				return fmt.Errorf("unknown format %q (want text or json)", so.format)
			}
			a, err := opts.load()
			if err != nil {
				return err
			}
			defer a.close()

			query := strings.Join(args, " ")
			view := search.Restrict(search.Filter(a.dataset.Categories(), query), so.category)
			results := toSearchResults(view)
			if so.format == "json" {
				return writeSearchJSON(cmd.OutOrStdout(), results)
			}
			return writeSearchText(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().StringVar(&so.format, "format", "text", "output format: text or json")
	cmd.Flags().IntVar(&so.category, "category", -1, "limit to one category by position (0-based, as in card ids)")
	return cmd
}

func toSearchResults(view []catalog.Category) []searchResult {
	results := make([]searchResult, 0, len(view))
	for _, category := range view {
		entry := searchResult{Category: category.Name, Position: category.Position}
		for _, mdl := range category.Models {
			payload := mdl.Resolve()
			tags := payload.Tags
			if tags == nil {
				tags = []string{}
			}
			entry.Models = append(entry.Models, searchEntry{
				ID:    mdl.CardID(),
				Name:  mdl.Name,
				Title: payload.Title,
				TLDR:  payload.TLDR,
				Tags:  tags,
			})
		}
		results = append(results, entry)
	}
	return results
}

func writeSearchJSON(w io.Writer, results []searchResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func writeSearchText(w io.Writer, results []searchResult) error {
	total := 0
	for _, result := range results {
		total += len(result.Models)
	}
	if total == 0 {
		_, err := fmt.Fprintln(w, "No models match.")
		return err
	}
	for _, result := range results {
		if _, err := fmt.Fprintf(w, "%s (%d)\n", result.Category, len(result.Models)); err != nil {
			return err
		}
		for _, entry := range result.Models {
			if _, err := fmt.Fprintf(w, "  %s  %s: %s\n", entry.ID, entry.Title, entry.TLDR); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w, "%d results\n", total)
	return err
}
