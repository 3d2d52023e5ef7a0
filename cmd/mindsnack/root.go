package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	browse := &browseOptions{}

	root := &cobra.Command{
		Use:   "mindsnack",
		Short: "Browse bite-sized mental models in the terminal",
		Long: `MindSnack groups short mental-model cards by category, lets you search
them, and remembers which cards you have read.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, opts, browse)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "mindsnack.yaml", "config file path")
	root.PersistentFlags().StringVar(&opts.datasetPath, "dataset", "", "dataset file (.json, .yaml); the bundled sample when empty")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "write debug logs")
	bindBrowseFlags(root, browse)

	root.AddCommand(
		newBrowseCmd(opts),
		newSearchCmd(opts),
		newProgressCmd(opts),
		newIDsCmd(opts),
	)
	return root
}
