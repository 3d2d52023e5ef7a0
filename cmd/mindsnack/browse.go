package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/csheth/mindsnack/internal/config"
	"github.com/csheth/mindsnack/internal/progress"
	"github.com/csheth/mindsnack/internal/tui"
)

type browseOptions struct {
	card        string
	noAltScreen bool
	ephemeral   bool
}

func bindBrowseFlags(cmd *cobra.Command, b *browseOptions) {
	cmd.Flags().StringVar(&b.card, "card", "", "focus a card id on start, eg. card-0-3-first-principles")
	cmd.Flags().BoolVar(&b.noAltScreen, "no-alt-screen", false, "disable the alternate screen buffer")
	cmd.Flags().BoolVar(&b.ephemeral, "ephemeral", false, "keep read progress in memory only")
}

func newBrowseCmd(opts *globalOptions) *cobra.Command {
	browse := &browseOptions{}
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Open the card browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, opts, browse)
		},
	}
	bindBrowseFlags(cmd, browse)
	return cmd
}

func runBrowse(cmd *cobra.Command, opts *globalOptions, browse *browseOptions) error {
	a, err := opts.load()
	if err != nil {
		return err
	}
	defer a.close()

	if browse.ephemeral {
		a.cfg.Storage.Backend = config.BackendMemory
	}
	store := a.openStore()
	defer store.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	if a.cfg.Storage.Backend == config.BackendFile && a.cfg.Storage.Watch {
		startWatcher(ctx, a, store)
	}

	out := termenv.NewOutput(os.Stdout, termenv.WithColorCache(true))
	programOpts := []tea.ProgramOption{tea.WithOutput(out), tea.WithMouseCellMotion()}
	if a.cfg.UI.AltScreen && !browse.noAltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	program := tea.NewProgram(
		tui.New(tui.Config{
			Dataset:             a.dataset,
			Store:               store,
			Logger:              a.logger,
			Output:              out,
			InitialCard:         browse.card,
			ScrollTopThreshold:  a.cfg.UI.ScrollTopThreshold,
			CategoryScrollDelay: a.cfg.UI.CategoryScrollDelay,
			CopyReset:           a.cfg.UI.CopyReset,
		}),
		programOpts...,
	)

	a.logger.Info("browser started", zap.Int("cards", a.dataset.Total()))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}

// startWatcher reloads progress written by other mindsnack processes. The
// browser still works when watching is unavailable.
func startWatcher(ctx context.Context, a *app, store *progress.Store) {
	path := a.cfg.Storage.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		a.logger.Warn("progress watcher disabled", zap.Error(err))
		return
	}
	w := progress.NewWatcher(path, func() { store.Refresh() }, progress.WithWatchLogger(a.logger))
	if err := w.Start(ctx); err != nil {
		a.logger.Warn("progress watcher disabled", zap.Error(err))
	}
}
