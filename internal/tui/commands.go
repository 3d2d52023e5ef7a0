package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/mindsnack/internal/catalog"
	"github.com/csheth/mindsnack/internal/progress"
)

type cardReadMsg struct {
	id    string
	added bool
}

type cardActionMsg struct {
	id   string
	kind jobKind
	err  error
}

type actionResetMsg struct {
	id   string
	kind jobKind
	gen  int
}

type categoryScrollMsg struct {
	category int
	gen      int
}

type progressChangedMsg struct{}

func markReadJob(store *progress.Store, id string) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		added := store.MarkRead(id)
		return cardReadMsg{id: id, added: added}, nil
	}
}

func copyJob(write func(string) error, id string, payload catalog.Payload) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		err := write(payload.CopyText())
		return cardActionMsg{id: id, kind: jobKindCopy, err: err}, err
	}
}

func shareJob(share func(string) error, id string, payload catalog.Payload) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		err := share(shareText(id, payload))
		return cardActionMsg{id: id, kind: jobKindShare, err: err}, err
	}
}

func shareText(id string, payload catalog.Payload) string {
	link := fmt.Sprintf("%s %s", shareCommand, id)
	if payload.Title == "" {
		return link
	}
	return payload.Title + "\n" + link
}

func actionResetCmd(delay time.Duration, id string, kind jobKind, gen int) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return actionResetMsg{id: id, kind: kind, gen: gen}
	})
}

func categoryScrollCmd(delay time.Duration, category, gen int) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return categoryScrollMsg{category: category, gen: gen}
	})
}

// progressSignal turns store notifications into a coalesced stream of
// progressChangedMsg values for the program loop.
type progressSignal struct {
	ch     chan struct{}
	cancel func()
}

func subscribeProgress(store *progress.Store) *progressSignal {
	sig := &progressSignal{ch: make(chan struct{}, 1)}
	sig.cancel = store.Subscribe(func() {
		select {
		case sig.ch <- struct{}{}:
		default:
		}
	})
	return sig
}

func (s *progressSignal) wait() tea.Cmd {
	return func() tea.Msg {
		<-s.ch
		return progressChangedMsg{}
	}
}

func (s *progressSignal) stop() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
