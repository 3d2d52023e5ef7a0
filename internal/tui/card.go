package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/csheth/mindsnack/internal/catalog"
)

// cardState is the local state of a rendered card. It exists only while the
// card is part of the visible view.
type cardState struct {
	id       string
	expanded bool
	isRead   bool
	copied   bool
	shared   bool
	copyGen  int
	shareGen int
}

// mountCards creates state for newly visible cards and drops state for cards
// that left the view. New cards start from the stored progress; the last read
// card opens expanded and takes focus.
func (m *model) mountCards(visible []catalog.Model) {
	present := make(map[string]struct{}, len(visible))
	var fresh []string
	for _, mdl := range visible {
		id := mdl.CardID()
		present[id] = struct{}{}
		if _, ok := m.cards[id]; !ok {
			fresh = append(fresh, id)
		}
	}
	for id := range m.cards {
		if _, ok := present[id]; !ok {
			delete(m.cards, id)
		}
	}
	if len(fresh) == 0 {
		return
	}

	snap := m.config.Store.Snapshot()
	read := make(map[string]struct{}, len(snap.ReadCards))
	for _, id := range snap.ReadCards {
		read[id] = struct{}{}
	}
	for _, id := range fresh {
		_, isRead := read[id]
		state := &cardState{id: id, isRead: isRead}
		if snap.LastRead != "" && snap.LastRead == id {
			state.expanded = true
			if m.pendingFocusAnchor == "" {
				m.pendingFocusAnchor = id
				m.focusID = id
			}
		}
		m.cards[id] = state
	}
}

func (m *model) focusedCard() (catalog.Model, *cardState, bool) {
	m.refreshViewportIfDirty()
	if m.focusID == "" {
		return catalog.Model{}, nil, false
	}
	state, ok := m.cards[m.focusID]
	if !ok {
		return catalog.Model{}, nil, false
	}
	mdl, ok := m.config.Dataset.Lookup(m.focusID)
	if !ok {
		return catalog.Model{}, nil, false
	}
	return mdl, state, true
}

// expandFocused opens the focused card and marks it read. Cards only ever go
// from collapsed to expanded.
func (m *model) expandFocused() tea.Cmd {
	_, state, ok := m.focusedCard()
	if !ok {
		return nil
	}
	if state.expanded {
		m.infoMessage = "Card already open. Press c to copy or s to share."
		return nil
	}
	state.expanded = true
	state.isRead = true
	m.markViewportDirty()
	return m.jobs.Start(jobKindMarkRead, markReadJob(m.config.Store, state.id))
}

func (m *model) copyFocused() tea.Cmd {
	mdl, state, ok := m.focusedCard()
	if !ok || !state.expanded {
		m.infoMessage = "Open a card with enter before copying."
		return nil
	}
	return m.jobs.Start(jobKindCopy, copyJob(m.config.Clipboard, state.id, mdl.Resolve()))
}

func (m *model) shareFocused() tea.Cmd {
	mdl, state, ok := m.focusedCard()
	if !ok || !state.expanded {
		m.infoMessage = "Open a card with enter before sharing."
		return nil
	}
	return m.jobs.Start(jobKindShare, shareJob(m.config.Share, state.id, mdl.Resolve()))
}

// handleCardAction shows the success badge for a finished copy or share. A
// failure leaves the card unchanged.
func (m *model) handleCardAction(msg cardActionMsg) tea.Cmd {
	if msg.err != nil {
		m.logger.Warn("card action failed",
			zap.String("card", msg.id),
			zap.String("action", string(msg.kind)),
			zap.Error(msg.err))
		return nil
	}
	state, ok := m.cards[msg.id]
	if !ok {
		return nil
	}
	m.timerGen++
	switch msg.kind {
	case jobKindCopy:
		state.copied = true
		state.copyGen = m.timerGen
	case jobKindShare:
		state.shared = true
		state.shareGen = m.timerGen
	default:
		return nil
	}
	m.markViewportDirty()
	return actionResetCmd(m.config.CopyReset, msg.id, msg.kind, m.timerGen)
}

// handleActionReset clears a badge unless the card was unmounted or a newer
// action replaced the timer.
func (m *model) handleActionReset(msg actionResetMsg) {
	state, ok := m.cards[msg.id]
	if !ok {
		return
	}
	switch msg.kind {
	case jobKindCopy:
		if state.copyGen != msg.gen {
			return
		}
		state.copied = false
	case jobKindShare:
		if state.shareGen != msg.gen {
			return
		}
		state.shared = false
	}
	m.markViewportDirty()
}

// syncReadFlags refreshes the read badge of mounted cards after an external
// change to the progress store.
func (m *model) syncReadFlags() {
	if len(m.cards) == 0 {
		return
	}
	snap := m.config.Store.Snapshot()
	read := make(map[string]struct{}, len(snap.ReadCards))
	for _, id := range snap.ReadCards {
		read[id] = struct{}{}
	}
	for id, state := range m.cards {
		_, isRead := read[id]
		if isRead != state.isRead {
			state.isRead = isRead
			m.markViewportDirty()
		}
	}
}
