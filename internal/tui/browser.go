package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/mindsnack/internal/catalog"
	"github.com/csheth/mindsnack/internal/search"
)

// selectCategory restricts the view to category i, clears the search and
// schedules a scroll to the category once the new layout is in place.
func (m *model) selectCategory(i int) tea.Cmd {
	categories := m.config.Dataset.Categories()
	if i < 0 || i >= len(categories) {
		return nil
	}
	m.activeCategory = i
	m.clearQuery()
	m.scrollGen++
	m.markViewportDirty()
	m.infoMessage = fmt.Sprintf("Showing %s.", categories[i].Name)
	return categoryScrollCmd(m.config.CategoryScrollDelay, i, m.scrollGen)
}

func (m *model) selectAll() {
	m.activeCategory = noCategory
	m.clearQuery()
	m.scrollGen++
	m.markViewportDirty()
	m.infoMessage = "Showing all categories."
}

func (m *model) cycleCategory(delta int) tea.Cmd {
	count := len(m.config.Dataset.Categories())
	if count == 0 {
		return nil
	}
	// Positions run -1 (all) through count-1.
	next := m.activeCategory + delta
	switch {
	case next < noCategory:
		next = count - 1
	case next >= count:
		next = noCategory
	}
	if next == noCategory {
		m.selectAll()
		return nil
	}
	return m.selectCategory(next)
}

// setQuery replaces the search text. The active category is kept.
func (m *model) setQuery(q string) {
	if q == m.query {
		return
	}
	m.query = q
	m.markViewportDirty()
}

func (m *model) clearQuery() {
	m.query = ""
	m.searchInput.SetValue("")
}

// handleCategoryScroll applies a deferred category scroll unless a newer
// selection superseded it.
func (m *model) handleCategoryScroll(msg categoryScrollMsg) {
	if msg.gen != m.scrollGen || msg.category != m.activeCategory {
		return
	}
	m.pendingFocusAnchor = catalog.CategoryAnchor(msg.category)
	m.markViewportDirty()
	m.refreshViewportIfDirty()
}

// visibleCategories is the filtered dataset intersected with the active
// category.
func (m *model) visibleCategories() []catalog.Category {
	return search.Restrict(m.memo.Filter(m.config.Dataset, m.query), m.activeCategory)
}

func (m *model) recomputeReadCount() {
	m.readCount = m.config.Store.CountRead(m.allIDs)
}

func (m *model) updateScrollTop() {
	m.scrollTopVisible = m.viewport.YOffset > m.config.ScrollTopThreshold
}

func (m *model) searching() bool {
	return m.query != ""
}
