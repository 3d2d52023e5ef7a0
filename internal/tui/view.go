package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m *model) View() string {
	m.refreshViewportIfDirty()
	body := m.viewport.View()
	if m.helpVisible {
		body = m.helpView()
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		m.searchView(),
		m.resultsView(),
		m.tabsView(),
		body,
		m.statusView(),
		m.footerView(),
	)
}

func (m *model) headerView() string {
	total := m.config.Dataset.Total()
	brand := brandStyle.Render("MindSnack")
	bar := m.progressBar.ViewAs(progressRatio(m.readCount, total))
	label := helperStyle.Render(progressLabel(m.readCount, total))
	return lipgloss.JoinHorizontal(lipgloss.Center, brand, "  ", bar, "  ", label)
}

func progressRatio(read, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(read) / float64(total)
}

// progressLabel formats "read/total (pct%)" with the percentage rounded.
func progressLabel(read, total int) string {
	pct := 0
	if total > 0 {
		pct = int(math.Round(float64(read) / float64(total) * 100))
	}
	return fmt.Sprintf("%d/%d (%d%%)", read, total, pct)
}

func (m *model) searchView() string {
	if m.stage == stageSearch || m.query != "" {
		return m.searchInput.View()
	}
	return helperStyle.Render("/ search")
}

func (m *model) resultsView() string {
	if !m.searching() {
		return ""
	}
	return helperStyle.Render(fmt.Sprintf("%d results", m.resultCount()))
}

func (m *model) tabsView() string {
	categories := m.config.Dataset.Categories()
	tabs := make([]string, 0, len(categories)+1)
	tabs = append(tabs, m.renderTab("0", "All", m.activeCategory == noCategory))
	for i, category := range categories {
		shortcut := ""
		if i < 9 {
			shortcut = fmt.Sprintf("%d", i+1)
		}
		tabs = append(tabs, m.renderTab(shortcut, category.Name, m.activeCategory == i))
	}
	return lipgloss.NewStyle().MaxWidth(m.layout.windowWidthOr(m.viewport.Width)).Render(strings.Join(tabs, " "))
}

func (m *model) renderTab(shortcut, label string, active bool) string {
	text := label
	if shortcut != "" {
		text = shortcut + " " + label
	}
	if active {
		return activeTabStyle.Render(text)
	}
	return tabStyle.Render(text)
}

func (m *model) statusView() string {
	var parts []string
	if m.errorMessage != "" {
		parts = append(parts, errorStyle.Render(m.errorMessage))
	} else if m.infoMessage != "" {
		parts = append(parts, helperStyle.Render(m.infoMessage))
	}
	if m.scrollTopVisible {
		parts = append(parts, scrollTopStyle.Render("↑ g: top"))
	}
	return strings.Join(parts, "  ")
}

func (m *model) footerView() string {
	if m.stage == stageSearch {
		return m.help.View(searchKeyMap{keys: m.keys})
	}
	return m.help.View(m.keys)
}

func (m *model) helpView() string {
	lines := []string{
		sectionHeaderStyle.Render("Keyboard"),
		taglineStyle.Render(heroTagline),
		"",
		m.help.View(m.keys),
		"",
		helperStyle.Render("• typing after / filters live; enter keeps the results, esc clears them."),
		helperStyle.Render("• a category and a search combine: only matches inside the category show."),
		helperStyle.Render("• opening a card marks it read; c and s work on open cards."),
		helperStyle.Render("• press any key to close this panel."),
	}
	return helpBoxStyle.Render(strings.Join(lines, "\n"))
}

func (l pageLayout) windowWidthOr(fallback int) int {
	if l.windowWidth > 0 {
		return l.windowWidth
	}
	return fallback
}

var (
	sectionHeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	categoryHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor).Underline(true)
	errorStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helperStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	accentColor    = lipgloss.Color("#6366f1")
	accentAltColor = lipgloss.Color("#a855f7")
	amberColor     = lipgloss.Color("#f59e0b")

	brandStyle       = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	taglineStyle     = lipgloss.NewStyle().Foreground(accentAltColor).Italic(true)
	tabStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#374151")).Background(lipgloss.Color("#e5e7eb")).Padding(0, 1)
	activeTabStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(accentColor).Padding(0, 1)
	cardStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(0, 1)
	focusedCardStyle = lipgloss.NewStyle().Border(lipgloss.ThickBorder()).BorderForeground(accentAltColor).Padding(0, 1)
	cardTitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	tagStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#4338ca")).Background(lipgloss.Color("#e0e7ff")).Padding(0, 1)
	tldrLabelStyle   = lipgloss.NewStyle().Bold(true).Foreground(amberColor)
	tldrStyle        = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(amberColor).PaddingLeft(1)
	readBadgeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#a3be8c")).Italic(true)
	successStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#22c55e"))
	scrollTopStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(accentAltColor).Padding(0, 1)
	keyStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	helpBoxStyle     = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#7f5af0")).Padding(1, 2)
)
