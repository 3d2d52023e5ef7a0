package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"go.uber.org/zap"

	"github.com/csheth/mindsnack/internal/catalog"
)

type pageLayout struct {
	windowWidth    int
	windowHeight   int
	viewportWidth  int
	viewportHeight int
}

func newPageLayout() pageLayout {
	return pageLayout{
		viewportWidth:  80,
		viewportHeight: 20,
	}
}

func (l *pageLayout) Update(width, height int) {
	l.windowWidth = width
	l.windowHeight = height
	innerWidth := width - viewportHorizontalPadding
	if innerWidth < minViewportWidth {
		innerWidth = minViewportWidth
	}
	l.viewportWidth = innerWidth
	contentHeight := height - headerHeight - footerHeight
	if contentHeight < 5 {
		contentHeight = 5
	}
	l.viewportHeight = contentHeight
}

type lineSpan struct {
	start int
	end   int
}

type displayView struct {
	content   string
	lines     int
	anchors   map[string]int
	cardSpans map[string]lineSpan
	cardOrder []string
}

type contentBuilder struct {
	builder strings.Builder
	lines   int
}

func (cb *contentBuilder) WriteString(s string) {
	cb.builder.WriteString(s)
	cb.lines += strings.Count(s, "\n")
}

func (cb *contentBuilder) WriteRune(r rune) {
	cb.builder.WriteRune(r)
	if r == '\n' {
		cb.lines++
	}
}

func (cb *contentBuilder) String() string {
	return cb.builder.String()
}

func (cb *contentBuilder) Line() int {
	return cb.lines
}

func (m *model) buildContent(categories []catalog.Category) displayView {
	cb := &contentBuilder{}
	view := displayView{
		anchors:   map[string]int{},
		cardSpans: map[string]lineSpan{},
	}

	if len(categories) == 0 {
		cb.WriteString(sectionHeaderStyle.Render("Nothing to show"))
		cb.WriteRune('\n')
		if m.searching() {
			cb.WriteString(helperStyle.Render(fmt.Sprintf("No models match %q. Press esc to clear the search.", m.query)))
		} else {
			cb.WriteString(helperStyle.Render("This dataset has no models."))
		}
		cb.WriteRune('\n')
		view.content = cb.String()
		view.lines = cb.Line()
		return view
	}

	for idx, category := range categories {
		if idx > 0 {
			cb.WriteRune('\n')
		}
		view.anchors[catalog.CategoryAnchor(category.Position)] = cb.Line()
		cb.WriteString(categoryHeaderStyle.Render(category.Name))
		cb.WriteRune('\n')
		cb.WriteString(helperStyle.Render(modelCountLabel(len(category.Models))))
		cb.WriteRune('\n')
		cb.WriteRune('\n')
		for _, mdl := range category.Models {
			id := mdl.CardID()
			start := cb.Line()
			view.anchors[id] = start
			cb.WriteString(m.renderCard(mdl))
			cb.WriteRune('\n')
			view.cardSpans[id] = lineSpan{start: start, end: cb.Line()}
			view.cardOrder = append(view.cardOrder, id)
		}
	}
	view.content = cb.String()
	view.lines = cb.Line()
	return view
}

func modelCountLabel(n int) string {
	if n == 1 {
		return "1 mental model"
	}
	return fmt.Sprintf("%d mental models", n)
}

func (m *model) renderCard(mdl catalog.Model) string {
	id := mdl.CardID()
	state := m.cards[id]
	if state == nil {
		state = &cardState{id: id}
	}
	payload := mdl.Resolve()
	inner := m.wrapWidth(4)

	var lines []string
	title := cardTitleStyle.Render(wordwrap.String(payload.Title, inner))
	if state.isRead {
		title += "  " + readBadgeStyle.Render("✓ read")
	}
	lines = append(lines, title)
	if mdl.Name != "" {
		lines = append(lines, helperStyle.Render(mdl.Name))
	}
	if len(payload.Tags) > 0 {
		tags := make([]string, 0, len(payload.Tags))
		for _, tag := range payload.Tags {
			tags = append(tags, tagStyle.Render(tag))
		}
		lines = append(lines, wordwrap.String(strings.Join(tags, " "), inner))
	}
	lines = append(lines, "")
	lines = append(lines, tldrLabelStyle.Render("TL;DR"))
	lines = append(lines, tldrStyle.Render(wordwrap.String(payload.TLDR, inner-2)))

	if state.expanded {
		lines = append(lines, "")
		if body := m.markdown.Render(id, payload.Content, inner); body != "" {
			lines = append(lines, body)
			lines = append(lines, "")
		}
		lines = append(lines, m.cardActions(state))
	} else {
		lines = append(lines, helperStyle.Render("enter: read more"))
	}

	style := cardStyle
	if id == m.focusID {
		style = focusedCardStyle
	}
	return style.Width(m.wrapWidth(2)).Render(strings.Join(lines, "\n"))
}

func (m *model) cardActions(state *cardState) string {
	copyLabel := keyStyle.Render("c") + keyDescStyle.Render(" Copy")
	if state.copied {
		copyLabel = successStyle.Render("✓ Copied!")
	}
	shareLabel := keyStyle.Render("s") + keyDescStyle.Render(" Share")
	if state.shared {
		shareLabel = successStyle.Render("✓ Shared!")
	}
	return copyLabel + "   " + shareLabel
}

func (m *model) markViewportDirty() {
	m.viewportDirty = true
}

func (m *model) refreshViewportIfDirty() {
	if m.viewportDirty {
		m.refreshViewport()
	}
}

func (m *model) refreshViewport() {
	m.viewportDirty = false
	prevYOffset := m.viewport.YOffset

	visible := m.visibleCategories()
	var models []catalog.Model
	for _, category := range visible {
		models = append(models, category.Models...)
	}
	m.mountCards(models)
	m.ensureFocus(models)

	view := m.buildContent(visible)
	m.anchors = view.anchors
	m.cardSpans = view.cardSpans
	m.cardOrder = view.cardOrder
	m.lineCount = view.lines
	m.viewport.SetContent(view.content)

	target := prevYOffset
	if m.pendingFocusAnchor != "" {
		if line, ok := view.anchors[m.pendingFocusAnchor]; ok {
			target = line
		} else {
			m.logger.Debug("focus anchor not in view", zap.String("anchor", m.pendingFocusAnchor))
		}
		m.pendingFocusAnchor = ""
	}
	m.viewport.SetYOffset(m.clampYOffset(target))
	m.updateScrollTop()
}

func (m *model) ensureFocus(models []catalog.Model) {
	for _, mdl := range models {
		if mdl.CardID() == m.focusID {
			return
		}
	}
	if len(models) == 0 {
		m.focusID = ""
		return
	}
	m.focusID = models[0].CardID()
}

func (m *model) moveFocus(delta int) {
	m.refreshViewportIfDirty()
	if len(m.cardOrder) == 0 {
		return
	}
	idx := 0
	for i, id := range m.cardOrder {
		if id == m.focusID {
			idx = i
			break
		}
	}
	target := idx + delta
	if target < 0 {
		target = 0
	}
	if target >= len(m.cardOrder) {
		target = len(m.cardOrder) - 1
	}
	if m.cardOrder[target] == m.focusID {
		return
	}
	m.focusID = m.cardOrder[target]
	m.markViewportDirty()
	m.refreshViewportIfDirty()
	m.ensureCardVisible(m.focusID)
}

func (m *model) ensureCardVisible(id string) {
	span, ok := m.cardSpans[id]
	if !ok {
		return
	}
	top := m.viewport.YOffset
	bottom := top + m.viewport.Height
	switch {
	case span.start < top:
		m.viewport.SetYOffset(m.clampYOffset(span.start))
	case span.end > bottom:
		target := span.end - m.viewport.Height
		if target > span.start {
			target = span.start
		}
		m.viewport.SetYOffset(m.clampYOffset(target))
	}
	m.updateScrollTop()
}

func (m *model) scrollToTop() {
	m.refreshViewportIfDirty()
	m.viewport.SetYOffset(0)
	if len(m.cardOrder) > 0 && m.focusID != m.cardOrder[0] {
		m.focusID = m.cardOrder[0]
		m.markViewportDirty()
		m.refreshViewportIfDirty()
	}
	m.updateScrollTop()
	m.infoMessage = "Jumped to top."
}

func (m *model) scrollToBottom() {
	m.refreshViewportIfDirty()
	if n := len(m.cardOrder); n > 0 && m.focusID != m.cardOrder[n-1] {
		m.focusID = m.cardOrder[n-1]
		m.markViewportDirty()
		m.refreshViewportIfDirty()
	}
	m.viewport.SetYOffset(m.clampYOffset(m.lineCount))
	m.updateScrollTop()
	m.infoMessage = "Jumped to bottom."
}

func (m *model) wrapWidth(padding int) int {
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}
	if padding < 0 {
		padding = 0
	}
	available := width - padding
	if available < 20 {
		available = 20
	}
	return available
}

func (m *model) clampYOffset(offset int) int {
	maxOffset := m.lineCount - m.viewport.Height
	if m.viewport.Height <= 0 {
		maxOffset = m.lineCount - 1
	}
	if maxOffset < 0 {
		maxOffset = 0
	}
	if offset < 0 {
		return 0
	}
	if offset > maxOffset {
		return maxOffset
	}
	return offset
}
