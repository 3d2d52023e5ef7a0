package tui

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/mindsnack/internal/catalog"
	"github.com/csheth/mindsnack/internal/progress"
)

func fixtureDataset() *catalog.Dataset {
	return catalog.NewDataset([]catalog.Category{
		{Name: "Thinking", Models: []catalog.Model{
			{Name: "First Principles", Properties: &catalog.Properties{
				Title:   "First Principles",
				Content: "Break a problem into its fundamental truths.",
				TLDR:    "Reason up from fundamentals",
				Tags:    []string{"reasoning"},
			}},
			{Name: "Inversion", Title: "Inversion", Content: "Think backwards from failure.", TLDR: "Avoid stupidity", Tags: []string{"reasoning", "risk"}},
		}},
		{Name: "Systems", Models: []catalog.Model{
			{Name: "Feedback Loops", Title: "Feedback Loops", Content: "Outputs feed back into inputs.", TLDR: "Loops amplify or balance", Tags: []string{"systems"}},
		}},
		{Name: "Economics", Models: []catalog.Model{
			{Name: "Opportunity Cost", Title: "Opportunity Cost", Content: "Every choice forgoes another.", TLDR: "Price of the next best option", Tags: []string{"decisions", "risk"}},
		}},
	})
}

func largeDataset(categories, perCategory int) *catalog.Dataset {
	var cats []catalog.Category
	for c := 0; c < categories; c++ {
		var models []catalog.Model
		for i := 0; i < perCategory; i++ {
			name := fmt.Sprintf("Model %d %d", c, i)
			models = append(models, catalog.Model{
				Name:    name,
				Title:   name,
				Content: "Body",
				TLDR:    "Summary line",
				Tags:    []string{"tag"},
			})
		}
		cats = append(cats, catalog.Category{Name: fmt.Sprintf("Category %d", c), Models: models})
	}
	return catalog.NewDataset(cats)
}

func newTestModel(t *testing.T) *model {
	t.Helper()
	return newTestModelWith(t, Config{Dataset: fixtureDataset()})
}

func newTestModelWith(t *testing.T, cfg Config) *model {
	t.Helper()
	if cfg.Store == nil {
		cfg.Store = progress.NewStore(progress.NewMemoryBackend())
	}
	if cfg.Clipboard == nil {
		cfg.Clipboard = func(string) error { return nil }
	}
	if cfg.Share == nil {
		cfg.Share = func(string) error { return nil }
	}
	m := newModel(cfg)
	t.Cleanup(m.signal.stop)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m.View()
	return m
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func typeText(m *model, text string) {
	for _, r := range text {
		m.Update(runeKey(r))
	}
}

// runJob executes a job command and feeds its result back into the model.
func runJob(t *testing.T, m *model, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a job command")
	}
	msg := cmd()
	if _, ok := msg.(jobResultEnvelope); !ok {
		t.Fatalf("job returned %T, want jobResultEnvelope", msg)
	}
	_, next := m.Update(msg)
	return next
}

// deliverProgress feeds the pending store notification to the model.
func deliverProgress(t *testing.T, m *model) {
	t.Helper()
	select {
	case <-m.signal.ch:
		m.Update(progressChangedMsg{})
	default:
		t.Fatal("expected a progress notification")
	}
}

func TestReadProgressEndToEnd(t *testing.T) {
	store := progress.NewStore(progress.NewMemoryBackend())
	m := newTestModelWith(t, Config{Dataset: fixtureDataset(), Store: store})

	if m.readCount != 0 {
		t.Fatalf("initial read count got %d want 0", m.readCount)
	}
	if m.focusID != "card-0-0-first-principles" {
		t.Fatalf("initial focus got %q", m.focusID)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	runJob(t, m, cmd)
	deliverProgress(t, m)
	if m.readCount != 1 {
		t.Fatalf("read count after first expand got %d want 1", m.readCount)
	}

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Fatal("expanding an open card should not run a job")
	}

	m.Update(runeKey('j'))
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	runJob(t, m, cmd)
	deliverProgress(t, m)

	m.Update(runeKey('j'))
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	runJob(t, m, cmd)
	deliverProgress(t, m)

	want := store.CountRead(m.config.Dataset.CardIDs())
	if m.readCount != 3 || m.readCount != want {
		t.Fatalf("read count got %d, store reports %d, want 3", m.readCount, want)
	}
	if !store.WasLastRead("card-1-0-feedback-loops") {
		t.Fatal("last read should be the most recently expanded card")
	}
	if got := progressLabel(m.readCount, m.config.Dataset.Total()); got != "3/4 (75%)" {
		t.Fatalf("progress label got %q", got)
	}
}

func TestReadProgressScenarioTwoCategories(t *testing.T) {
	ds := catalog.NewDataset([]catalog.Category{
		{Name: "A", Models: []catalog.Model{
			{Name: "Alpha One", Title: "Alpha One", Content: "First body", TLDR: "first"},
			{Name: "Alpha Two", Title: "Alpha Two", Content: "Second body", TLDR: "second"},
		}},
		{Name: "B", Models: []catalog.Model{
			{Name: "Beta", Title: "Beta", Content: "Third body", TLDR: "third"},
		}},
	})
	store := progress.NewStore(progress.NewMemoryBackend())
	m := newTestModelWith(t, Config{Dataset: ds, Store: store})

	if m.readCount != 0 || !strings.Contains(m.View(), "0/3 (0%)") {
		t.Fatalf("initial read count got %d want 0", m.readCount)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	runJob(t, m, cmd)
	deliverProgress(t, m)
	if m.readCount != 1 || !strings.Contains(m.View(), "1/3 (33%)") {
		t.Fatalf("read count after expanding A[0] got %d want 1", m.readCount)
	}

	remounted := newTestModelWith(t, Config{Dataset: ds, Store: store})
	if remounted.readCount != 1 {
		t.Fatalf("remounted read count got %d want 1", remounted.readCount)
	}
	if state := remounted.cards["card-0-0-alpha-one"]; state == nil || !state.expanded || !state.isRead {
		t.Fatalf("last read card should mount expanded and read, got %+v", state)
	}

	remounted.Update(runeKey('/'))
	typeText(remounted, "nonexistent-term")
	if got := remounted.visibleCategories(); len(got) != 0 {
		t.Fatalf("got %d categories want 0", len(got))
	}

	remounted.Update(tea.KeyMsg{Type: tea.KeyEsc})
	visible := remounted.visibleCategories()
	if len(visible) != 2 || visible[0].Name != "A" || visible[1].Name != "B" {
		t.Fatalf("cleared query should restore A then B, got %+v", visible)
	}
	if remounted.readCount != 1 {
		t.Fatalf("searching changed the read count to %d", remounted.readCount)
	}
}

func TestExternalProgressChangeUpdatesCounter(t *testing.T) {
	backend := progress.NewMemoryBackend()
	store := progress.NewStore(backend)
	m := newTestModelWith(t, Config{Dataset: fixtureDataset(), Store: store})

	progress.NewStore(backend).MarkRead("card-2-0-opportunity-cost")
	if !store.Refresh() {
		t.Fatal("refresh should detect the external write")
	}
	deliverProgress(t, m)
	if m.readCount != 1 {
		t.Fatalf("read count got %d want 1", m.readCount)
	}
	if state := m.cards["card-2-0-opportunity-cost"]; state == nil || !state.isRead {
		t.Fatal("mounted card should pick up the external read flag")
	}
}

func TestCategoryAndQueryCompose(t *testing.T) {
	m := newTestModel(t)

	if cmd := m.selectCategory(0); cmd == nil {
		t.Fatal("selecting a category should schedule a scroll")
	}
	m.setQuery("risk")
	visible := m.visibleCategories()
	if len(visible) != 1 || visible[0].Position != 0 || len(visible[0].Models) != 1 {
		t.Fatalf("unexpected view %+v", visible)
	}
	if visible[0].Models[0].Name != "Inversion" {
		t.Fatalf("got %q want Inversion", visible[0].Models[0].Name)
	}

	m.selectCategory(1)
	if m.query != "" {
		t.Fatalf("selecting a category should clear the query, got %q", m.query)
	}
	m.setQuery("risk")
	if got := m.visibleCategories(); len(got) != 0 {
		t.Fatalf("category without matches should show nothing, got %d categories", len(got))
	}

	m.selectAll()
	if m.activeCategory != noCategory || m.query != "" {
		t.Fatalf("selectAll should reset state, got category %d query %q", m.activeCategory, m.query)
	}
	m.setQuery("risk")
	if got := m.resultCount(); got != 2 {
		t.Fatalf("results got %d want 2", got)
	}
	if m.activeCategory != noCategory {
		t.Fatal("setQuery must not change the active category")
	}
}

func TestFilterMemoSkipsUnrelatedUpdates(t *testing.T) {
	m := newTestModel(t)
	m.setQuery("loop")
	m.View()
	misses := m.memo.Misses()

	m.Update(runeKey('?'))
	m.Update(runeKey('?'))
	m.Update(runeKey('j'))
	m.markViewportDirty()
	m.View()
	if got := m.memo.Misses(); got != misses {
		t.Fatalf("memo recomputed on unrelated state: %d -> %d", misses, got)
	}

	m.setQuery("risk")
	m.View()
	if got := m.memo.Misses(); got != misses+1 {
		t.Fatalf("memo misses got %d want %d", got, misses+1)
	}
}

func TestSearchStageFiltersLive(t *testing.T) {
	m := newTestModel(t)

	m.Update(runeKey('/'))
	if m.stage != stageSearch {
		t.Fatalf("stage got %v want %v", m.stage, stageSearch)
	}
	typeText(m, "risk")
	if m.query != "risk" {
		t.Fatalf("query got %q want risk", m.query)
	}
	if got := m.resultCount(); got != 2 {
		t.Fatalf("live results got %d want 2", got)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.stage != stageBrowse || m.query != "risk" {
		t.Fatalf("enter should keep the query, stage %v query %q", m.stage, m.query)
	}

	m.Update(runeKey('/'))
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.stage != stageBrowse || m.query != "" {
		t.Fatalf("esc should clear the query, stage %v query %q", m.stage, m.query)
	}
	if got := m.resultCount(); got != 4 {
		t.Fatalf("results after clear got %d want 4", got)
	}
}

func TestWhitespaceQueryShowsEverything(t *testing.T) {
	m := newTestModel(t)
	m.setQuery("   ")
	if got := m.resultCount(); got != 4 {
		t.Fatalf("whitespace query results got %d want 4", got)
	}
}

func TestDigitKeysSelectCategories(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(runeKey('2'))
	if cmd == nil || m.activeCategory != 1 {
		t.Fatalf("key 2 should select category 1, got %d", m.activeCategory)
	}
	m.Update(runeKey('9'))
	if m.activeCategory != 1 {
		t.Fatal("out of range digit should be ignored")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.activeCategory != 2 {
		t.Fatalf("tab got %d want 2", m.activeCategory)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.activeCategory != noCategory {
		t.Fatalf("tab past the last category should select all, got %d", m.activeCategory)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.activeCategory != 2 {
		t.Fatalf("shift+tab got %d want 2", m.activeCategory)
	}
	m.Update(runeKey('0'))
	if m.activeCategory != noCategory {
		t.Fatal("0 should select all categories")
	}
}

func TestStaleCategoryScrollIsIgnored(t *testing.T) {
	m := newTestModelWith(t, Config{Dataset: largeDataset(3, 10)})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 12})

	m.selectCategory(0)
	stale := categoryScrollMsg{category: 0, gen: m.scrollGen}
	m.selectCategory(2)
	current := categoryScrollMsg{category: 2, gen: m.scrollGen}
	m.View()

	m.viewport.SetYOffset(10)
	m.Update(stale)
	m.View()
	if m.viewport.YOffset != 10 {
		t.Fatalf("stale scroll moved the viewport to %d", m.viewport.YOffset)
	}

	m.Update(current)
	m.View()
	if want := m.anchors[catalog.CategoryAnchor(2)]; m.viewport.YOffset != want {
		t.Fatalf("scroll got %d want category anchor %d", m.viewport.YOffset, want)
	}
}

func TestScrollTopIndicator(t *testing.T) {
	m := newTestModelWith(t, Config{Dataset: largeDataset(2, 10)})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 12})
	m.View()

	if m.scrollTopVisible {
		t.Fatal("indicator should start hidden")
	}
	m.viewport.SetYOffset(defaultScrollTopThreshold + 1)
	m.updateScrollTop()
	if !m.scrollTopVisible {
		t.Fatal("indicator should show past the threshold")
	}
	m.Update(runeKey('g'))
	if m.scrollTopVisible || m.viewport.YOffset != 0 {
		t.Fatalf("g should return to top, offset %d", m.viewport.YOffset)
	}
}

func TestDeepLinkFocusesCard(t *testing.T) {
	ds := largeDataset(3, 6)
	target := catalog.CardID(2, 4, "Model 2 4")
	m := newTestModelWith(t, Config{Dataset: ds, InitialCard: target})

	if m.focusID != target {
		t.Fatalf("focus got %q want %q", m.focusID, target)
	}
	if want := m.clampYOffset(m.anchors[target]); m.viewport.YOffset != want {
		t.Fatalf("offset got %d want %d", m.viewport.YOffset, want)
	}
	if m.viewport.YOffset == 0 {
		t.Fatal("deep link should scroll away from the top")
	}
	if state := m.cards[target]; state == nil || state.expanded {
		t.Fatal("deep link should focus without expanding")
	}
}

func TestUnknownDeepLinkReportsError(t *testing.T) {
	m := newTestModelWith(t, Config{Dataset: fixtureDataset(), InitialCard: "card-9-9-nope"})
	if m.errorMessage == "" {
		t.Fatal("expected an error for a card outside the dataset")
	}
	if m.focusID != "card-0-0-first-principles" {
		t.Fatalf("focus should fall back to the first card, got %q", m.focusID)
	}
}

func TestLastReadCardMountsExpanded(t *testing.T) {
	store := progress.NewStore(progress.NewMemoryBackend())
	store.MarkRead("card-0-1-inversion")
	store.MarkRead("card-2-0-opportunity-cost")

	m := newTestModelWith(t, Config{Dataset: fixtureDataset(), Store: store})
	last := m.cards["card-2-0-opportunity-cost"]
	if last == nil || !last.expanded || !last.isRead {
		t.Fatalf("last read card should mount expanded and read, got %+v", last)
	}
	if other := m.cards["card-0-1-inversion"]; other == nil || other.expanded || !other.isRead {
		t.Fatalf("earlier read card should mount collapsed and read, got %+v", other)
	}
	if m.focusID != "card-2-0-opportunity-cost" {
		t.Fatalf("focus got %q", m.focusID)
	}
	if m.readCount != 2 {
		t.Fatalf("read count got %d want 2", m.readCount)
	}
}

func TestRenderingDoesNotMarkRead(t *testing.T) {
	store := progress.NewStore(progress.NewMemoryBackend())
	m := newTestModelWith(t, Config{Dataset: fixtureDataset(), Store: store})
	for i := 0; i < 3; i++ {
		m.markViewportDirty()
		m.View()
	}
	if got := store.CountRead(m.config.Dataset.CardIDs()); got != 0 {
		t.Fatalf("rendering marked %d cards read", got)
	}
}

func TestCopyRequiresExpandedCard(t *testing.T) {
	copied := ""
	m := newTestModelWith(t, Config{
		Dataset:   fixtureDataset(),
		Clipboard: func(s string) error { copied = s; return nil },
	})
	if _, cmd := m.Update(runeKey('c')); cmd != nil {
		t.Fatal("copy on a collapsed card should do nothing")
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	runJob(t, m, cmd)
	_, cmd = m.Update(runeKey('c'))
	reset := runJob(t, m, cmd)
	if reset == nil {
		t.Fatal("successful copy should schedule a badge reset")
	}
	want := "First Principles\n\nBreak a problem into its fundamental truths.\n\nReason up from fundamentals"
	if copied != want {
		t.Fatalf("copied text got %q want %q", copied, want)
	}
	if !m.cards[m.focusID].copied {
		t.Fatal("copied badge should show")
	}
}

func TestCopyFailureIsSwallowed(t *testing.T) {
	m := newTestModelWith(t, Config{
		Dataset:   fixtureDataset(),
		Clipboard: func(string) error { return errors.New("clipboard unavailable") },
	})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	runJob(t, m, cmd)

	_, cmd = m.Update(runeKey('c'))
	if next := runJob(t, m, cmd); next != nil {
		t.Fatal("failed copy should not schedule a reset")
	}
	if m.cards[m.focusID].copied {
		t.Fatal("failed copy must not show the success badge")
	}
	if m.errorMessage != "" {
		t.Fatalf("failed copy should not surface an error, got %q", m.errorMessage)
	}
}

func TestShareSendsDeepLink(t *testing.T) {
	shared := ""
	m := newTestModelWith(t, Config{
		Dataset: fixtureDataset(),
		Share:   func(s string) error { shared = s; return nil },
	})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	runJob(t, m, cmd)
	_, cmd = m.Update(runeKey('s'))
	runJob(t, m, cmd)

	want := "First Principles\nmindsnack browse --card card-0-0-first-principles"
	if shared != want {
		t.Fatalf("shared got %q want %q", shared, want)
	}
	if !m.cards[m.focusID].shared {
		t.Fatal("shared badge should show")
	}
}

func TestBadgeResetHonoursGeneration(t *testing.T) {
	m := newTestModel(t)
	id := m.focusID
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	runJob(t, m, cmd)

	_, cmd = m.Update(runeKey('c'))
	runJob(t, m, cmd)
	first := m.cards[id].copyGen
	_, cmd = m.Update(runeKey('c'))
	runJob(t, m, cmd)
	second := m.cards[id].copyGen

	m.Update(actionResetMsg{id: id, kind: jobKindCopy, gen: first})
	if !m.cards[id].copied {
		t.Fatal("an outdated reset must not clear a newer badge")
	}
	m.Update(actionResetMsg{id: id, kind: jobKindCopy, gen: second})
	if m.cards[id].copied {
		t.Fatal("the current reset should clear the badge")
	}
}

func TestResetAfterUnmountIsIgnored(t *testing.T) {
	m := newTestModel(t)
	id := m.focusID
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	runJob(t, m, cmd)
	_, cmd = m.Update(runeKey('c'))
	runJob(t, m, cmd)
	gen := m.cards[id].copyGen

	m.setQuery("feedback")
	m.View()
	if _, ok := m.cards[id]; ok {
		t.Fatal("filtered card should be unmounted")
	}
	m.Update(actionResetMsg{id: id, kind: jobKindCopy, gen: gen})
	if _, ok := m.cards[id]; ok {
		t.Fatal("late reset must not remount the card")
	}

	m.setQuery("")
	m.View()
	if state := m.cards[id]; state == nil || state.copied {
		t.Fatalf("remounted card should start fresh, got %+v", state)
	}
}

func TestQuitUnsubscribes(t *testing.T) {
	store := progress.NewStore(progress.NewMemoryBackend())
	m := newTestModelWith(t, Config{Dataset: fixtureDataset(), Store: store})

	_, cmd := m.Update(runeKey('q'))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q should return tea.Quit")
	}
	store.MarkRead("card-0-0-first-principles")
	select {
	case <-m.signal.ch:
		t.Fatal("no notifications after quit")
	default:
	}
}
