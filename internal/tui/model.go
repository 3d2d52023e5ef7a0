package tui

import (
	"fmt"
	"os"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"go.uber.org/zap"

	"github.com/csheth/mindsnack/internal/catalog"
	mprogress "github.com/csheth/mindsnack/internal/progress"
	"github.com/csheth/mindsnack/internal/search"
)

// Config wires runtime options into the TUI program.
type Config struct {
	Dataset *catalog.Dataset
	Store   *mprogress.Store
	Logger  *zap.Logger

	// Clipboard receives copied card text. Defaults to the system clipboard.
	Clipboard func(string) error
	// Share receives a card deep link. Defaults to an OSC 52 copy written to
	// Output.
	Share func(string) error
	// Output is the terminal the program renders to. Pass the same value to
	// tea.WithOutput so share sequences and frames go through one writer.
	Output *termenv.Output

	// InitialCard focuses a card identity on start.
	InitialCard string

	ScrollTopThreshold  int
	CategoryScrollDelay time.Duration
	CopyReset           time.Duration
}

func (c *Config) applyDefaults() {
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.Store == nil {
		c.Store = mprogress.NewStore(mprogress.NewMemoryBackend(), mprogress.WithLogger(c.Logger))
	}
	if c.Clipboard == nil {
		c.Clipboard = clipboard.WriteAll
	}
	if c.Output == nil {
		c.Output = termenv.NewOutput(os.Stdout)
	}
	if c.Share == nil {
		c.Share = osc52Share(c.Output)
	}
	if c.ScrollTopThreshold <= 0 {
		c.ScrollTopThreshold = defaultScrollTopThreshold
	}
	if c.CategoryScrollDelay <= 0 {
		c.CategoryScrollDelay = defaultCategoryScrollDelay
	}
	if c.CopyReset <= 0 {
		c.CopyReset = defaultCopyReset
	}
}

// osc52Share copies through the terminal itself. Copy emits the whole
// sequence in one Write, the renderer flushes each frame in one Write, and
// writes to the same file are serialised, so a share never splits a frame.
func osc52Share(out *termenv.Output) func(string) error {
	return func(text string) error {
		out.Copy(text)
		return nil
	}
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	return newModel(config)
}

func newModel(config Config) *model {
	config.applyDefaults()

	searchInput := textinput.New()
	searchInput.Placeholder = "Search models, tags, TL;DRs…"
	searchInput.Prompt = "/ "
	searchInput.CharLimit = 120
	searchInput.Width = 60

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(30))

	m := &model{
		config:         config,
		logger:         config.Logger,
		stage:          stageBrowse,
		keys:           newKeyMap(),
		help:           help.New(),
		layout:         newPageLayout(),
		searchInput:    searchInput,
		viewport:       vp,
		progressBar:    bar,
		jobs:           newJobBus(config.Logger),
		markdown:       newMarkdownRenderer(config.Logger),
		memo:           &search.Memo{},
		activeCategory: noCategory,
		allIDs:         config.Dataset.CardIDs(),
		cards:          map[string]*cardState{},
		anchors:        map[string]int{},
		cardSpans:      map[string]lineSpan{},
		viewportDirty:  true,
		infoMessage:    "Press / to search, tab to switch categories, enter to read a card.",
	}
	m.recomputeReadCount()
	m.applyInitialCard()
	m.signal = subscribeProgress(config.Store)
	return m
}

func (m *model) applyInitialCard() {
	id := m.config.InitialCard
	if id == "" {
		return
	}
	if _, _, _, ok := catalog.ParseCardID(id); !ok {
		m.errorMessage = fmt.Sprintf("%q is not a card id.", id)
		return
	}
	if _, ok := m.config.Dataset.Lookup(id); !ok {
		m.errorMessage = fmt.Sprintf("Card %s is not in this dataset.", id)
		return
	}
	m.focusID = id
	m.pendingFocusAnchor = id
	m.logger.Debug("deep link", zap.String("card", id))
}

type model struct {
	config Config
	logger *zap.Logger
	stage  stage

	keys        keyMap
	help        help.Model
	layout      pageLayout
	searchInput textinput.Model
	viewport    viewport.Model
	progressBar progress.Model
	jobs        *jobBus
	markdown    *markdownRenderer
	memo        *search.Memo
	signal      *progressSignal

	activeCategory   int
	query            string
	scrollTopVisible bool
	readCount        int
	allIDs           []string

	cards              map[string]*cardState
	focusID            string
	anchors            map[string]int
	cardSpans          map[string]lineSpan
	cardOrder          []string
	lineCount          int
	viewportDirty      bool
	pendingFocusAnchor string
	scrollGen          int
	timerGen           int

	infoMessage  string
	errorMessage string
	helpVisible  bool
}

func (m *model) Init() tea.Cmd {
	return m.signal.wait()
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, m.quit()
		}
		return m.handleKey(msg)
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.updateScrollTop()
		return m, cmd
	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height)
		m.viewport.Width = m.layout.viewportWidth
		m.viewport.Height = m.layout.viewportHeight
		m.help.Width = msg.Width
		m.searchInput.Width = m.layout.viewportWidth - 4
		m.markViewportDirty()
		return m, nil
	case progressChangedMsg:
		m.recomputeReadCount()
		m.syncReadFlags()
		return m, m.signal.wait()
	case jobResultEnvelope:
		return m.handleJobResult(msg)
	case actionResetMsg:
		m.handleActionReset(msg)
		return m, nil
	case categoryScrollMsg:
		m.handleCategoryScroll(msg)
		return m, nil
	}
	return m, nil
}

func (m *model) handleJobResult(msg jobResultEnvelope) (tea.Model, tea.Cmd) {
	switch payload := msg.Payload.(type) {
	case cardReadMsg:
		if payload.added {
			m.infoMessage = "Marked as read."
		}
		return m, nil
	case cardActionMsg:
		return m, m.handleCardAction(payload)
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.stage {
	case stageSearch:
		return m.handleSearchKey(msg)
	default:
		return m.handleBrowseKey(msg)
	}
}

func (m *model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ClearSearch):
		m.stage = stageBrowse
		m.searchInput.Blur()
		m.clearQuery()
		m.markViewportDirty()
		m.infoMessage = "Search cleared."
		return m, nil
	case key.Matches(msg, m.keys.KeepSearch):
		m.stage = stageBrowse
		m.searchInput.Blur()
		m.refreshViewportIfDirty()
		m.infoMessage = fmt.Sprintf("%d results for %q.", m.resultCount(), m.query)
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.setQuery(m.searchInput.Value())
	return m, cmd
}

func (m *model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.helpVisible && !key.Matches(msg, m.keys.Help, m.keys.Quit) {
		m.helpVisible = false
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit()
	case key.Matches(msg, m.keys.Help):
		m.helpVisible = !m.helpVisible
		m.help.ShowAll = m.helpVisible
		return m, nil
	case key.Matches(msg, m.keys.Search):
		m.stage = stageSearch
		m.errorMessage = ""
		m.searchInput.SetValue(m.query)
		m.searchInput.CursorEnd()
		return m, m.searchInput.Focus()
	case key.Matches(msg, m.keys.ClearSearch):
		if m.query != "" {
			m.clearQuery()
			m.markViewportDirty()
			m.infoMessage = "Search cleared."
		}
		return m, nil
	case key.Matches(msg, m.keys.NextTab):
		return m, m.cycleCategory(1)
	case key.Matches(msg, m.keys.PrevTab):
		return m, m.cycleCategory(-1)
	case key.Matches(msg, m.keys.AllTabs):
		m.selectAll()
		return m, nil
	case key.Matches(msg, m.keys.Category):
		idx := int(msg.String()[0]-'0') - 1
		return m, m.selectCategory(idx)
	case key.Matches(msg, m.keys.Up):
		m.moveFocus(-1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.moveFocus(1)
		return m, nil
	case key.Matches(msg, m.keys.Expand):
		return m, m.expandFocused()
	case key.Matches(msg, m.keys.Copy):
		return m, m.copyFocused()
	case key.Matches(msg, m.keys.Share):
		return m, m.shareFocused()
	case key.Matches(msg, m.keys.Top):
		m.scrollToTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.scrollToBottom()
		return m, nil
	}
	switch msg.String() {
	case "pgdown", "pgup", "ctrl+d", "ctrl+u":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.updateScrollTop()
		return m, cmd
	}
	return m, nil
}

func (m *model) quit() tea.Cmd {
	m.signal.stop()
	return tea.Quit
}

func (m *model) resultCount() int {
	return search.Count(m.visibleCategories())
}
