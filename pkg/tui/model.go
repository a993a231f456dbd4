package tui

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gitlab.com/tinyland/lab/loupe/pkg/browse"
	"gitlab.com/tinyland/lab/loupe/pkg/render"
	"gitlab.com/tinyland/lab/loupe/pkg/viewer"
)

// Config assembles a Model.
type Config struct {
	State    *viewer.State
	Renderer *render.Renderer

	// SlideshowInterval is the dwell time per image; SlideshowShuffle
	// advances in seeded-random order instead of name order.
	SlideshowInterval time.Duration
	SlideshowShuffle  bool

	ShowSidebar bool
	Logger      *slog.Logger
}

// Model is the root Bubbletea model.
type Model struct {
	state    *viewer.State
	renderer *render.Renderer
	spin     spinner.Model
	log      *slog.Logger

	width  int
	height int

	showSidebar bool

	slideshowOn       bool
	slideshowInterval time.Duration
	slideshowShuffle  bool
	slideshowElapsed  time.Duration

	lastTick time.Time
}

// New builds the root model.
func New(cfg Config) Model {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.SlideshowInterval <= 0 {
		cfg.SlideshowInterval = 5 * time.Second
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		state:             cfg.State,
		renderer:          cfg.Renderer,
		spin:              sp,
		log:               cfg.Logger,
		showSidebar:       cfg.ShowSidebar,
		slideshowInterval: cfg.SlideshowInterval,
		slideshowShuffle:  cfg.SlideshowShuffle,
		lastTick:          time.Now(),
	}
}

// Init starts the tick loop and the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.spin.Tick)
}

// Update routes messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case RepaintMsg:
		m.state.HandleResponses()
		return m, nil

	case TickMsg:
		return m.handleTick(msg.Time)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "right", "l", " ":
		m.state.Next(browse.Next)

	case "left", "h":
		m.state.Next(browse.Prev)

	case "r":
		// The worker supplies its own seed.
		m.state.Next(browse.Shuffle(0))

	case "d", "delete":
		if cur := m.state.Current(); cur != nil {
			m.renderer.Cache().InvalidatePath(cur.Path)
		}
		m.state.Delete()

	case "s":
		m.slideshowOn = !m.slideshowOn
		m.slideshowElapsed = 0

	case "i":
		m.showSidebar = !m.showSidebar

	case "p":
		if cur := m.state.Current(); cur != nil && cur.Play != nil {
			cur.Play.TogglePlay()
		}

	case "x", "esc":
		if notices := m.state.Notices(); len(notices) > 0 {
			m.state.DismissNotice(notices[0].ID)
		}
	}
	return m, nil
}

// handleTick drains worker responses, feeds the animation clock and the
// slideshow timer, and reschedules itself.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	elapsed := now.Sub(m.lastTick)
	m.lastTick = now

	m.state.HandleResponses()

	if cur := m.state.Current(); cur != nil && cur.Play != nil {
		cur.Play.Advance(elapsed)
	}

	if m.slideshowOn && !m.state.Waiting() {
		m.slideshowElapsed += elapsed
		if m.slideshowElapsed >= m.slideshowInterval {
			m.slideshowElapsed = 0
			req := browse.Next
			if m.slideshowShuffle {
				req = browse.Shuffle(0)
			}
			m.state.Next(req)
		}
	}

	return m, tickCmd()
}
