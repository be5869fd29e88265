// Package monitor renders a live terminal dashboard for a running
// Ralph loop. It is a read-only observer: it polls the state file and
// the project checklist, never writes either, and keeps working when
// the loop process is gone.
package monitor

import (
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tOgg1/ralph/internal/models"
	"github.com/tOgg1/ralph/internal/project"
	"github.com/tOgg1/ralph/internal/state"
)

const (
	defaultRefreshInterval = 1 * time.Second
	defaultIterationsShown = 10
)

// Config configures the dashboard.
type Config struct {
	ProjectPath     string
	RefreshInterval time.Duration
	IterationsShown int
	HideTasks       bool
}

// Run starts the dashboard and blocks until the user quits.
func Run(cfg Config) error {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = defaultRefreshInterval
	}
	if cfg.IterationsShown <= 0 {
		cfg.IterationsShown = defaultIterationsShown
	}

	program := tea.NewProgram(newModel(cfg), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

type model struct {
	store           *state.Store
	refreshInterval time.Duration
	iterationsShown int
	hideTasks       bool

	loopState *models.RalphState
	tasks     []project.Task
	lastMod   time.Time
	err       error

	width    int
	height   int
	quitting bool
}

type refreshMsg struct {
	loopState *models.RalphState
	tasks     []project.Task
	modTime   time.Time
	unchanged bool
	err       error
}

type tickMsg struct{}

func newModel(cfg Config) model {
	return model{
		store:           state.NewStore(cfg.ProjectPath),
		refreshInterval: cfg.RefreshInterval,
		iterationsShown: cfg.IterationsShown,
		hideTasks:       cfg.HideTasks,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), m.tickCmd())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		return m, tea.Batch(m.fetchCmd(), m.tickCmd())
	case refreshMsg:
		if msg.unchanged {
			return m, nil
		}
		m.loopState = msg.loopState
		m.tasks = msg.tasks
		m.lastMod = msg.modTime
		m.err = msg.err
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) fetchCmd() tea.Cmd {
	store := m.store
	lastMod := m.lastMod
	return func() tea.Msg {
		// Cheap mtime check first; the state file only changes when the
		// runner or a signaler writes it.
		modTime := store.ModTime()
		if !lastMod.IsZero() && modTime.Equal(lastMod) {
			return refreshMsg{unchanged: true}
		}

		loopState, err := store.Load()
		if err != nil {
			return refreshMsg{err: err}
		}

		var tasks []project.Task
		if content, readErr := os.ReadFile(loopState.ProjectFile); readErr == nil {
			tasks = project.ParseTasks(string(content))
		}
		return refreshMsg{loopState: loopState, tasks: tasks, modTime: modTime}
	}
}

func (m model) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}
