package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/muurk/axectl/internal/logging"
	"github.com/muurk/axectl/internal/minerapi"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenDiscovery Screen = "discovery"
	ScreenDashboard Screen = "dashboard"
)

// Options configures the dashboard application
type Options struct {
	Subnet         string
	Start, End     uint8
	Concurrency    int
	ProbeTimeout   time.Duration
	CommandTimeout time.Duration
	MDNS           bool

	// RefreshInterval is the status poll period on the miner screen
	RefreshInterval time.Duration

	// Aliases names miners in the list; nil means no aliases
	Aliases func(address string) string
}

// AppModel is the top-level coordinator model that manages screen transitions
type AppModel struct {
	CurrentScreen Screen

	DiscoveryModel DiscoveryModel
	DashboardModel DashboardModel

	Width  int
	Height int

	opts   Options
	client *minerapi.Client
	quit   key.Binding
}

// NewAppModel creates the application. It starts on the discovery screen, or
// directly on the dashboard when miner is not nil.
func NewAppModel(opts Options, miner *minerapi.DiscoveredMiner) *AppModel {
	m := &AppModel{
		CurrentScreen:  ScreenDiscovery,
		DiscoveryModel: NewDiscoveryModel(opts),
		opts:           opts,
		client:         minerapi.NewClient(opts.CommandTimeout),
		quit:           key.NewBinding(key.WithKeys("q")),
	}
	if miner != nil {
		m.openDashboard(miner)
	}
	return m
}

// Init starts the first screen
func (m *AppModel) Init() tea.Cmd {
	if m.CurrentScreen == ScreenDashboard {
		return m.DashboardModel.Init()
	}
	return m.DiscoveryModel.Init()
}

// Update handles global keys and routes everything else to the active screen
func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		// Propagate to all screens
		m.DiscoveryModel, _ = m.DiscoveryModel.Update(msg)
		m.DashboardModel, _ = m.DashboardModel.Update(msg)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.DiscoveryModel.Stop()
			return m, tea.Quit
		}
		if key.Matches(msg, m.quit) && !m.capturingText() {
			m.DiscoveryModel.Stop()
			return m, tea.Quit
		}
	}

	return m.updateCurrentScreen(msg)
}

// capturingText reports whether the active screen wants raw keystrokes
func (m *AppModel) capturingText() bool {
	if m.CurrentScreen == ScreenDashboard {
		return m.DashboardModel.Editing()
	}
	return m.DiscoveryModel.ManualMode || m.DiscoveryModel.MinerList.SettingFilter()
}

func (m *AppModel) updateCurrentScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.CurrentScreen {
	case ScreenDiscovery:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" && !m.capturingText() &&
			!m.DiscoveryModel.MinerList.IsFiltered() {
			m.DiscoveryModel.Stop()
			return m, tea.Quit
		}

		m.DiscoveryModel, cmd = m.DiscoveryModel.Update(msg)
		if miner := m.DiscoveryModel.SelectedMiner(); miner != nil {
			m.DiscoveryModel.Selected = false
			return m, m.openDashboard(miner)
		}

	case ScreenDashboard:
		m.DashboardModel, cmd = m.DashboardModel.Update(msg)
		if m.DashboardModel.IsBackRequested() {
			m.CurrentScreen = ScreenDiscovery
			if m.DiscoveryModel.gen == 0 {
				// Started on a miner given on the command line
				return m, m.DiscoveryModel.Init()
			}
			// Keep the last scan results; the user rescans with 'r'
			return m, nil
		}
	}

	return m, cmd
}

// openDashboard switches to the dashboard for miner
func (m *AppModel) openDashboard(miner *minerapi.DiscoveredMiner) tea.Cmd {
	alias := ""
	if m.opts.Aliases != nil {
		alias = m.opts.Aliases(miner.Address)
	}
	logging.Debug("Opening miner dashboard", zap.String("address", miner.Address))

	m.DashboardModel = NewDashboardModel(miner, alias, m.client, m.opts.RefreshInterval)
	m.DashboardModel.Width = m.Width
	m.DashboardModel.Height = m.Height
	m.CurrentScreen = ScreenDashboard
	return m.DashboardModel.Init()
}

// View renders the current screen
func (m *AppModel) View() string {
	switch m.CurrentScreen {
	case ScreenDiscovery:
		return m.DiscoveryModel.View()
	case ScreenDashboard:
		return m.DashboardModel.View()
	default:
		return fmt.Sprintf("unknown screen %q", m.CurrentScreen)
	}
}

// Run starts the dashboard in the alternate screen and blocks until the user
// quits.
func Run(opts Options, miner *minerapi.DiscoveredMiner) error {
	p := tea.NewProgram(NewAppModel(opts, miner), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard error: %w", err)
	}
	return nil
}
