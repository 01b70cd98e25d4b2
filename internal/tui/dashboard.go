package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/axectl/internal/minerapi"
)

// DefaultRefreshInterval is how often the dashboard re-reads miner status
const DefaultRefreshInterval = 5 * time.Second

// dashboardMode is the interaction state of the dashboard
type dashboardMode int

const (
	modeView dashboardMode = iota
	modeEdit
	modeConfirmRestart
	modeConfirmSettings
	modeBusy
)

// Messages for async device calls. id ties a message to the dashboard
// instance that issued it.
type statusMsg struct {
	id      int64
	payload minerapi.Payload
	err     error
}

type commandDoneMsg struct {
	id     int64
	action string
	result minerapi.Payload
	err    error
}

type refreshTickMsg struct {
	id int64
}

// dashboardKeyMap defines key bindings for the miner dashboard
type dashboardKeyMap struct {
	Refresh key.Binding
	Edit    key.Binding
	Restart key.Binding
	Back    key.Binding
	Quit    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k dashboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Edit, k.Restart, k.Back, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k dashboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Refresh, k.Edit, k.Restart},
		{k.Back, k.Quit},
	}
}

// editKeyMap defines key bindings for the settings editor
type editKeyMap struct {
	Next   key.Binding
	Apply  key.Binding
	Cancel key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k editKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Apply, k.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (k editKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Next, k.Apply, k.Cancel}}
}

// confirmKeyMap defines key bindings for yes/no dialogs
type confirmKeyMap struct {
	Yes key.Binding
	No  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k confirmKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Yes, k.No}
}

// FullHelp returns keybindings for the expanded help view
func (k confirmKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Yes, k.No}}
}

// DashboardModel shows the live status of one miner and runs restart and
// settings commands against it.
type DashboardModel struct {
	Miner   *minerapi.DiscoveredMiner
	Alias   string
	Summary minerapi.StatusSummary

	Loaded      bool
	Err         error
	Notice      string
	LastUpdated time.Time

	FrequencyInput   textinput.Model
	CoreVoltageInput textinput.Model
	InputErr         string
	pending          minerapi.SettingsUpdate

	Width       int
	Height      int
	Spinner     spinner.Model
	Help        help.Model
	Keys        dashboardKeyMap
	EditKeys    editKeyMap
	ConfirmKeys confirmKeyMap

	id              int64
	mode            dashboardMode
	client          *minerapi.Client
	refreshInterval time.Duration
	backRequested   bool
}

// NewDashboardModel creates the dashboard for miner
func NewDashboardModel(miner *minerapi.DiscoveredMiner, alias string, client *minerapi.Client, refresh time.Duration) DashboardModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	freq := textinput.New()
	freq.Placeholder = "MHz"
	freq.CharLimit = 5
	freq.Width = 10
	freq.Validate = digitsOnly

	volt := textinput.New()
	volt.Placeholder = "mV"
	volt.CharLimit = 5
	volt.Width = 10
	volt.Validate = digitsOnly

	if refresh <= 0 {
		refresh = DefaultRefreshInterval
	}

	return DashboardModel{
		Miner:            miner,
		Alias:            alias,
		FrequencyInput:   freq,
		CoreVoltageInput: volt,
		Spinner:          s,
		Help:             help.New(),
		Keys: dashboardKeyMap{
			Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
			Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "tune")),
			Restart: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "restart")),
			Back:    key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
			Quit:    key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		},
		EditKeys: editKeyMap{
			Next:   key.NewBinding(key.WithKeys("tab", "shift+tab", "up", "down"), key.WithHelp("tab", "next field")),
			Apply:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
			Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		},
		ConfirmKeys: confirmKeyMap{
			Yes: key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "confirm")),
			No:  key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "cancel")),
		},
		id:              time.Now().UnixNano(),
		client:          client,
		refreshInterval: refresh,
	}
}

func digitsOnly(s string) error {
	for _, r := range s {
		if r < '0' || r > '9' {
			return errors.New("digits only")
		}
	}
	return nil
}

// Init fetches the first status and starts the refresh timer
func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.fetchStatus(), m.scheduleRefresh(), m.Spinner.Tick)
}

func (m DashboardModel) fetchStatus() tea.Cmd {
	id, client, address := m.id, m.client, m.Miner.Address
	return func() tea.Msg {
		payload, err := client.FetchStatus(context.Background(), address)
		return statusMsg{id: id, payload: payload, err: err}
	}
}

func (m DashboardModel) scheduleRefresh() tea.Cmd {
	id := m.id
	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg {
		return refreshTickMsg{id: id}
	})
}

func (m DashboardModel) restart() tea.Cmd {
	id, client, address := m.id, m.client, m.Miner.Address
	return func() tea.Msg {
		result, err := client.Restart(context.Background(), address)
		return commandDoneMsg{id: id, action: "Restart requested", result: result, err: err}
	}
}

func (m DashboardModel) applySettings(update minerapi.SettingsUpdate) tea.Cmd {
	id, client, address := m.id, m.client, m.Miner.Address
	return func() tea.Msg {
		result, err := client.UpdateSettings(context.Background(), address, update)
		return commandDoneMsg{id: id, action: "Settings applied", result: result, err: err}
	}
}

// Update handles messages and updates the model
func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case statusMsg:
		if msg.id != m.id {
			return m, nil
		}
		m.Err = msg.err
		if msg.err == nil {
			m.Loaded = true
			m.Summary = minerapi.Summarize(msg.payload)
			m.LastUpdated = time.Now()
		}
		return m, nil

	case refreshTickMsg:
		if msg.id != m.id {
			return m, nil
		}
		// Skip the poll while a command is in flight; the command refreshes
		if m.mode == modeBusy {
			return m, m.scheduleRefresh()
		}
		return m, tea.Batch(m.fetchStatus(), m.scheduleRefresh())

	case commandDoneMsg:
		if msg.id != m.id {
			return m, nil
		}
		m.mode = modeView
		if msg.err != nil {
			m.Err = msg.err
			m.Notice = ""
			return m, nil
		}
		m.Err = nil
		m.Notice = msg.action + ": " + msg.result.String()
		return m, m.fetchStatus()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.mode {
		case modeEdit:
			return m.updateEdit(msg)
		case modeConfirmRestart, modeConfirmSettings:
			return m.updateConfirm(msg)
		case modeBusy:
			return m, nil
		}
		return m.updateView(msg)
	}

	return m, nil
}

func (m DashboardModel) updateView(msg tea.KeyMsg) (DashboardModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Refresh):
		m.Notice = ""
		return m, m.fetchStatus()

	case key.Matches(msg, m.Keys.Restart):
		m.mode = modeConfirmRestart
		return m, nil

	case key.Matches(msg, m.Keys.Edit):
		m.mode = modeEdit
		m.InputErr = ""
		m.FrequencyInput.SetValue(numberText(m.Summary.FrequencyMHz))
		m.CoreVoltageInput.SetValue(numberText(m.Summary.CoreVoltageMV))
		m.CoreVoltageInput.Blur()
		return m, m.FrequencyInput.Focus()

	case key.Matches(msg, m.Keys.Back):
		m.backRequested = true
		return m, nil
	}
	return m, nil
}

func (m DashboardModel) updateEdit(msg tea.KeyMsg) (DashboardModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.EditKeys.Cancel):
		m.mode = modeView
		m.FrequencyInput.Blur()
		m.CoreVoltageInput.Blur()
		return m, nil

	case key.Matches(msg, m.EditKeys.Next):
		if m.FrequencyInput.Focused() {
			m.FrequencyInput.Blur()
			return m, m.CoreVoltageInput.Focus()
		}
		m.CoreVoltageInput.Blur()
		return m, m.FrequencyInput.Focus()

	case key.Matches(msg, m.EditKeys.Apply):
		update, err := parseSettings(m.FrequencyInput.Value(), m.CoreVoltageInput.Value())
		if err != nil {
			m.InputErr = err.Error()
			return m, nil
		}
		m.pending = update
		m.FrequencyInput.Blur()
		m.CoreVoltageInput.Blur()
		m.mode = modeConfirmSettings
		return m, nil
	}

	var cmd tea.Cmd
	if m.FrequencyInput.Focused() {
		m.FrequencyInput, cmd = m.FrequencyInput.Update(msg)
	} else {
		m.CoreVoltageInput, cmd = m.CoreVoltageInput.Update(msg)
	}
	return m, cmd
}

func (m DashboardModel) updateConfirm(msg tea.KeyMsg) (DashboardModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.ConfirmKeys.Yes):
		action := m.restart()
		if m.mode == modeConfirmSettings {
			action = m.applySettings(m.pending)
		}
		m.mode = modeBusy
		m.Notice = ""
		return m, tea.Batch(action, m.Spinner.Tick)

	case key.Matches(msg, m.ConfirmKeys.No):
		m.mode = modeView
	}
	return m, nil
}

// parseSettings turns the editor fields into a validated update
func parseSettings(frequency, coreVoltage string) (minerapi.SettingsUpdate, error) {
	freq, err := strconv.ParseUint(strings.TrimSpace(frequency), 10, 32)
	if err != nil {
		return minerapi.SettingsUpdate{}, fmt.Errorf("frequency: enter a whole number of MHz")
	}
	volt, err := strconv.ParseUint(strings.TrimSpace(coreVoltage), 10, 32)
	if err != nil {
		return minerapi.SettingsUpdate{}, fmt.Errorf("core voltage: enter a whole number of mV")
	}

	update := minerapi.SettingsUpdate{FrequencyMHz: uint32(freq), CoreVoltageMV: uint32(volt)}
	if errs := minerapi.ValidateSettingsUpdate(update); len(errs) > 0 {
		return update, errors.Join(errs...)
	}
	return update, nil
}

func numberText(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', 0, 64)
}

// IsBackRequested reports whether the user asked to return to discovery
func (m DashboardModel) IsBackRequested() bool {
	return m.backRequested
}

// Editing reports whether keystrokes are going to a text field or dialog
func (m DashboardModel) Editing() bool {
	return m.mode != modeView
}

// View renders the dashboard
func (m DashboardModel) View() string {
	var helpText string
	switch m.mode {
	case modeEdit:
		helpText = m.Help.View(m.EditKeys)
	case modeConfirmRestart, modeConfirmSettings:
		helpText = m.Help.View(m.ConfirmKeys)
	case modeBusy:
		helpText = m.Spinner.View() + " working..."
	default:
		helpText = m.Help.View(m.Keys)
	}

	// Dialogs replace the screen while open
	switch m.mode {
	case modeConfirmRestart:
		return RenderModal(m.renderRestartDialog(), m.Width, m.Height)
	case modeConfirmSettings:
		return RenderModal(m.renderSettingsDialog(), m.Width, m.Height)
	}
	return RenderApplicationContainer(m.renderContent(), helpText, m.Width, m.Height)
}

func (m DashboardModel) title() string {
	name := m.Miner.DisplayName()
	if m.Alias != "" {
		name = m.Alias + " · " + name
	}
	return name
}

func (m DashboardModel) renderContent() string {
	var b strings.Builder
	b.WriteString(RenderTitle(m.title()))
	b.WriteString("\n")

	if m.Notice != "" {
		b.WriteString(RenderSuccess(m.Notice))
		b.WriteString("\n")
	}
	if m.Err != nil {
		b.WriteString(RenderError(minerapi.GetShortErrorMessage(m.Err)))
		b.WriteString("\n")
		for _, hint := range minerapi.GetTroubleshootingHint(m.Err) {
			b.WriteString(SubtitleStyle.Render("  • "+hint) + "\n")
		}
		b.WriteString("\n")
	}

	if !m.Loaded {
		if m.Err == nil {
			b.WriteString(m.Spinner.View() + " Reading status from " + m.Miner.Address + "...\n")
		}
		return b.String()
	}

	s := m.Summary
	left := lipgloss.JoinVertical(lipgloss.Left,
		RenderField("Address", m.Miner.Address),
		RenderField("Hostname", valueOr(s.Hostname, "-")),
		RenderField("Model", valueOr(s.Model, "-")),
		RenderField("Firmware", valueOr(s.FirmwareVersion, "-")),
		RenderField("Uptime", minerapi.FormatUptime(s.UptimeSeconds)),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		RenderField("Hashrate", withUnit(s.HashRate, 2, "GH/s")),
		RenderField("Temperature", withUnit(s.Temperature, 1, "°C")),
		RenderField("Power", withUnit(s.Power, 1, "W")),
		RenderField("Frequency", withUnit(s.FrequencyMHz, 0, "MHz")),
		RenderField("Core voltage", withUnit(s.CoreVoltageMV, 0, "mV")),
	)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, "  ", left, "    ", right))
	b.WriteString("\n\n")

	shares := fmt.Sprintf("%s accepted / %s rejected", withUnit(s.SharesAccepted, 0, ""), withUnit(s.SharesRejected, 0, ""))
	b.WriteString("  " + RenderField("Shares", shares) + "\n")
	if s.StratumURL != nil {
		b.WriteString("  " + RenderField("Pool", *s.StratumURL+portSuffix(s.StratumPort)) + "\n")
	}

	if m.mode == modeEdit {
		b.WriteString("\n")
		b.WriteString(m.renderEditor())
	}

	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(fmt.Sprintf("  Updated %s • refresh every %s",
		m.LastUpdated.Format("15:04:05"), m.refreshInterval)))
	return b.String()
}

func (m DashboardModel) renderEditor() string {
	lines := []string{
		RenderTitle("Tune miner"),
		"  Frequency (MHz):    " + m.FrequencyInput.View(),
		"  Core voltage (mV):  " + m.CoreVoltageInput.View(),
	}
	if m.InputErr != "" {
		lines = append(lines, "", "  "+lipgloss.NewStyle().Foreground(ErrorColor).Render(m.InputErr))
	}
	return WarningBoxStyle.Foreground(TextColor).Render(strings.Join(lines, "\n"))
}

func (m DashboardModel) renderRestartDialog() string {
	warn := lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
	return strings.Join([]string{
		warn.Render("⚠ RESTART " + m.title()),
		"",
		"The miner stops hashing while it reboots.",
		"",
		"Restart now? [y/N]",
	}, "\n")
}

func (m DashboardModel) renderSettingsDialog() string {
	warn := lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
	return strings.Join([]string{
		warn.Render("⚠ CHANGE TUNING ON " + m.title()),
		"",
		fmt.Sprintf("Frequency:     %s → %d MHz", withUnit(m.Summary.FrequencyMHz, 0, ""), m.pending.FrequencyMHz),
		fmt.Sprintf("Core voltage:  %s → %d mV", withUnit(m.Summary.CoreVoltageMV, 0, ""), m.pending.CoreVoltageMV),
		"",
		"Values outside the ASIC's safe range can overheat the board.",
		"",
		"Apply? [y/N]",
	}, "\n")
}

func withUnit(f *float64, precision int, unit string) string {
	if f == nil {
		return "-"
	}
	text := strconv.FormatFloat(*f, 'f', precision, 64)
	if unit == "" {
		return text
	}
	return text + " " + unit
}

func portSuffix(port *float64) string {
	if port == nil {
		return ""
	}
	return ":" + strconv.FormatFloat(*port, 'f', 0, 64)
}
