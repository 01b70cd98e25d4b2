package tui

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/axectl/internal/discovery"
	"github.com/muurk/axectl/internal/minerapi"
)

// Messages for the background scan. gen ties a message to the scan that
// produced it so results of a superseded scan are dropped.
type scanProgressMsg struct {
	gen         int
	done, total int
}

type scanCompleteMsg struct {
	gen    int
	miners []*minerapi.DiscoveredMiner
	err    error
}

// discoveryKeyMap defines key bindings for the discovery screen
type discoveryKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Rescan key.Binding
	Manual key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k discoveryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Rescan, k.Manual, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k discoveryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter},
		{k.Rescan, k.Manual, k.Quit},
	}
}

// manualModeKeyMap defines key bindings for manual address entry
type manualModeKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k manualModeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (k manualModeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Confirm, k.Cancel}}
}

// minerItem wraps a DiscoveredMiner for use with bubbles/list
type minerItem struct {
	miner *minerapi.DiscoveredMiner
	alias string
}

// FilterValue implements list.Item
func (i minerItem) FilterValue() string {
	parts := []string{i.miner.Address, i.alias}
	if i.miner.Hostname != nil {
		parts = append(parts, *i.miner.Hostname)
	}
	if i.miner.Model != nil {
		parts = append(parts, *i.miner.Model)
	}
	return strings.Join(parts, " ")
}

// Title returns the miner name for list display
func (i minerItem) Title() string {
	name := i.miner.DisplayName()
	if i.alias != "" {
		name = i.alias + " · " + name
	}
	return name
}

// Description returns miner details for list display
func (i minerItem) Description() string {
	return fmt.Sprintf("%s • %s • %s",
		i.miner.Address, valueOr(i.miner.Model, "unknown model"), valueOr(i.miner.FirmwareVersion, "unknown firmware"))
}

func valueOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

// minerDelegate renders each miner as a two-line entry with a selection bar
type minerDelegate struct{}

func (d minerDelegate) Height() int  { return 2 }
func (d minerDelegate) Spacing() int { return 1 }

func (d minerDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d minerDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	mi, ok := item.(minerItem)
	if !ok {
		return
	}

	title, desc := "  "+mi.Title(), "  "+mi.Description()
	if index == m.Index() {
		bar := lipgloss.NewStyle().Foreground(HighlightColor).Render("│ ")
		title = bar + SelectedItemStyle.Render(mi.Title())
		desc = bar + SubtitleStyle.Render(mi.Description())
	} else {
		desc = SubtitleStyle.Render(desc)
	}
	_, _ = fmt.Fprint(w, title+"\n"+desc)
}

// DiscoveryModel is the miner discovery screen
type DiscoveryModel struct {
	// Discovery state
	Scanning  bool
	MinerList list.Model
	Selected  bool
	Err       error

	// Manual address entry state
	ManualMode   bool
	AddressInput textinput.Model
	InputErr     string

	// UI state
	Width         int
	Height        int
	Spinner       spinner.Model
	ProgressBar   progress.Model
	ScanStartTime time.Time
	Help          help.Model
	Keys          discoveryKeyMap
	ManualKeys    manualModeKeyMap

	opts    Options
	done    int
	total   int
	gen     int
	updates chan tea.Msg
	scanDone <-chan struct{} // Closed when the current scan is cancelled
	cancel  context.CancelFunc
}

// NewDiscoveryModel creates the discovery screen for the given scan options
func NewDiscoveryModel(opts Options) DiscoveryModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	addressInput := textinput.New()
	addressInput.Placeholder = "192.168.1.42"
	addressInput.CharLimit = 15
	addressInput.Width = 30

	progressBar := progress.New(progress.WithDefaultGradient())
	progressBar.Width = 40

	minerList := list.New([]list.Item{}, minerDelegate{}, 0, 0)
	minerList.Title = "Discovered Miners"
	minerList.SetShowStatusBar(false)
	minerList.SetShowHelp(false)
	minerList.SetFilteringEnabled(true)
	minerList.Styles.Title = TitleStyle

	keys := discoveryKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		Manual: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "enter address"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
	}

	manualKeys := manualModeKeyMap{
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "add"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}

	return DiscoveryModel{
		MinerList:    minerList,
		AddressInput: addressInput,
		Spinner:      s,
		ProgressBar:  progressBar,
		Help:         help.New(),
		Keys:         keys,
		ManualKeys:   manualKeys,
		opts:         opts,
	}
}

// Init starts the first scan
func (m *DiscoveryModel) Init() tea.Cmd {
	return tea.Batch(m.startScan(), m.Spinner.Tick)
}

// startScan cancels any running scan and starts a new one in the background.
// Progress and the final result arrive on m.updates.
func (m *DiscoveryModel) startScan() tea.Cmd {
	if m.cancel != nil {
		m.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.scanDone = ctx.Done()

	m.gen++
	gen := m.gen
	updates := make(chan tea.Msg, 64)
	m.updates = updates

	m.Scanning = true
	m.Selected = false
	m.Err = nil
	m.done = 0
	m.total = scanTotal(m.opts)
	m.ScanStartTime = time.Now()
	m.MinerList.SetItems([]list.Item{})

	opts := m.opts
	go func() {
		scanner := discovery.NewScanner(
			discovery.WithConcurrency(opts.Concurrency),
			discovery.WithProbeTimeout(opts.ProbeTimeout),
			discovery.WithProgress(func(done, total int) {
				// Dropped updates are fine; the next one carries a higher count
				select {
				case updates <- scanProgressMsg{gen: gen, done: done, total: total}:
				default:
				}
			}),
		)

		var miners []*minerapi.DiscoveredMiner
		var err error
		if opts.MDNS {
			miners, err = scanner.ScanMDNS(ctx, discovery.DefaultBrowseTimeout)
		} else {
			miners, err = scanner.Scan(ctx, opts.Subnet, opts.Start, opts.End)
		}

		select {
		case updates <- scanCompleteMsg{gen: gen, miners: miners, err: err}:
		case <-ctx.Done():
		}
	}()

	return waitForScan(ctx.Done(), updates)
}

// scanTotal is the denominator shown before the first progress update. The
// number of mDNS candidates is unknown until the browse ends.
func scanTotal(opts Options) int {
	if opts.MDNS {
		return 0
	}
	return int(opts.End) - int(opts.Start) + 1
}

// waitForScan reads the next message of one scan. It returns nil once that
// scan is cancelled so a replaced scan leaves no reader behind.
func waitForScan(done <-chan struct{}, updates <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-updates:
			return msg
		case <-done:
			return nil
		}
	}
}

// Stop cancels a running scan
func (m *DiscoveryModel) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

// Update handles messages and updates the model
func (m DiscoveryModel) Update(msg tea.Msg) (DiscoveryModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.ManualMode {
			return m.updateManualMode(msg)
		}
		return m.updateNormalMode(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.MinerList.SetWidth(msg.Width - 6)
		m.MinerList.SetHeight(msg.Height - 10)
		return m, nil

	case scanProgressMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if msg.done > m.done {
			m.done = msg.done
		}
		m.total = msg.total
		return m, waitForScan(m.scanDone, m.updates)

	case scanCompleteMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.Scanning = false
		m.Err = msg.err
		items := make([]list.Item, len(msg.miners))
		for i, miner := range msg.miners {
			items[i] = minerItem{miner: miner, alias: m.alias(miner.Address)}
		}
		m.MinerList.SetItems(items)
		return m, nil

	case spinner.TickMsg:
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m DiscoveryModel) alias(address string) string {
	if m.opts.Aliases == nil {
		return ""
	}
	return m.opts.Aliases(address)
}

// updateNormalMode handles keyboard input on the miner list
func (m DiscoveryModel) updateNormalMode(msg tea.KeyMsg) (DiscoveryModel, tea.Cmd) {
	var cmd tea.Cmd

	// While the list filter is open every key belongs to it
	if m.MinerList.FilterState() == list.Filtering {
		m.MinerList, cmd = m.MinerList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.Keys.Enter):
		if !m.Scanning && m.MinerList.SelectedItem() != nil {
			m.Selected = true
		}
		return m, nil

	case key.Matches(msg, m.Keys.Rescan):
		cmd = m.startScan()
		return m, tea.Batch(cmd, m.Spinner.Tick)

	case key.Matches(msg, m.Keys.Manual):
		m.ManualMode = true
		m.InputErr = ""
		m.AddressInput.SetValue("")
		return m, m.AddressInput.Focus()
	}

	if !m.Scanning {
		m.MinerList, cmd = m.MinerList.Update(msg)
	}
	return m, cmd
}

// updateManualMode handles keyboard input while typing an address
func (m DiscoveryModel) updateManualMode(msg tea.KeyMsg) (DiscoveryModel, tea.Cmd) {
	var cmd tea.Cmd

	switch {
	case key.Matches(msg, m.ManualKeys.Cancel):
		m.ManualMode = false
		m.AddressInput.Blur()
		return m, nil

	case key.Matches(msg, m.ManualKeys.Confirm):
		value := strings.TrimSpace(m.AddressInput.Value())
		if ip := net.ParseIP(value); ip == nil || ip.To4() == nil {
			m.InputErr = fmt.Sprintf("%q is not an IPv4 address", value)
			return m, nil
		}

		item := minerItem{miner: &minerapi.DiscoveredMiner{Address: value}, alias: m.alias(value)}
		items := append([]list.Item{item}, m.MinerList.Items()...)
		m.MinerList.SetItems(items)
		m.MinerList.Select(0)
		m.ManualMode = false
		m.AddressInput.Blur()
		return m, nil
	}

	m.AddressInput, cmd = m.AddressInput.Update(msg)
	return m, cmd
}

// SelectedMiner returns the miner the user opened, if any
func (m DiscoveryModel) SelectedMiner() *minerapi.DiscoveredMiner {
	if !m.Selected {
		return nil
	}
	if item, ok := m.MinerList.SelectedItem().(minerItem); ok {
		return item.miner
	}
	return nil
}

// Percent returns the completed fraction of the running scan
func (m DiscoveryModel) Percent() float64 {
	if m.total <= 0 {
		return 0
	}
	return float64(m.done) / float64(m.total)
}

// View renders the discovery screen
func (m DiscoveryModel) View() string {
	width := m.Width
	if width == 0 {
		width = MinTerminalWidth
	}

	var content, helpText string
	switch {
	case m.ManualMode:
		content = m.renderManualEntry()
		helpText = m.Help.View(m.ManualKeys)
	case m.Scanning:
		content = m.renderScanning(width)
		helpText = m.Help.View(m.Keys)
	default:
		content = m.renderResults()
		helpText = m.Help.View(m.Keys)
	}

	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

func (m DiscoveryModel) renderScanning(width int) string {
	elapsed := time.Since(m.ScanStartTime).Round(100 * time.Millisecond)

	target := fmt.Sprintf("%s.%d - %s.%d", m.opts.Subnet, m.opts.Start, m.opts.Subnet, m.opts.End)
	counter := fmt.Sprintf("%d/%d hosts probed • %s", m.done, m.total, elapsed)
	if m.opts.MDNS {
		target = "mDNS (" + discovery.ServiceType + ")"
		counter = elapsed.String()
		if m.total > 0 {
			counter = fmt.Sprintf("%d/%d candidates checked • %s", m.done, m.total, elapsed)
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		TitleStyle.Render(m.Spinner.View()+" SEARCHING FOR MINERS"),
		SubtitleStyle.Render(target),
		"",
		m.ProgressBar.ViewAs(m.Percent()),
		"",
		SubtitleStyle.Render(counter),
		"",
	)
	return lipgloss.Place(width-4, 0, lipgloss.Center, lipgloss.Top, content)
}

func (m DiscoveryModel) renderResults() string {
	var b strings.Builder
	b.WriteString("\n")

	switch {
	case m.Err != nil:
		b.WriteString(RenderError(fmt.Sprintf("Scan failed: %v", m.Err)))
		b.WriteString("\n\n")
		b.WriteString("  Press 'm' to enter a miner address by hand.\n")

	case len(m.MinerList.Items()) == 0:
		warning := lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
		b.WriteString("  " + warning.Render("⚠ No miners found on "+m.opts.Subnet))
		b.WriteString("\n\n")
		b.WriteString("  Troubleshooting:\n")
		b.WriteString("    • Check the subnet matches the network the miners are on\n")
		b.WriteString("    • Confirm a miner's web UI loads in a browser\n")
		b.WriteString("    • Slow Wi-Fi may need a longer probe timeout\n")

	default:
		b.WriteString(m.MinerList.View())
	}
	return b.String()
}

func (m DiscoveryModel) renderManualEntry() string {
	var b strings.Builder
	b.WriteString(RenderTitle("Enter miner address"))
	b.WriteString("\n")
	b.WriteString("  Address: ")
	b.WriteString(m.AddressInput.View())
	b.WriteString("\n")
	if m.InputErr != "" {
		b.WriteString("\n  " + lipgloss.NewStyle().Foreground(ErrorColor).Render(m.InputErr) + "\n")
	}
	return b.String()
}
