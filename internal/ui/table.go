package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/muurk/axectl/internal/minerapi"
)

// AliasLookup returns the user alias for an address, or "" if there is none
type AliasLookup func(address string) string

var minerColumns = []string{"ADDRESS", "HOSTNAME", "MODEL", "FIRMWARE", "ALIAS"}

// minerRow returns the table cells for one miner. Missing values are "-".
func minerRow(m *minerapi.DiscoveredMiner, aliases AliasLookup) []string {
	alias := ""
	if aliases != nil {
		alias = aliases(m.Address)
	}
	if alias == "" {
		alias = "-"
	}
	return []string{
		m.Address,
		deref(m.Hostname),
		deref(m.Model),
		deref(m.FirmwareVersion),
		alias,
	}
}

func deref(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

// RenderMinerTable renders discovered miners as a bordered table
func RenderMinerTable(miners []*minerapi.DiscoveredMiner, aliases AliasLookup) string {
	rows := make([][]string, 0, len(miners))
	for _, m := range miners {
		rows = append(rows, minerRow(m, aliases))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(MutedColor)).
		Headers(minerColumns...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			if row >= 0 && row < len(rows) && rows[row][col] == "-" {
				return TableMissingStyle
			}
			return TableCellStyle
		})

	return t.Render()
}

// RenderMinerPlain renders one tab-separated line per miner for pipes and
// scripts. There is no header line.
func RenderMinerPlain(miners []*minerapi.DiscoveredMiner, aliases AliasLookup) string {
	var b strings.Builder
	for _, m := range miners {
		b.WriteString(strings.Join(minerRow(m, aliases), "\t"))
		b.WriteString("\n")
	}
	return b.String()
}
