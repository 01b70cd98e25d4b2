package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Detail is one key/value line in a header or result box. A slice of
// details keeps its order, unlike a map.
type Detail struct {
	Key   string
	Value string
}

// Printer provides methods for printing UI components to a writer.
// When Plain is set, boxes are replaced by plain text lines so output stays
// readable when piped.
type Printer struct {
	out   io.Writer
	width int
	Plain bool
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used. Plain mode is enabled when w is not a
// terminal.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	plain := true
	if f, ok := w.(*os.File); ok {
		plain = !IsTerminal(f)
	}
	return &Printer{
		out:   w,
		width: GetTerminalWidth(),
		Plain: plain,
	}
}

// Width returns the current terminal width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// Print writes content to the output
func (p *Printer) Print(content string) {
	_, _ = fmt.Fprint(p.out, content)
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Printf writes formatted content
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title, command string, params []Detail) {
	if p.Plain {
		return
	}
	p.Println(RenderHeader(title, command, params, p.width))
	p.Newline()
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details []Detail) {
	if p.Plain {
		p.Println(SuccessMarker + " " + title)
		p.printPlainDetails(details)
		return
	}
	p.Println(RenderSuccessBox(title, details, p.width))
}

// PrintWarning prints a warning result box
func (p *Printer) PrintWarning(title string, details []Detail) {
	if p.Plain {
		p.Println(WarningMarker + " " + title)
		p.printPlainDetails(details)
		return
	}
	p.Println(RenderWarningBox(title, details, p.width))
}

// PrintError prints an error result box with troubleshooting tips
func (p *Printer) PrintError(title string, err error, troubleshooting []string) {
	if p.Plain {
		p.Println(FailureMarker + " " + title)
		if err != nil {
			p.Println("  Error: " + err.Error())
		}
		for _, tip := range troubleshooting {
			p.Println("  - " + tip)
		}
		return
	}
	p.Println(RenderErrorBox(title, err, troubleshooting, p.width))
}

func (p *Printer) printPlainDetails(details []Detail) {
	for _, d := range details {
		p.Printf("  %s: %s\n", d.Key, d.Value)
	}
}

// RenderHeader renders a command header box
func RenderHeader(title, command string, params []Detail, width int) string {
	titleLine := HeaderTitleStyle.Render(strings.ToUpper(title))
	commandLine := HeaderCommandStyle.Render(command)
	sections := []string{titleLine, commandLine}

	if len(params) > 0 {
		sections = append(sections, RenderHorizontalDivider(width-6, "─"))
		for _, param := range params {
			sections = append(sections,
				HeaderParamKeyStyle.Render(param.Key+":")+" "+HeaderParamValueStyle.Render(param.Value))
		}
	}

	return HeaderBorderStyle(width).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// RenderSuccessBox renders a success result box
func RenderSuccessBox(title string, details []Detail, width int) string {
	titleLine := SuccessTitleStyle.Render(fmt.Sprintf("   %s  SUCCESS  ─  %s", SuccessMarker, title))
	return resultBoxStyle(width, SuccessColor).Render(renderResultBody(titleLine, details))
}

// RenderWarningBox renders a warning result box
func RenderWarningBox(title string, details []Detail, width int) string {
	titleLine := WarningTitleStyle.Render(fmt.Sprintf("   %s  WARNING  ─  %s", WarningMarker, title))
	return resultBoxStyle(width, WarningColor).Render(renderResultBody(titleLine, details))
}

func renderResultBody(titleLine string, details []Detail) string {
	lines := []string{"", titleLine, ""}
	for _, d := range details {
		lines = append(lines, ResultKeyStyle.Render("   "+d.Key+":")+" "+ResultValueStyle.Render(d.Value))
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// RenderErrorBox renders an error result box with troubleshooting
func RenderErrorBox(title string, err error, troubleshooting []string, width int) string {
	titleLine := ErrorTitleStyle.Render(fmt.Sprintf("   %s  FAILED  ─  %s", FailureMarker, title))
	lines := []string{"", titleLine, ""}

	if err != nil {
		lines = append(lines, ErrorMessageStyle.Width(width-10).Render("   Error: "+err.Error()), "")
	}

	if len(troubleshooting) > 0 {
		troubleLines := []string{TroubleshootingTitleStyle.Render("Troubleshooting:"), ""}
		for _, tip := range troubleshooting {
			troubleLines = append(troubleLines, TroubleshootingItemStyle.Render("  • "+tip))
		}
		lines = append(lines, TroubleshootingBoxStyle(width).Render(strings.Join(troubleLines, "\n")), "")
	}

	return resultBoxStyle(width, ErrorColor).Render(strings.Join(lines, "\n"))
}
