package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charterdesk/charterdesk/internal/yacht"
)

// Printer writes UI components to a writer.
// This is the primary way commands should output styled content.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{out: w, width: GetTerminalWidth()}
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.out
}

// Width returns the current terminal width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// SetWidth overrides the rendering width
func (p *Printer) SetWidth(width int) *Printer {
	p.width = width
	return p
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title, command string, params ...Param) {
	p.Println(NewHeader(title, command, params...).SetWidth(p.width).Render())
	p.Newline()
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details ...Param) {
	p.Println(NewSuccessResult(title, details...).SetWidth(p.width).Render())
}

// PrintWarning prints a warning result box
func (p *Printer) PrintWarning(title string, details ...Param) {
	p.Println(NewWarningResult(title, details...).SetWidth(p.width).Render())
}

// PrintError prints an error result box with troubleshooting tips
func (p *Printer) PrintError(title string, err error, troubleshooting []string) {
	p.Println(NewFailureResult(title, err, troubleshooting).SetWidth(p.width).Render())
}

// PrintYachts prints records as a table, or a short notice when there are none.
func (p *Printer) PrintYachts(records []yacht.Record) {
	if len(records) == 0 {
		p.Println(HintStyle.Render("  No yachts match these criteria."))
		return
	}
	p.Println(RenderYachtTable(records, p.width))
	available := 0
	for _, r := range records {
		if r.Available {
			available++
		}
	}
	p.Println(HintStyle.Render(fmt.Sprintf("  %d yachts, %d available", len(records), available)))
}

// PrintTable prints an arbitrary table.
func (p *Printer) PrintTable(headers []string, rows [][]string) {
	p.Println(RenderTable(headers, rows, p.width, nil))
}

// PrintJSON writes v as indented JSON.
func (p *Printer) PrintJSON(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintPleaseWait prints a styled message for long-running operations.
func (p *Printer) PrintPleaseWait(message, durationHint string) {
	line := PleaseWaitStyle.Render("⏳ " + message)
	if durationHint != "" {
		line += " " + HintStyle.Render("("+durationHint+")")
	}
	p.Println(line + PleaseWaitStyle.UnsetPaddingLeft().Render("..."))
}
