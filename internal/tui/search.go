package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/charterdesk/charterdesk/internal/panel"
	"github.com/charterdesk/charterdesk/internal/yacht"
)

type searchField int

const (
	searchFieldDate searchField = iota
	searchFieldType
	searchFieldParty
	searchFieldCount
)

// searchForm holds the text inputs of the search pane. The values live in
// the SearchPanel; the inputs only edit them.
type searchForm struct {
	dateInput  textinput.Model
	partyInput textinput.Model
	field      searchField
	errs       *panel.ValidationError
}

func newSearchForm(s *panel.SearchPanel) searchForm {
	date := textinput.New()
	date.Placeholder = yacht.DateLayout
	date.CharLimit = 10
	date.Width = 12
	date.Prompt = ""
	date.SetValue(s.Date())

	party := textinput.New()
	party.Placeholder = "any"
	party.CharLimit = 3
	party.Width = 4
	party.Prompt = ""
	party.SetValue(s.PartySize())

	return searchForm{dateInput: date, partyInput: party}
}

// typing reports whether a text input has focus.
func (f *searchForm) typing() bool {
	return f.field == searchFieldDate || f.field == searchFieldParty
}

func (f *searchForm) focus() tea.Cmd {
	f.dateInput.Blur()
	f.partyInput.Blur()
	switch f.field {
	case searchFieldDate:
		return f.dateInput.Focus()
	case searchFieldParty:
		return f.partyInput.Focus()
	}
	return nil
}

func (f *searchForm) blur() {
	f.dateInput.Blur()
	f.partyInput.Blur()
}

func (f *searchForm) move(delta int) tea.Cmd {
	f.field = searchField((int(f.field) + delta + int(searchFieldCount)) % int(searchFieldCount))
	return f.focus()
}

// apply copies the input values into the panel.
func (f *searchForm) apply(s *panel.SearchPanel) {
	s.SetDate(f.dateInput.Value())
	s.SetPartySize(f.partyInput.Value())
}

// update routes a key to the focused input and keeps the panel in sync.
func (f *searchForm) update(msg tea.KeyMsg, s *panel.SearchPanel) tea.Cmd {
	var cmd tea.Cmd
	switch f.field {
	case searchFieldDate:
		f.dateInput, cmd = f.dateInput.Update(msg)
	case searchFieldParty:
		f.partyInput, cmd = f.partyInput.Update(msg)
	}
	f.apply(s)
	return cmd
}

func (f *searchForm) render(s *panel.SearchPanel, focused, loading bool, spin string, fetchErr error, width int) string {
	label := func(text string, field searchField) string {
		style := lipgloss.NewStyle().Foreground(SubtleColor)
		if focused && f.field == field {
			style = lipgloss.NewStyle().Foreground(PrimaryColor).Bold(true)
		}
		return style.Render(text)
	}

	typeValue := "‹ " + s.Type() + " ›"
	if focused && f.field == searchFieldType {
		typeValue = lipgloss.NewStyle().Foreground(PrimaryColor).Bold(true).Render(typeValue)
	}

	button := ButtonStyle.Render("Search")
	switch {
	case loading:
		button = DisabledButtonStyle.Render(spin + " Searching")
	case s.SearchDisabled():
		button = DisabledButtonStyle.Render("Search")
	}

	inputs := strings.Join([]string{
		label("Date ", searchFieldDate) + "[" + f.dateInput.View() + "]",
		label("Type ", searchFieldType) + typeValue,
		label("Guests ", searchFieldParty) + "[" + f.partyInput.View() + "]",
		button,
	}, "   ")

	var status string
	switch {
	case f.errs != nil:
		var msgs []string
		for _, fe := range f.errs.Fields {
			msgs = append(msgs, fe.Message)
		}
		status = FieldErrorStyle.Render("✗ " + strings.Join(msgs, "; "))
	case fetchErr != nil:
		status = FieldErrorStyle.Render("✗ " + errorText(fetchErr))
	default:
		status = SubtitleStyle.Render("Pick a date, optionally a type and party size, then press enter.")
	}

	return paneStyle(focused, width).Render(lipgloss.JoinVertical(lipgloss.Left, inputs, status))
}
