package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/charterdesk/charterdesk/internal/panel"
	"github.com/charterdesk/charterdesk/internal/ui"
)

// detailForm holds the guest inputs of the reservation form.
type detailForm struct {
	nameInput  textinput.Model
	emailInput textinput.Model
	field      int // 0 name, 1 email
	errs       *panel.ValidationError
}

func newDetailForm() detailForm {
	name := textinput.New()
	name.Placeholder = "Full name"
	name.CharLimit = 80
	name.Width = 28
	name.Prompt = ""

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 120
	email.Width = 28
	email.Prompt = ""

	return detailForm{nameInput: name, emailInput: email}
}

// open prefills the inputs and focuses the name field.
func (f *detailForm) open(name, email string) tea.Cmd {
	f.nameInput.SetValue(name)
	f.emailInput.SetValue(email)
	f.errs = nil
	f.field = 0
	return f.focus()
}

func (f *detailForm) focus() tea.Cmd {
	f.nameInput.Blur()
	f.emailInput.Blur()
	if f.field == 0 {
		return f.nameInput.Focus()
	}
	return f.emailInput.Focus()
}

func (f *detailForm) blur() {
	f.nameInput.Blur()
	f.emailInput.Blur()
}

func (f *detailForm) toggle() tea.Cmd {
	f.field = 1 - f.field
	return f.focus()
}

// apply copies the inputs into the panel.
func (f *detailForm) apply(p *panel.DetailPanel) {
	p.SetGuestName(f.nameInput.Value())
	p.SetGuestEmail(f.emailInput.Value())
}

func (f *detailForm) update(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	if f.field == 0 {
		f.nameInput, cmd = f.nameInput.Update(msg)
	} else {
		f.emailInput, cmd = f.emailInput.Update(msg)
	}
	return cmd
}

func (f *detailForm) fieldError(field string) string {
	if f.errs == nil {
		return ""
	}
	for _, fe := range f.errs.Fields {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

func renderBanner(b panel.Banner, width int) string {
	if !b.Visible() {
		return ""
	}
	style := ErrorBannerStyle
	switch b.Kind {
	case panel.BannerSuccess:
		style = SuccessBannerStyle
	case panel.BannerNotAvailable:
		style = WarningBannerStyle
	}
	text := b.Title
	if b.Message != "" {
		text += "\n" + lipgloss.NewStyle().Bold(false).Render(b.Message)
	}
	return style.Width(max(width-2, 10)).Render(text)
}

func (f *detailForm) render(p *panel.DetailPanel, focused bool, spin string, width, height int) string {
	inner := max(width-4, 10)
	var b strings.Builder

	r, ok := p.Yacht()
	if !ok {
		b.WriteString(TitleStyle.Render("Details"))
		b.WriteString("\n\n")
		b.WriteString(SubtitleStyle.Render("Select a yacht to see its details."))
	} else {
		b.WriteString(TitleStyle.Render(truncate(r.Name, inner)))
		b.WriteString("\n")
		row := func(label, value string) {
			b.WriteString(LabelStyle.Render(label) + value + "\n")
		}
		row("Type", r.Type)
		row("Guests", fmt.Sprintf("up to %d", r.Capacity))
		row("Length", fmt.Sprintf("%.1f m", r.Length))
		row("Price", ui.FormatPrice(r.Price))
		row("Date", r.ReservationDate)
		if r.PartySize > 0 {
			row("Party", fmt.Sprintf("%d", r.PartySize))
		}
		if r.Available {
			row("Status", AvailableStyle.Render("Available"))
		} else {
			row("Status", UnavailableStyle.Render("Not available"))
		}
		if r.Description != "" {
			b.WriteString(lipgloss.NewStyle().Width(inner).Foreground(SubtleColor).Render(r.Description))
			b.WriteString("\n")
		}
	}

	if banner := renderBanner(p.Banner(), inner); banner != "" {
		b.WriteString("\n")
		b.WriteString(banner)
		b.WriteString("\n")
	}

	switch {
	case p.FormOpen():
		b.WriteString("\n")
		b.WriteString(TitleStyle.Render("Reservation"))
		b.WriteString("\n")
		b.WriteString(LabelStyle.Render("Name") + "[" + f.nameInput.View() + "]\n")
		if msg := f.fieldError(panel.FieldGuestName); msg != "" {
			b.WriteString(FieldErrorStyle.Render("  "+msg) + "\n")
		}
		b.WriteString(LabelStyle.Render("Email") + "[" + f.emailInput.View() + "]\n")
		if msg := f.fieldError(panel.FieldGuestEmail); msg != "" {
			b.WriteString(FieldErrorStyle.Render("  "+msg) + "\n")
		}
		if msg := f.fieldError(panel.FieldDate); msg != "" {
			b.WriteString(FieldErrorStyle.Render("  "+msg) + "\n")
		}
		if p.Submitting() {
			b.WriteString(SpinnerStyle.Render(spin) + " Submitting reservation...")
		} else {
			button := ButtonStyle.Render("Reserve")
			if p.GuestInfoMissing() {
				button = DisabledButtonStyle.Render("Reserve")
			}
			b.WriteString(button + "  " + SubtitleStyle.Render("esc to cancel"))
		}
	case ok && r.Available:
		b.WriteString("\n")
		b.WriteString(SubtitleStyle.Render("Press r to reserve this yacht."))
	}

	return paneStyle(focused, width).
		Height(max(height-2, 1)).
		MaxHeight(max(height, 3)).
		Render(b.String())
}
