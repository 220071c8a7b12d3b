// Package report renders the `check` diagnostic: what is due today, what is
// coming up and what a run would send.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/starford/dosebell/internal/dispatch"
	"github.com/starford/dosebell/internal/models"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("183")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

// Report is the collected diagnostic state for one day.
type Report struct {
	Date     string
	Mode     string
	Path     string
	Contacts []models.Record
	Due      []models.Match
	Upcoming []models.Upcoming
	Preview  *dispatch.SMSPreview
}

// Build gathers the report from svc. A missing data directory is an error,
// since nothing else can be shown.
func Build(svc *dispatch.Service, upcomingLimit int) (*Report, error) {
	repo := svc.Repo()
	today := svc.Clock().TodayKey()

	records, err := repo.Records()
	if err != nil {
		return nil, err
	}
	upcoming, err := repo.Upcoming(today, upcomingLimit)
	if err != nil {
		return nil, err
	}
	preview, err := svc.PreviewSMS()
	if err != nil {
		return nil, err
	}

	mode := dispatch.ModeMulti
	if repo.Legacy() {
		mode = dispatch.ModeLegacy
	}
	return &Report{
		Date:     today,
		Mode:     mode,
		Path:     repo.Path(),
		Contacts: records,
		Due:      repo.Due(today),
		Upcoming: upcoming,
		Preview:  preview,
	}, nil
}

// Printer writes reports, styled or plain.
type Printer struct {
	colored bool
}

// NewPrinter creates a Printer. Pass colored=false for pipes and tests.
func NewPrinter(colored bool) *Printer {
	return &Printer{colored: colored}
}

func (p *Printer) style(s lipgloss.Style, text string) string {
	if !p.colored {
		return text
	}
	return s.Render(text)
}

// Print writes rep to w.
func (p *Printer) Print(w io.Writer, rep *Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", p.style(headerStyle, "📅 Reminder check for "+rep.Date))
	fmt.Fprintf(&b, "%s\n\n", p.style(dimStyle, fmt.Sprintf("source: %s (%s, %d contact(s))", rep.Path, rep.Mode, len(rep.Contacts))))

	b.WriteString(p.style(sectionStyle, "Due today") + "\n")
	if len(rep.Due) == 0 {
		b.WriteString("  " + p.style(successStyle, "✅ No medications scheduled for today") + "\n")
	}
	for i, m := range rep.Due {
		line := fmt.Sprintf("  %d. %s: %s at %s", i+1, m.Name, m.Reminder.Tablet, m.Reminder.Time)
		if m.Reminder.Notes != "" {
			line += " (" + m.Reminder.Notes + ")"
		}
		if m.Phone == "" {
			line += " " + p.style(warningStyle, "[no phone]")
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n" + p.style(sectionStyle, "Upcoming") + "\n")
	if len(rep.Upcoming) == 0 {
		b.WriteString("  " + p.style(dimStyle, "nothing scheduled") + "\n")
	}
	for _, u := range rep.Upcoming {
		fmt.Fprintf(&b, "  %s  %-12s %s at %s\n", u.Date, u.Name, u.Tablet, u.Time)
	}

	b.WriteString("\n" + p.style(sectionStyle, "SMS preview ("+rep.Preview.MessageType+")") + "\n")
	if len(rep.Preview.Messages) == 0 {
		b.WriteString("  " + p.style(dimStyle, "nothing would be sent") + "\n")
	}
	for _, m := range rep.Preview.Messages {
		to := m.Phone
		if to == "" {
			to = "(no phone)"
		}
		b.WriteString(p.style(dimStyle, "→ "+to) + "\n")
		if p.colored {
			b.WriteString(boxStyle.Render(m.Body) + "\n")
		} else {
			b.WriteString(indent(m.Body) + "\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}

