package components

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ProgressBar represents a progress bar component
type ProgressBar struct {
	Width       int
	Current     time.Duration
	Total       time.Duration
	BarChar     string
	EmptyChar   string
	ShowTime    bool
	Style       lipgloss.Style
	FilledStyle lipgloss.Style
	EmptyStyle  lipgloss.Style
}

// NewProgressBar creates a new progress bar
func NewProgressBar(width int) ProgressBar {
	return ProgressBar{
		Width:       width,
		BarChar:     "█",
		EmptyChar:   "░",
		ShowTime:    true,
		Style:       lipgloss.NewStyle(),
		FilledStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		EmptyStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// Update handles messages for the progress bar
func (p ProgressBar) Update(msg tea.Msg) (ProgressBar, tea.Cmd) {
	return p, nil
}

// SetProgress sets the current position
func (p *ProgressBar) SetProgress(current, total time.Duration) {
	p.Current = current
	p.Total = total
}

// Percent returns the filled fraction in [0,1]
func (p ProgressBar) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	percent := float64(p.Current) / float64(p.Total)
	if percent > 1 {
		percent = 1
	}
	if percent < 0 {
		percent = 0
	}
	return percent
}

// View renders the progress bar
func (p ProgressBar) View() string {
	var sb strings.Builder

	barWidth := p.Width - 14 // Leave room for time display
	if barWidth < 10 {
		barWidth = 10
	}

	filled := int(float64(barWidth) * p.Percent())
	empty := barWidth - filled

	sb.WriteString(p.FilledStyle.Render(strings.Repeat(p.BarChar, filled)))
	sb.WriteString(p.EmptyStyle.Render(strings.Repeat(p.EmptyChar, empty)))

	if p.ShowTime {
		sb.WriteString(" ")
		sb.WriteString(FormatDuration(p.Current))
		sb.WriteString("/")
		sb.WriteString(FormatDuration(p.Total))
	}

	return p.Style.Render(sb.String())
}

// GainMeter shows a voice gain in [0,1] as a row of dots
type GainMeter struct {
	Steps       int
	Value       float64
	FilledStyle lipgloss.Style
	EmptyStyle  lipgloss.Style
}

// NewGainMeter creates a meter with the given number of dots
func NewGainMeter(steps int) GainMeter {
	return GainMeter{
		Steps:       steps,
		FilledStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		EmptyStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// View renders the meter followed by the gain as a percentage
func (g GainMeter) View() string {
	v := g.Value
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	filled := int(v*float64(g.Steps) + 0.5)
	empty := g.Steps - filled

	return g.FilledStyle.Render(strings.Repeat("●", filled)) +
		g.EmptyStyle.Render(strings.Repeat("○", empty)) +
		fmt.Sprintf(" %3d%%", int(v*100+0.5))
}

// FormatDuration formats a duration as MM:SS
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%02d:%02d", m, s)
}
