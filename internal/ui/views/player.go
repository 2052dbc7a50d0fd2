package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jscyril/crossfade_player/api"
	"github.com/jscyril/crossfade_player/internal/ui/components"
)

// PlayerView displays the session state and both voice slots
type PlayerView struct {
	Width       int
	Height      int
	Status      api.SchedulerStatus
	FadeSeconds int
	LastEvent   string
	Progress    [2]components.ProgressBar
	Gains       [2]components.GainMeter

	// Styles
	TitleStyle    lipgloss.Style
	TrackStyle    lipgloss.Style
	IdleStyle     lipgloss.Style
	StatusStyle   lipgloss.Style
	ControlsStyle lipgloss.Style
	BorderStyle   lipgloss.Style
}

// NewPlayerView creates a new player view
func NewPlayerView(width, height int) PlayerView {
	v := PlayerView{
		Width:  width,
		Height: height,
		TitleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")),
		TrackStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")),
		IdleStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true),
		StatusStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true),
		ControlsStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1),
		BorderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2),
	}
	for i := range v.Progress {
		v.Progress[i] = components.NewProgressBar(width / 2)
		v.Gains[i] = components.NewGainMeter(10)
	}
	return v
}

// SetStatus updates the session snapshot
func (v *PlayerView) SetStatus(st api.SchedulerStatus) {
	v.Status = st
	for i, vs := range st.Voices {
		v.Progress[i].SetProgress(vs.Position, vs.Duration)
		v.Gains[i].Value = vs.Gain
	}
}

// SetWidth resizes the view and its bars
func (v *PlayerView) SetWidth(width int) {
	v.Width = width
	for i := range v.Progress {
		v.Progress[i].Width = width / 2
	}
}

// Update handles messages
func (v PlayerView) Update(msg tea.Msg) (PlayerView, tea.Cmd) {
	return v, nil
}

// View renders the player view
func (v PlayerView) View() string {
	var sb strings.Builder
	st := v.Status

	var statusIcon string
	switch st.State {
	case api.StatePlaying:
		statusIcon = "▶"
	case api.StateTransitioning:
		statusIcon = "⇄"
	default:
		statusIcon = "⏹"
	}
	sb.WriteString(v.StatusStyle.Render(statusIcon + " "))
	sb.WriteString(v.TitleStyle.Render(stateTitle(st.State)))
	sb.WriteString("\n")

	fade := v.FadeSeconds
	if st.FadeDuration > 0 && (st.State == api.StatePlaying || st.State == api.StateTransitioning) {
		fade = int(st.FadeDuration.Seconds())
	}
	info := fmt.Sprintf("Crossfade: %ds", fade)
	if st.QueueLen > 0 {
		info += fmt.Sprintf("   Track %d/%d   Active slot %s", st.Index+1, st.QueueLen, st.ActiveSlot)
	}
	sb.WriteString(info)
	sb.WriteString("\n\n")

	for i, vs := range st.Voices {
		sb.WriteString(v.renderVoice(i, vs, st))
		sb.WriteString("\n")
	}

	if st.TransitionInFlight {
		in := st.Voices[st.ActiveSlot].Gain
		sb.WriteString(v.StatusStyle.Render(fmt.Sprintf("Crossfading %d%%", int(in*100+0.5))))
		sb.WriteString("\n")
	}
	if v.LastEvent != "" {
		sb.WriteString(v.IdleStyle.Render(v.LastEvent))
		sb.WriteString("\n")
	}

	sb.WriteString(v.ControlsStyle.Render(
		"[Enter] Start  [s] Stop  [+/-] Fade  [Tab] Queue  [q] Quit",
	))

	return v.BorderStyle.Width(v.Width - 4).Render(sb.String())
}

func (v PlayerView) renderVoice(i int, vs api.VoiceStatus, st api.SchedulerStatus) string {
	label := vs.Slot.String()
	if api.Slot(i) == st.ActiveSlot && st.State != api.StateIdle && st.State != api.StateStopped {
		label += "*"
	}

	icon := "⏹"
	if vs.State == api.VoicePlaying {
		icon = "▶"
	}

	if vs.Track == "" {
		return fmt.Sprintf("%-2s %s %s", label, icon, v.IdleStyle.Render("(unbound)"))
	}
	return fmt.Sprintf("%-2s %s %-24s %s  %s",
		label, icon, v.TrackStyle.Render(truncate(vs.Track, 24)),
		v.Gains[i].View(), v.Progress[i].View())
}

func stateTitle(s api.SessionState) string {
	switch s {
	case api.StatePlaying:
		return "Playing"
	case api.StateTransitioning:
		return "Transitioning"
	case api.StateStopped:
		return "Stopped"
	default:
		return "Ready"
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
