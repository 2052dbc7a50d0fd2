package views

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jscyril/crossfade_player/api"
	"github.com/jscyril/crossfade_player/internal/ui/components"
)

// QueueView lists the tracks of the session in playback order
type QueueView struct {
	Width       int
	Height      int
	TrackList   components.TrackList
	BorderStyle lipgloss.Style
	HintStyle   lipgloss.Style
}

// NewQueueView creates a new queue view
func NewQueueView(width, height int) QueueView {
	trackList := components.NewTrackList(height-6, width-6)
	trackList.Title = "Queue (loops)"

	return QueueView{
		Width:     width,
		Height:    height,
		TrackList: trackList,
		BorderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2),
		HintStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// SetTracks sets the queued tracks
func (v *QueueView) SetTracks(tracks []api.TrackDescriptor) {
	v.TrackList.SetItems(tracks)
}

// SetCurrent marks the playing entry; -1 clears the mark
func (v *QueueView) SetCurrent(index int) {
	v.TrackList.SetCurrent(index)
}

// SetSize resizes the view
func (v *QueueView) SetSize(width, height int) {
	v.Width = width
	v.Height = height
	v.TrackList.Width = width - 6
	v.TrackList.Height = height - 6
}

// Update handles messages
func (v QueueView) Update(msg tea.Msg) (QueueView, tea.Cmd) {
	var cmd tea.Cmd
	v.TrackList, cmd = v.TrackList.Update(msg)
	return v, cmd
}

// View renders the queue view
func (v QueueView) View() string {
	var sb strings.Builder
	sb.WriteString(v.TrackList.View())
	sb.WriteString("\n\n")
	sb.WriteString(v.HintStyle.Render("[↑↓] Scroll"))
	return v.BorderStyle.Width(v.Width - 4).Render(sb.String())
}
