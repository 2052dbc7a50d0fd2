package ui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jscyril/crossfade_player/api"
	"github.com/jscyril/crossfade_player/internal/config"
	"github.com/jscyril/crossfade_player/internal/ui/views"
)

// Controller is the playback surface the UI drives
type Controller interface {
	Start(ctx context.Context, tracks []api.TrackDescriptor, fade time.Duration) error
	Stop()
	Status() api.SchedulerStatus
	RampTick() time.Duration
}

// ViewType represents the current active view
type ViewType int

const (
	ViewPlayer ViewType = iota
	ViewQueue
)

// Model is the main bubbletea model
type Model struct {
	// Dimensions
	width  int
	height int

	// Current view
	activeView ViewType

	// Views
	playerView views.PlayerView
	queueView  views.QueueView

	// Components
	player      Controller
	tracks      []api.TrackDescriptor
	fadeSeconds int
	events      <-chan api.AudioEvent
	starting    bool

	// State
	ctx    context.Context
	cancel context.CancelFunc
	err    error

	// Styles
	tabStyle       lipgloss.Style
	activeTabStyle lipgloss.Style
}

// TickMsg is sent periodically to update the UI
type TickMsg time.Time

// EventMsg carries a scheduler event
type EventMsg struct {
	Event api.AudioEvent
}

// StartedMsg reports the result of a start request
type StartedMsg struct {
	Err error
}

// NewModel creates a new application model. events may be nil.
func NewModel(player Controller, tracks []api.TrackDescriptor, fadeSeconds int, events <-chan api.AudioEvent) Model {
	ctx, cancel := context.WithCancel(context.Background())

	m := Model{
		width:       80,
		height:      24,
		activeView:  ViewPlayer,
		player:      player,
		tracks:      tracks,
		fadeSeconds: clampFade(fadeSeconds),
		events:      events,
		ctx:         ctx,
		cancel:      cancel,
		tabStyle: lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(lipgloss.Color("240")),
		activeTabStyle: lipgloss.NewStyle().
			Padding(0, 2).
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Background(lipgloss.Color("236")),
	}

	m.playerView = views.NewPlayerView(m.width, 14)
	m.playerView.FadeSeconds = m.fadeSeconds
	m.queueView = views.NewQueueView(m.width, m.height-4)
	m.queueView.SetTracks(tracks)
	m.refresh()

	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		m.listenForEvents(),
	)
}

// tickCmd returns a command that ticks every 250ms
func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// listenForEvents returns a command that waits for the next scheduler event
func (m Model) listenForEvents() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case event, ok := <-m.events:
			if !ok {
				return nil
			}
			return EventMsg{Event: event}
		case <-m.ctx.Done():
			return nil
		}
	}
}

// startCmd starts a session off the update loop; loading may take a while
func (m Model) startCmd() tea.Cmd {
	player, ctx, tracks := m.player, m.ctx, m.tracks
	fade := time.Duration(m.fadeSeconds) * time.Second
	return func() tea.Msg {
		return StartedMsg{Err: player.Start(ctx, tracks, fade)}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateViewSizes()

	case TickMsg:
		m.refresh()
		cmds = append(cmds, tickCmd())

	case EventMsg:
		m.playerView.LastEvent = describeEvent(msg.Event)
		if msg.Event.Type == api.EventError {
			if err, ok := msg.Event.Payload.(error); ok {
				m.err = err
			}
		}
		m.refresh()
		cmds = append(cmds, m.listenForEvents())

	case StartedMsg:
		m.starting = false
		m.err = msg.Err
		m.refresh()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.player.Stop()
			m.cancel()
			return m, tea.Quit

		case "1":
			m.activeView = ViewPlayer
		case "2":
			m.activeView = ViewQueue
		case "tab":
			m.activeView = (m.activeView + 1) % 2

		case "enter", " ":
			if !m.starting && !m.active() {
				m.starting = true
				m.err = nil
				m.playerView.LastEvent = "Loading tracks..."
				cmds = append(cmds, m.startCmd())
			}

		case "s":
			m.player.Stop()
			m.refresh()

		case "+", "=":
			m.stepFade(1)
		case "-":
			m.stepFade(-1)

		default:
			if m.activeView == ViewQueue {
				m.queueView, _ = m.queueView.Update(msg)
			}
		}
	}

	return m, tea.Batch(cmds...)
}

// active reports whether a session is playing
func (m Model) active() bool {
	s := m.player.Status().State
	return s == api.StatePlaying || s == api.StateTransitioning
}

// stepFade moves the fade for the next session to the nearest value in dir
// that the ramp tick divides evenly. A running session keeps the fade it was
// started with.
func (m *Model) stepFade(dir int) {
	if m.active() || m.starting {
		return
	}
	tick := m.player.RampTick()
	for sec := m.fadeSeconds + dir; sec >= config.MinFadeSeconds && sec <= config.MaxFadeSeconds; sec += dir {
		if fadeFits(sec, tick) {
			m.fadeSeconds = sec
			m.playerView.FadeSeconds = sec
			return
		}
	}
}

func fadeFits(seconds int, tick time.Duration) bool {
	if tick <= 0 {
		return true
	}
	return (time.Duration(seconds)*time.Second)%tick == 0
}

func (m *Model) refresh() {
	st := m.player.Status()
	m.playerView.SetStatus(st)
	if st.State == api.StatePlaying || st.State == api.StateTransitioning {
		m.queueView.SetCurrent(st.Index)
	} else {
		m.queueView.SetCurrent(-1)
	}
}

// updateViewSizes updates view dimensions
func (m *Model) updateViewSizes() {
	m.playerView.SetWidth(m.width)
	m.queueView.SetSize(m.width, m.height-4)
}

// View renders the UI
func (m Model) View() string {
	var sb string

	sb += m.renderTabs()
	sb += "\n"

	switch m.activeView {
	case ViewPlayer:
		sb += m.playerView.View()
	case ViewQueue:
		sb += m.queueView.View()
	}

	if m.err != nil {
		errorStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
		sb += "\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	return sb
}

// renderTabs renders the tab bar
func (m Model) renderTabs() string {
	tabs := []string{"[1] Player", "[2] Queue"}

	var rendered []string
	for i, tab := range tabs {
		if ViewType(i) == m.activeView {
			rendered = append(rendered, m.activeTabStyle.Render(tab))
		} else {
			rendered = append(rendered, m.tabStyle.Render(tab))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func describeEvent(ev api.AudioEvent) string {
	switch ev.Type {
	case api.EventSessionStarted:
		if t, ok := ev.Payload.(api.Transition); ok {
			return "Started with " + t.Track
		}
		return "Started"
	case api.EventTransitionStarted:
		if t, ok := ev.Payload.(api.Transition); ok {
			return fmt.Sprintf("Fading %s → %s: %s", t.From, t.To, t.Track)
		}
	case api.EventTransitionCompleted:
		if t, ok := ev.Payload.(api.Transition); ok {
			return fmt.Sprintf("Now playing %s on %s", t.Track, t.To)
		}
	case api.EventSessionStopped:
		return "Stopped"
	case api.EventError:
		return "Session failed"
	}
	return ""
}

func clampFade(seconds int) int {
	if seconds < config.MinFadeSeconds {
		return config.MinFadeSeconds
	}
	if seconds > config.MaxFadeSeconds {
		return config.MaxFadeSeconds
	}
	return seconds
}

// Run starts the bubbletea program and blocks until the user quits
func Run(player Controller, tracks []api.TrackDescriptor, fadeSeconds int, events <-chan api.AudioEvent) error {
	model := NewModel(player, tracks, fadeSeconds, events)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
