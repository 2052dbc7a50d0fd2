package api

import "time"

// TrackDescriptor identifies one entry of the track catalog. Field tags match
// the bundled catalog layout (name, filename, type).
type TrackDescriptor struct {
	Name       string `json:"name" yaml:"name"`
	ResourceID string `json:"filename" yaml:"filename"`
	Kind       string `json:"type" yaml:"type"`
}

// FileName returns the resource file name, e.g. "intro.mp3"
func (d TrackDescriptor) FileName() string {
	if d.Kind == "" {
		return d.ResourceID
	}
	return d.ResourceID + "." + d.Kind
}

// VoiceState is the playback state of a single voice
type VoiceState int

const (
	VoiceStopped VoiceState = iota
	VoicePlaying
	VoicePaused
)

func (s VoiceState) String() string {
	switch s {
	case VoicePlaying:
		return "playing"
	case VoicePaused:
		return "paused"
	default:
		return "stopped"
	}
}

// Slot addresses one of the two reusable voices owned by a scheduler
type Slot int

const (
	SlotA Slot = iota
	SlotB
)

// Other returns the opposite slot
func (s Slot) Other() Slot {
	if s == SlotA {
		return SlotB
	}
	return SlotA
}

func (s Slot) String() string {
	if s == SlotB {
		return "B"
	}
	return "A"
}

// SessionState is the state of the crossfade scheduler
type SessionState int

const (
	StateIdle SessionState = iota
	StatePlaying
	StateTransitioning
	StateStopped
)

func (s SessionState) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StateTransitioning:
		return "transitioning"
	case StateStopped:
		return "stopped"
	default:
		return "idle"
	}
}

// AudioSession describes how the session shares the output device with other
// applications. It is handed to the engine once, at session start.
type AudioSession struct {
	Category         string `json:"category"`
	MixWithOthers    bool   `json:"mix_with_others"`
	DefaultToSpeaker bool   `json:"default_to_speaker"`
}

// VoiceStatus is a snapshot of one voice slot
type VoiceStatus struct {
	Slot     Slot          `json:"slot"`
	Track    string        `json:"track"`
	State    VoiceState    `json:"state"`
	Gain     float64       `json:"gain"`
	Position time.Duration `json:"position"`
	Duration time.Duration `json:"duration"`
}

// SchedulerStatus is a snapshot of a playback session
type SchedulerStatus struct {
	State              SessionState   `json:"state"`
	Index              int            `json:"index"`
	QueueLen           int            `json:"queue_len"`
	ActiveSlot         Slot           `json:"active_slot"`
	FadeDuration       time.Duration  `json:"fade_duration"`
	TransitionInFlight bool           `json:"transition_in_flight"`
	Voices             [2]VoiceStatus `json:"voices"`
}

// EventType identifies scheduler events
type EventType int

const (
	EventSessionStarted EventType = iota
	EventTransitionStarted
	EventTransitionCompleted
	EventSessionStopped
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventSessionStarted:
		return "session_started"
	case EventTransitionStarted:
		return "transition_started"
	case EventTransitionCompleted:
		return "transition_completed"
	case EventSessionStopped:
		return "session_stopped"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// AudioEvent is published on the event bus by the scheduler
type AudioEvent struct {
	Type    EventType
	Payload interface{}
}

// Transition describes a crossfade between two slots
type Transition struct {
	From  Slot
	To    Slot
	Index int
	Track string
}
