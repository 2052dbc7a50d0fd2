package components

import (
	"strings"
	"testing"
	"time"

	"github.com/jscyril/crossfade_player/api"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00"},
		{59 * time.Second, "00:59"},
		{61 * time.Second, "01:01"},
		{1500 * time.Millisecond, "00:02"},
		{12*time.Minute + 5*time.Second, "12:05"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProgressPercent(t *testing.T) {
	p := NewProgressBar(20)
	if p.Percent() != 0 {
		t.Errorf("empty bar Percent() = %v", p.Percent())
	}
	p.SetProgress(30*time.Second, 2*time.Minute)
	if p.Percent() != 0.25 {
		t.Errorf("Percent() = %v, want 0.25", p.Percent())
	}
	p.SetProgress(3*time.Minute, 2*time.Minute)
	if p.Percent() != 1 {
		t.Errorf("overrun Percent() = %v, want 1", p.Percent())
	}
}

func TestGainMeter(t *testing.T) {
	tests := []struct {
		value  float64
		filled int
		label  string
	}{
		{0, 0, "  0%"},
		{0.01, 0, "  1%"},
		{0.5, 5, " 50%"},
		{1, 10, "100%"},
		{1.7, 10, "100%"},
		{-0.2, 0, "  0%"},
	}
	for _, tt := range tests {
		g := NewGainMeter(10)
		g.Value = tt.value
		view := g.View()
		if n := strings.Count(view, "●"); n != tt.filled {
			t.Errorf("gain %v: %d filled dots, want %d", tt.value, n, tt.filled)
		}
		if n := strings.Count(view, "○"); n != 10-tt.filled {
			t.Errorf("gain %v: %d empty dots, want %d", tt.value, n, 10-tt.filled)
		}
		if !strings.HasSuffix(view, tt.label) {
			t.Errorf("gain %v: view %q should end with %q", tt.value, view, tt.label)
		}
	}
}

func TestTrackListCurrent(t *testing.T) {
	l := NewTrackList(5, 80)
	l.SetItems([]api.TrackDescriptor{
		{Name: "One", ResourceID: "one", Kind: "mp3"},
		{Name: "Two", ResourceID: "two", Kind: "mp3"},
		{Name: "Three", ResourceID: "three", Kind: "mp3"},
		{Name: "Four", ResourceID: "four", Kind: "mp3"},
		{Name: "Five", ResourceID: "five", Kind: "mp3"},
	})

	if l.Current != -1 {
		t.Errorf("new list Current = %d, want -1", l.Current)
	}

	l.SetCurrent(4)
	if l.Current != 4 || l.Selected != 4 {
		t.Errorf("Current/Selected = %d/%d, want 4/4", l.Current, l.Selected)
	}
	if l.Offset != 2 {
		t.Errorf("Offset = %d, want the current entry scrolled into view", l.Offset)
	}
	if !strings.Contains(l.View(), "♪") {
		t.Error("view should mark the current entry")
	}

	l.SetCurrent(9)
	if l.Current != -1 {
		t.Errorf("out of range SetCurrent left Current = %d", l.Current)
	}
	if strings.Contains(l.View(), "♪") {
		t.Error("view should not mark any entry")
	}
}

func TestTrackListEmpty(t *testing.T) {
	l := NewTrackList(5, 80)
	if !strings.Contains(l.View(), "No tracks") {
		t.Error("empty list should say so")
	}
	l.MoveDown()
	if l.Selected != 0 {
		t.Errorf("Selected = %d on empty list", l.Selected)
	}
}
