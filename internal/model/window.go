package model

import "time"

// LookbackMonths is the fixed scan horizon. Every scan looks exactly six
// months back from the moment it starts; the window is anchored once and
// reused by every phase of the same workflow.
const LookbackMonths = 6

// WindowLabel tags reports and notifications with the fixed timeframe.
const WindowLabel = "last_6_months"

// TimeWindow is an immutable closed interval [Start, End].
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewLookbackWindow anchors a six-month window ending at now.
func NewLookbackWindow(now time.Time) TimeWindow {
	return TimeWindow{
		Start: now.AddDate(0, -LookbackMonths, 0),
		End:   now,
	}
}

// Contains reports whether t falls inside the window, boundaries included.
// Zero timestamps never qualify.
func (w TimeWindow) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	return !t.Before(w.Start) && !t.After(w.End)
}

func (w TimeWindow) Label() string {
	return WindowLabel
}

func (w TimeWindow) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}
