package models

import "time"

// Session tracks one participant's in-progress experiment on the server:
// which system they were assigned first and when each trial started.
type Session struct {
	ID            string      `json:"id"`
	FirstSystem   DisplayMode `json:"first_system"`
	CurrentTrial  int         `json:"current_trial"`
	Trial1Started time.Time   `json:"trial1_started,omitempty"`
	Trial2Started time.Time   `json:"trial2_started,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

// SystemForTrial returns the display mode for trial 1 or 2 under the
// assigned counterbalanced order.
func (s *Session) SystemForTrial(trial int) DisplayMode {
	second := DisplayText
	if s.FirstSystem == DisplayText {
		second = DisplayColoured
	}
	if trial == 2 {
		return second
	}
	return s.FirstSystem
}
