package models

import "time"

// TrialResult records one completed trial. Duration is in milliseconds,
// matching the historical record format.
type TrialResult struct {
	System   DisplayMode `json:"system"`
	Prompt   string      `json:"prompt"`
	Duration int64       `json:"duration"`
}

// ExperimentResult is one participant's full record: both trials plus which
// system they saw first. Constructed once after the second trial completes
// and never mutated afterward.
type ExperimentResult struct {
	Timestamp   string      `json:"timestamp"`
	FirstSystem DisplayMode `json:"firstSystem"`
	Trial1      TrialResult `json:"trial1"`
	Trial2      TrialResult `json:"trial2"`
}

// Validate checks the contract the persistence layer relies on.
func (r ExperimentResult) Validate() error {
	if _, err := time.Parse(time.RFC3339, r.Timestamp); err != nil {
		return ErrInvalidTimestamp
	}
	if !r.FirstSystem.Valid() {
		return ErrInvalidSystem
	}
	if !r.Trial1.System.Valid() || !r.Trial2.System.Valid() {
		return ErrInvalidSystem
	}
	if r.Trial1.Duration < 0 || r.Trial2.Duration < 0 {
		return ErrInvalidDuration
	}
	return nil
}
