package models

import "fmt"

// DisplayMode selects how the UI conveys table state. It is orthogonal to
// generation and availability logic.
type DisplayMode string

const (
	DisplayColoured DisplayMode = "coloured"
	DisplayText     DisplayMode = "text"
)

// Valid reports whether the mode is one of the two supported display modes.
func (m DisplayMode) Valid() bool {
	return m == DisplayColoured || m == DisplayText
}

// Prompt is the task shown to the participant.
type Prompt struct {
	PartySize int    `json:"party_size"`
	Time      string `json:"time"`
}

// Text renders the prompt the way the UI displays it and the way it is
// recorded in result records.
func (p Prompt) Text() string {
	return fmt.Sprintf("Book a table for %d people at %s", p.PartySize, p.Time)
}

// Scenario is one trial's complete bundle handed to the interaction layer.
type Scenario struct {
	DisplayMode DisplayMode   `json:"display_mode"`
	Tables      []Table       `json:"tables"`
	Bookings    []BookingSlot `json:"bookings"`
	Prompt      Prompt        `json:"prompt"`
}
