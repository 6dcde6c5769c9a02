package models

// BookingSlot is a pre-existing reservation occupying a table for the
// half-open interval [Start, End). Times are "HH:MM" 24-hour clock strings;
// End is always Start plus the fixed service duration.
type BookingSlot struct {
	TableID int    `json:"table_id"`
	Start   string `json:"start"`
	End     string `json:"end"`
}
