package models

// TableShape is purely cosmetic; it never affects availability.
type TableShape string

const (
	ShapeCircle TableShape = "circle"
	ShapeSquare TableShape = "square"
)

// Table is one table in a generated floor plan.
type Table struct {
	ID       int        `json:"id"`
	Shape    TableShape `json:"shape"`
	Capacity int        `json:"capacity"`
}

// SeatOffset positions one seat marker relative to the table center, in
// units of the table radius. The UI scales these to pixels.
type SeatOffset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// seatLayouts по одному набору позиций на вместимость
var seatLayouts = map[int][]SeatOffset{
	CapacitySmall: {
		{X: 0, Y: -1.4},
		{X: 1.4, Y: 0},
		{X: 0, Y: 1.4},
		{X: -1.4, Y: 0},
	},
	CapacityLarge: {
		{X: 0, Y: -1.4},
		{X: 1.2, Y: -0.7},
		{X: 1.2, Y: 0.7},
		{X: 0, Y: 1.4},
		{X: -1.2, Y: 0.7},
		{X: -1.2, Y: -0.7},
	},
}

// SeatOffsetsFor returns seat marker positions for the given capacity, or nil
// for an unsupported capacity. The result is a copy.
func SeatOffsetsFor(capacity int) []SeatOffset {
	layout, ok := seatLayouts[capacity]
	if !ok {
		return nil
	}
	out := make([]SeatOffset, len(layout))
	copy(out, layout)
	return out
}
