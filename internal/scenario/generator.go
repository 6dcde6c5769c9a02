// Package scenario generates randomized study trials: a restaurant floor
// plan, a task prompt, and a set of pre-existing bookings that always leaves
// at least one suitable table free at the prompted time.
package scenario

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/samber/lo"

	"tablelab/internal/models"
	"tablelab/internal/timeslot"
)

// Generator builds scenarios from an injected random source so tests can
// reproduce exact layouts deterministically. Safe for concurrent use; the
// rng is guarded by a mutex.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func New(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// NewSeeded is shorthand for New with a seeded source.
func NewSeeded(seed int64) *Generator {
	return New(rand.New(rand.NewSource(seed)))
}

// Layout returns a fresh randomized floor plan.
func (g *Generator) Layout() []models.Table {
	g.mu.Lock()
	defer g.mu.Unlock()
	return generateLayout(g.rng)
}

// FirstSystem flips a fair coin to counterbalance which display mode a
// participant sees first.
func (g *Generator) FirstSystem() models.DisplayMode {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.rng.Intn(2) == 0 {
		return models.DisplayColoured
	}
	return models.DisplayText
}

// Generate produces one complete trial scenario for the given display mode.
//
// The prompted party size and time are drawn uniformly; one table of exactly
// the prompted capacity is picked as the guaranteed table and any synthesized
// booking that would block it at the prompted time is discarded. Bookings for
// every other table are committed unconditionally, so other suitable tables
// may legitimately be blocked and act as decoys. A discarded candidate is not
// re-sampled, so the guaranteed table may simply carry fewer bookings.
func (g *Generator) Generate(mode models.DisplayMode) (*models.Scenario, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("unknown display mode %q", mode)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	tables := generateLayout(g.rng)

	prompt := models.Prompt{
		PartySize: models.Capacities[g.rng.Intn(len(models.Capacities))],
		Time:      models.TimeSlots[g.rng.Intn(len(models.TimeSlots))],
	}

	suitable := lo.Filter(tables, func(t models.Table, _ int) bool {
		return t.Capacity == prompt.PartySize
	})
	// Non-empty by construction: both capacity classes hold at least
	// MinTablesPerCapacity tables.
	guaranteed := suitable[g.rng.Intn(len(suitable))]

	promptStart, promptEnd, err := timeslot.Span(prompt.Time, models.ServiceDurationMinutes)
	if err != nil {
		return nil, err
	}

	var bookings []models.BookingSlot
	for _, table := range tables {
		for _, start := range g.sampleSlots() {
			slotStart, slotEnd, err := timeslot.Span(start, models.ServiceDurationMinutes)
			if err != nil {
				return nil, err
			}

			if table.ID == guaranteed.ID &&
				timeslot.Overlaps(slotStart, slotEnd, promptStart, promptEnd) {
				continue
			}

			end, err := timeslot.AddMinutes(start, models.ServiceDurationMinutes)
			if err != nil {
				return nil, err
			}
			bookings = append(bookings, models.BookingSlot{
				TableID: table.ID,
				Start:   start,
				End:     end,
			})
		}
	}

	return &models.Scenario{
		DisplayMode: mode,
		Tables:      tables,
		Bookings:    bookings,
		Prompt:      prompt,
	}, nil
}

// sampleSlots draws 0–MaxBookingsPerTable start times without replacement
// from the fixed slot grid. Caller must hold g.mu.
func (g *Generator) sampleSlots() []string {
	count := g.rng.Intn(models.MaxBookingsPerTable + 1)
	if count == 0 {
		return nil
	}

	slots := make([]string, len(models.TimeSlots))
	copy(slots, models.TimeSlots)
	g.rng.Shuffle(len(slots), func(i, j int) {
		slots[i], slots[j] = slots[j], slots[i]
	})
	return slots[:count]
}
