package scenario

import (
	"math/rand"

	"tablelab/internal/models"
)

// generateLayout produces a fresh floor plan of exactly models.TableCount
// tables. The number of small-capacity tables is uniform in
// [MinTablesPerCapacity, MaxTablesPerCapacity]; the rest take the large
// capacity, so both capacity classes always hold at least four tables.
// Shapes are cosmetic and chosen independently. The final order is shuffled;
// display position carries no meaning.
func generateLayout(rng *rand.Rand) []models.Table {
	smallCount := models.MinTablesPerCapacity +
		rng.Intn(models.MaxTablesPerCapacity-models.MinTablesPerCapacity+1)

	tables := make([]models.Table, 0, models.TableCount)
	for i := 0; i < models.TableCount; i++ {
		capacity := models.CapacityLarge
		if i < smallCount {
			capacity = models.CapacitySmall
		}

		shape := models.ShapeCircle
		if rng.Intn(2) == 1 {
			shape = models.ShapeSquare
		}

		tables = append(tables, models.Table{
			ID:       i + 1,
			Shape:    shape,
			Capacity: capacity,
		})
	}

	rng.Shuffle(len(tables), func(i, j int) {
		tables[i], tables[j] = tables[j], tables[i]
	})

	return tables
}
