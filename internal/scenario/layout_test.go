package scenario

import (
	"math/rand"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablelab/internal/models"
)

func TestGenerateLayoutBounds(t *testing.T) {
	for seed := int64(0); seed < 500; seed++ {
		rng := rand.New(rand.NewSource(seed))
		tables := generateLayout(rng)

		require.Len(t, tables, models.TableCount)

		counts := lo.CountValuesBy(tables, func(tab models.Table) int {
			return tab.Capacity
		})
		small := counts[models.CapacitySmall]
		large := counts[models.CapacityLarge]

		assert.Equal(t, models.TableCount, small+large, "seed %d", seed)
		assert.GreaterOrEqual(t, small, models.MinTablesPerCapacity, "seed %d", seed)
		assert.LessOrEqual(t, small, models.MaxTablesPerCapacity, "seed %d", seed)
		assert.GreaterOrEqual(t, large, models.MinTablesPerCapacity, "seed %d", seed)
		assert.LessOrEqual(t, large, models.MaxTablesPerCapacity, "seed %d", seed)
	}
}

func TestGenerateLayoutUniqueIDs(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tables := generateLayout(rng)

	ids := lo.Map(tables, func(tab models.Table, _ int) int { return tab.ID })
	assert.Len(t, lo.Uniq(ids), models.TableCount)
}

func TestGenerateLayoutShapesAreKnown(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		for _, tab := range generateLayout(rng) {
			assert.Contains(t,
				[]models.TableShape{models.ShapeCircle, models.ShapeSquare},
				tab.Shape)
		}
	}
}

func TestGenerateLayoutDeterministicPerSeed(t *testing.T) {
	a := generateLayout(rand.New(rand.NewSource(99)))
	b := generateLayout(rand.New(rand.NewSource(99)))
	assert.Equal(t, a, b)
}
