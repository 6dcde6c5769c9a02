package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablelab/internal/models"
)

func TestIsAvailable(t *testing.T) {
	bookings := []models.BookingSlot{
		{TableID: 1, Start: "17:00", End: "18:30"},
	}

	tests := []struct {
		name    string
		tableID int
		time    string
		want    bool
	}{
		{"exact overlap", 1, "17:00", false},
		{"candidate starts inside booking", 1, "18:00", false},
		{"candidate runs into booking", 1, "16:00", false},
		{"half-open boundary at booking start", 1, "15:30", true},
		{"half-open boundary at booking end", 1, "18:30", true},
		{"well before", 1, "15:00", true},
		{"different table", 2, "17:00", true},
		{"unknown table id", 99, "17:00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IsAvailable(tt.tableID, tt.time, bookings)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsAvailableNoBookings(t *testing.T) {
	got, err := IsAvailable(1, "19:00", nil)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestIsAvailableIdempotent(t *testing.T) {
	bookings := []models.BookingSlot{
		{TableID: 3, Start: "19:30", End: "21:00"},
	}
	first, err := IsAvailable(3, "20:00", bookings)
	require.NoError(t, err)
	second, err := IsAvailable(3, "20:00", bookings)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.False(t, first)
}

func TestIsAvailableMalformedTime(t *testing.T) {
	_, err := IsAvailable(1, "25:99", nil)
	assert.Error(t, err)

	_, err = IsAvailable(1, "", nil)
	assert.Error(t, err)
}

func TestIsAvailableWrappedBooking(t *testing.T) {
	// A slot whose end wrapped past midnight must still block its table.
	bookings := []models.BookingSlot{
		{TableID: 1, Start: "23:30", End: "01:00"},
	}
	got, err := IsAvailable(1, "23:00", bookings)
	require.NoError(t, err)
	assert.False(t, got)

	got, err = IsAvailable(1, "21:30", bookings)
	require.NoError(t, err)
	assert.True(t, got)
}
