package timeslot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinutes(t *testing.T) {
	tests := []struct {
		clock   string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"17:00", 1020, false},
		{"21:00", 1260, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"17:60", 0, true},
		{"-1:00", 0, true},
		{"1700", 0, true},
		{"ab:cd", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.clock, func(t *testing.T) {
			got, err := Minutes(tt.clock)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddMinutes(t *testing.T) {
	got, err := AddMinutes("21:00", 90)
	require.NoError(t, err)
	assert.Equal(t, "22:30", got)

	// Wrap past midnight must not crash and must stay on the clock.
	got, err = AddMinutes("23:30", 90)
	require.NoError(t, err)
	assert.Equal(t, "01:00", got)

	got, err = AddMinutes("00:30", -60)
	require.NoError(t, err)
	assert.Equal(t, "23:30", got)

	_, err = AddMinutes("25:00", 90)
	assert.Error(t, err)
}

func TestClockRoundTrip(t *testing.T) {
	for m := 0; m < 24*60; m += 17 {
		back, err := Minutes(Clock(m))
		require.NoError(t, err)
		assert.Equal(t, m, back)
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		s1, e1, s2, e2 int
		want           bool
	}{
		{"identical", 0, 90, 0, 90, true},
		{"partial", 0, 90, 60, 150, true},
		{"contained", 0, 180, 60, 90, true},
		{"touching at boundary", 0, 90, 90, 180, false},
		{"disjoint", 0, 90, 120, 210, false},
		{"reversed order args", 90, 180, 0, 90, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.s1, tt.e1, tt.s2, tt.e2))
			// Overlap is symmetric in its interval arguments.
			assert.Equal(t, tt.want, Overlaps(tt.s2, tt.e2, tt.s1, tt.e1))
		})
	}
}

func TestSpan(t *testing.T) {
	start, end, err := Span("21:00", 90)
	require.NoError(t, err)
	assert.Equal(t, 1260, start)
	assert.Equal(t, 1350, end)

	_, _, err = Span("bad", 90)
	assert.Error(t, err)
}
