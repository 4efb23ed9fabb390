package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNextRun(t *testing.T) {
	r := NewRunner(nil, time.Monday, 5)

	tests := []struct {
		now  time.Time
		want time.Time
	}{
		{
			// Wednesday -> following Monday.
			now:  time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC),
			want: time.Date(2024, 1, 8, 5, 0, 0, 0, time.UTC),
		},
		{
			// Monday before 05:00 -> same day.
			now:  time.Date(2024, 1, 8, 4, 0, 0, 0, time.UTC),
			want: time.Date(2024, 1, 8, 5, 0, 0, 0, time.UTC),
		},
		{
			// Exactly at the slot -> strictly after, next week.
			now:  time.Date(2024, 1, 8, 5, 0, 0, 0, time.UTC),
			want: time.Date(2024, 1, 15, 5, 0, 0, 0, time.UTC),
		},
		{
			// Monday after 05:00 -> next week.
			now:  time.Date(2024, 1, 8, 6, 0, 0, 0, time.UTC),
			want: time.Date(2024, 1, 15, 5, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, r.nextRun(tt.now))
	}
}
