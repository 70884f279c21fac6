package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		grammar string
	}{
		{
			name:    "iso with Z",
			input:   "2023-01-15T10:20:30Z",
			want:    time.Date(2023, 1, 15, 10, 20, 30, 0, time.UTC),
			grammar: "iso-zulu",
		},
		{
			name:    "day first",
			input:   "14.03.2023",
			want:    time.Date(2023, 3, 14, 0, 0, 0, 0, time.UTC),
			grammar: "day-first",
		},
		{
			name:    "day first without padding",
			input:   "5.1.2023",
			want:    time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC),
			grammar: "day-first",
		},
		{
			name:    "day first mixed padding",
			input:   "05.1.2023",
			want:    time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC),
			grammar: "day-first",
		},
		{
			name:    "iso with fraction and Z",
			input:   "2019-08-26T10:50:58.294041Z",
			want:    time.Date(2019, 8, 26, 10, 50, 58, 294041000, time.UTC),
			grammar: "iso-8601",
		},
		{
			name:    "iso naive with fraction",
			input:   "2025-04-26T12:00:00.000",
			want:    time.Date(2025, 4, 26, 12, 0, 0, 0, time.UTC),
			grammar: "iso-8601",
		},
		{
			name:    "iso with offset",
			input:   "2023-01-15T10:00:00+03:00",
			want:    time.Date(2023, 1, 15, 7, 0, 0, 0, time.UTC),
			grammar: "iso-8601",
		},
		{
			name:    "date only",
			input:   "2023-01-15",
			want:    time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
			grammar: "iso-8601",
		},
		{
			name:    "space separator",
			input:   "2023-01-15 08:30:00",
			want:    time.Date(2023, 1, 15, 8, 30, 0, 0, time.UTC),
			grammar: "iso-8601",
		},
		{
			name:    "surrounding whitespace",
			input:   "  01.02.2024 ",
			want:    time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			grammar: "day-first",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, grammar, err := ParseGrammar(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
			assert.Equal(t, time.UTC, got.Location())
			assert.Equal(t, tt.grammar, grammar)
		})
	}
}

func TestParseRejects(t *testing.T) {
	for _, input := range []string{"", "   ", "yesterday", "15/01/2023", "2023-13-01", "32.01.2023"} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			assert.ErrorIs(t, err, ErrDateFormat)
		})
	}
}

func TestParseIsDeterministic(t *testing.T) {
	for _, input := range []string{"2023-01-15T10:20:30Z", "14.03.2023", "2019-08-26T10:50:58.294041"} {
		a, errA := Parse(input)
		b, errB := Parse(input)
		require.NoError(t, errA)
		require.NoError(t, errB)
		assert.Equal(t, a, b)
	}
}

func TestParseDayAndSameDay(t *testing.T) {
	day, err := ParseDay("2024-03-10T08:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), day)

	assert.True(t, SameDay(day, time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC)))
	assert.False(t, SameDay(day, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)))
}
