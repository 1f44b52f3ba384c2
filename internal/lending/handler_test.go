package lending

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf/internal/apperr"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-03-01T09:30", time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)},
		{"2024-03-01T09:30:00+02:00", time.Date(2024, 3, 1, 7, 30, 0, 0, time.UTC)},
		{"2024-03-01T09:30:00.5Z", time.Date(2024, 3, 1, 9, 30, 0, 500000000, time.UTC)},
	}
	for _, tc := range cases {
		got, err := parseDate(tc.in, "expectedReturnDate")
		require.NoError(t, err, tc.in)
		require.NotNil(t, got, tc.in)
		assert.True(t, got.Equal(tc.want), tc.in)
		assert.Equal(t, time.UTC, got.Location(), tc.in)
	}
}

func TestParseDate_EmptyAndInvalid(t *testing.T) {
	got, err := parseDate("  ", "expectedReturnDate")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseDate("next tuesday", "actualReturnDate")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "invalid actualReturnDate", apperr.Message(err))
}
