package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/apperr"
)

func TestParse(t *testing.T) {
	got, err := Parse("startDate", "")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = Parse("startDate", "2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", *Format(got))

	got, err = Parse("startDate", "2024-03-15T22:30:00-05:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-16", *Format(got))

	_, err = Parse("startDate", "15/03/2024")
	require.Error(t, err)
	assert.True(t, apperr.IsBadRequest(err))
	assert.Contains(t, err.Error(), "startDate")
}

func TestBefore(t *testing.T) {
	a := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := a.AddDate(0, 0, 1)
	assert.True(t, Before(&a, &b))
	assert.False(t, Before(&b, &a))
	assert.False(t, Before(&a, &a))
	assert.False(t, Before(nil, &a))
	assert.False(t, Before(&a, nil))
	assert.Nil(t, Format(nil))
}
