package poll

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker(t *testing.T) {
	clock := time.Date(2024, 7, 12, 7, 0, 0, 0, time.UTC)
	tr := &Tracker{Now: func() time.Time { return clock }}

	assert.Equal(t, Status{}, tr.Status())

	sum, err := tr.Run(context.Background(), func(context.Context) (Summary, error) {
		assert.True(t, tr.Status().Running)
		return Summary{Records: 4, Added: 3}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Added)

	st := tr.Status()
	assert.False(t, st.Running)
	assert.Equal(t, "2024-07-12T07:00:00Z", st.LastRunAt)
	assert.Equal(t, "2024-07-12T07:00:00Z", st.LastOkAt)
	assert.Equal(t, 3, st.LastAdded)
	assert.Empty(t, st.LastError)

	clock = clock.Add(time.Hour)
	_, err = tr.Run(context.Background(), func(context.Context) (Summary, error) {
		return Summary{}, errors.New("imap down")
	})
	require.Error(t, err)

	st = tr.Status()
	assert.Equal(t, "imap down", st.LastError)
	assert.Equal(t, "2024-07-12T08:00:00Z", st.LastRunAt)
	assert.Equal(t, "2024-07-12T07:00:00Z", st.LastOkAt, "last success kept")
	assert.Equal(t, 3, st.LastAdded)
}
