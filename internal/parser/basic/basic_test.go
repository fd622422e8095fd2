package basic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobalert-exporter/internal/domain"
)

func TestParse(t *testing.T) {
	recs, err := Parser{}.Parse(domain.Message{
		From:         "jobalerts-noreply@linkedin.com",
		To:           "me@example.com",
		Subject:      "9 new jobs for senior software engineer",
		InternalDate: time.UnixMilli(1720812522000),
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t,
		"12/Jul/2024, jobalerts-noreply@linkedin.com, me@example.com, 9 new jobs for senior software engineer",
		recs[0].CSV())
}

func TestParseMissingHeaders(t *testing.T) {
	recs, err := Parser{}.Parse(domain.Message{Date: time.UnixMilli(1720812522000)})
	require.NoError(t, err)
	require.Len(t, recs, 1)

	e, ok := recs[0].(Email)
	require.True(t, ok)
	assert.Equal(t, "Not Found", e.From)
	assert.Equal(t, "Not Found", e.To)
	assert.Equal(t, "Not Found", e.Subject)
	assert.Equal(t, int64(1720812522000), e.LongDate())
}

func TestCSVOutputFilename(t *testing.T) {
	assert.Equal(t, "email-listing.csv", Parser{}.CSVOutputFilename())
	assert.NoError(t, Parser{}.Close())
}
