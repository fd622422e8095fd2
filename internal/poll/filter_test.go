package poll

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"jobalert-exporter/internal/config"
	"jobalert-exporter/internal/domain"
)

func TestSearchQuery(t *testing.T) {
	cfg := config.Default().Email
	cfg.SubjectFilter = "engineer"
	cfg.UnseenOnly = true
	cfg.NewerThanDays = 3
	now := time.Date(2024, 7, 12, 18, 30, 0, 0, time.UTC)

	q := SearchQuery(cfg, now)
	assert.Equal(t, "jobalerts-noreply@linkedin.com", q.From)
	assert.Equal(t, "engineer", q.Subject)
	assert.True(t, q.UnseenOnly)
	assert.Equal(t, 50, q.Limit)
	assert.Equal(t, time.Date(2024, 7, 9, 0, 0, 0, 0, time.UTC), q.Since)

	cfg.NewerThanDays = 0
	assert.True(t, SearchQuery(cfg, now).Since.IsZero())

	l := ListQuery(cfg, now)
	assert.Empty(t, l.From)
	assert.Empty(t, l.Subject)
}

func TestFilterMessages(t *testing.T) {
	msgs := []domain.Message{
		{UID: 1, From: "LinkedIn <JobAlerts-noreply@linkedin.com>", Subject: "Senior Engineer roles"},
		{UID: 2, From: "jobalerts-noreply@linkedin.com", Subject: "Designer roles"},
		{UID: 3, From: "news@example.com", Subject: "Engineer digest"},
	}

	tests := []struct {
		name          string
		from, subject string
		want          []uint32
	}{
		{"no filters", "", "", []uint32{1, 2, 3}},
		{"sender only, case-insensitive", "jobalerts-noreply@linkedin.com", "", []uint32{1, 2}},
		{"subject only", "", "engineer", []uint32{1, 3}},
		{"both", "linkedin.com", "ENGINEER", []uint32{1}},
		{"nothing matches", "nobody@example.com", "", []uint32{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, uidsOf(FilterMessages(msgs, tt.from, tt.subject)))
		})
	}
}
