package poll

import (
	"strings"
	"time"

	"jobalert-exporter/internal/config"
	"jobalert-exporter/internal/domain"
	"jobalert-exporter/internal/mailbox"
)

// SearchQuery builds the alert search from the email config. Since is
// midnight local time newer_than_days before now.
func SearchQuery(cfg config.EmailConfig, now time.Time) mailbox.Query {
	q := ListQuery(cfg, now)
	q.From = cfg.SenderFilter
	q.Subject = cfg.SubjectFilter
	return q
}

// ListQuery is SearchQuery without the sender and subject criteria.
func ListQuery(cfg config.EmailConfig, now time.Time) mailbox.Query {
	q := mailbox.Query{
		UnseenOnly: cfg.UnseenOnly,
		Limit:      cfg.MaxResults,
	}
	if cfg.NewerThanDays > 0 {
		y, m, d := now.AddDate(0, 0, -cfg.NewerThanDays).Date()
		q.Since = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	}
	return q
}

// FilterMessages keeps messages whose From contains from and whose Subject
// contains subject, ignoring case. An empty filter matches everything.
// Servers treat SEARCH HEADER loosely, so this is applied after fetch too.
func FilterMessages(msgs []domain.Message, from, subject string) []domain.Message {
	from = strings.ToLower(strings.TrimSpace(from))
	subject = strings.ToLower(strings.TrimSpace(subject))
	if from == "" && subject == "" {
		return msgs
	}

	out := msgs[:0:0]
	for _, m := range msgs {
		if from != "" && !strings.Contains(strings.ToLower(m.From), from) {
			continue
		}
		if subject != "" && !strings.Contains(strings.ToLower(m.Subject), subject) {
			continue
		}
		out = append(out, m)
	}
	return out
}
