package mailbox

import (
	"context"
	"testing"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobalert-exporter/internal/config"
	"jobalert-exporter/internal/domain"
)

func TestSettingsFromConfig(t *testing.T) {
	cfg := config.Default().Email
	cfg.Username = "me@gmail.com"

	s := SettingsFromConfig(cfg, "secret")
	assert.Equal(t, "imap.gmail.com:993", s.Addr)
	assert.Equal(t, "me@gmail.com", s.Username)
	assert.Equal(t, "secret", s.Password)
	assert.Equal(t, "INBOX", s.Mailbox)
	assert.Equal(t, "[Gmail]/Trash", s.TrashMailbox)
	require.NotNil(t, s.TLS)
	assert.Equal(t, "imap.gmail.com", s.TLS.ServerName)

	cfg.IMAPHost = "localhost:1143"
	cfg.Mailbox = ""
	s = SettingsFromConfig(cfg, "secret")
	assert.Equal(t, "localhost:1143", s.Addr)
	assert.Equal(t, "localhost", s.TLS.ServerName)
	assert.Equal(t, "INBOX", s.Mailbox)

	cfg.IMAPHost = "mail.example.com"
	cfg.IMAPPort = 0
	s = SettingsFromConfig(cfg, "secret")
	assert.Equal(t, "mail.example.com:993", s.Addr)
}

func TestQueryCriteria(t *testing.T) {
	since := time.Date(2024, 7, 11, 0, 0, 0, 0, time.UTC)
	c := Query{
		From:       "jobalerts-noreply@linkedin.com",
		Subject:    "engineer",
		Since:      since,
		UnseenOnly: true,
	}.criteria()

	assert.Equal(t, since, c.Since)
	assert.Equal(t, []imap.SearchCriteriaHeaderField{
		{Key: "From", Value: "jobalerts-noreply@linkedin.com"},
		{Key: "Subject", Value: "engineer"},
	}, c.Header)
	assert.Equal(t, []imap.Flag{imap.FlagSeen}, c.NotFlag)

	empty := Query{}.criteria()
	assert.Empty(t, empty.Header)
	assert.Empty(t, empty.NotFlag)
	assert.True(t, empty.Since.IsZero())
}

func TestJoinAddrs(t *testing.T) {
	assert.Equal(t, "", joinAddrs(nil))
	assert.Equal(t,
		"LinkedIn <jobalerts-noreply@linkedin.com>, me@example.com",
		joinAddrs([]imap.Address{
			{Name: "LinkedIn", Mailbox: "jobalerts-noreply", Host: "linkedin.com"},
			{Mailbox: "me", Host: "example.com"},
		}),
	)
}

func TestFillFromDecoded(t *testing.T) {
	m := domain.Message{Subject: "from envelope"}
	fillFromDecoded(&m, Decoded{
		MessageID: "id@x",
		Subject:   "from header",
		From:      "a@x",
		Text:      "body\n",
	})

	assert.Equal(t, "from envelope", m.Subject)
	assert.Equal(t, "id@x", m.MessageID)
	assert.Equal(t, "a@x", m.From)
	assert.Equal(t, "body\n", m.Body)
}

func TestDialAndLoginIMAP_RequiresCredentials(t *testing.T) {
	ctx := context.Background()

	_, err := DialAndLoginIMAP(ctx, "", "u", "p", nil)
	require.Error(t, err)

	_, err = DialAndLoginIMAP(ctx, "imap.example.com:993", "u", "", nil)
	require.Error(t, err)
}

func TestToUIDs(t *testing.T) {
	assert.Equal(t, []imap.UID{3, 1, 2}, toUIDs([]uint32{3, 1, 2}))
}
