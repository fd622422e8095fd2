// Package mailbox reads job alert digests out of an IMAP mailbox.
package mailbox

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"jobalert-exporter/internal/config"
	"jobalert-exporter/internal/domain"
)

// Settings is what Connect needs to reach and use a mailbox.
type Settings struct {
	Addr     string // host:port
	Username string
	Password string

	Mailbox      string
	TrashMailbox string // empty: flag \Deleted and expunge instead of moving

	BatchSize        int
	BatchesPerSecond float64

	TLS *tls.Config
}

// SettingsFromConfig fills Settings from the email section of the config.
func SettingsFromConfig(cfg config.EmailConfig, password string) Settings {
	host := cfg.IMAPHost
	addr := host
	if _, _, err := net.SplitHostPort(host); err != nil {
		port := cfg.IMAPPort
		if port == 0 {
			port = 993
		}
		addr = net.JoinHostPort(host, strconv.Itoa(port))
	} else {
		host, _, _ = net.SplitHostPort(host)
	}

	mailbox := cfg.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}

	return Settings{
		Addr:             addr,
		Username:         cfg.Username,
		Password:         password,
		Mailbox:          mailbox,
		TrashMailbox:     cfg.TrashMailbox,
		BatchSize:        cfg.BatchSize,
		BatchesPerSecond: cfg.BatchesPerSecond,
		TLS: &tls.Config{
			MinVersion: tls.VersionTLS12,
			ServerName: host,
		},
	}
}

// Query selects messages to export.
type Query struct {
	From       string    // substring of the From header
	Subject    string    // substring of the Subject header
	Since      time.Time // zero: no lower bound
	UnseenOnly bool
	Limit      int // newest first; <= 0 means 50
}

func (q Query) criteria() *imap.SearchCriteria {
	c := &imap.SearchCriteria{Since: q.Since}
	if q.From != "" {
		c.Header = append(c.Header, imap.SearchCriteriaHeaderField{Key: "From", Value: q.From})
	}
	if q.Subject != "" {
		c.Header = append(c.Header, imap.SearchCriteriaHeaderField{Key: "Subject", Value: q.Subject})
	}
	if q.UnseenOnly {
		c.NotFlag = []imap.Flag{imap.FlagSeen}
	}
	return c
}

// Client is a logged-in IMAP session with one mailbox selected.
type Client struct {
	c    *imapclient.Client
	s    Settings
	lim  *rate.Limiter
	log  *zap.Logger
	stop func() bool // detaches the close-on-cancel hook
}

var (
	connectAttempts uint = 3
	connectDelay         = time.Second
	connectJitter        = 2 * time.Second
)

// Connect dials, logs in and selects s.Mailbox. Connection failures are
// retried; a rejected login is not.
func Connect(ctx context.Context, s Settings, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("mailbox")

	var c *imapclient.Client
	err := retry.Do(
		func() error {
			var err error
			c, err = DialAndLoginIMAP(ctx, s.Addr, s.Username, s.Password, s.TLS)
			if err != nil && isAuthFailure(err) {
				return retry.Unrecoverable(err)
			}
			return err
		},
		retry.Attempts(connectAttempts),
		retry.Delay(connectDelay),
		retry.MaxDelay(30*time.Second),
		retry.MaxJitter(connectJitter),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("imap connect failed, retrying", zap.Uint("attempt", n), zap.Error(err))
		}),
	)
	if err != nil {
		return nil, err
	}

	stop := context.AfterFunc(ctx, func() { _ = c.Close() })
	if _, err := c.Select(s.Mailbox, &imap.SelectOptions{ReadOnly: false}).Wait(); err != nil {
		stop()
		LogoutAndClose(c, log)
		return nil, fmt.Errorf("imap select %q: %w", s.Mailbox, err)
	}
	log.Debug("mailbox selected", zap.String("addr", s.Addr), zap.String("mailbox", s.Mailbox))

	batches := s.BatchesPerSecond
	if batches <= 0 {
		batches = 2
	}
	return &Client{
		c:    c,
		s:    s,
		lim:  rate.NewLimiter(rate.Limit(batches), 1),
		log:  log,
		stop: stop,
	}, nil
}

// DialAndLoginIMAP connects over TLS and logs in. Cancelling ctx closes the
// connection only while the login is in flight.
func DialAndLoginIMAP(ctx context.Context, addr, username, password string, tlsCfg *tls.Config) (*imapclient.Client, error) {
	if addr == "" {
		return nil, errors.New("imap addr is required")
	}
	if username == "" || password == "" {
		return nil, errors.New("imap username/password is required")
	}
	if tlsCfg == nil {
		tlsCfg = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	c, err := imapclient.DialTLS(addr, &imapclient.Options{
		TLSConfig: tlsCfg,
	})
	if err != nil {
		return nil, fmt.Errorf("imap dial tls: %w", err)
	}

	stop := context.AfterFunc(ctx, func() { _ = c.Close() })
	defer stop()

	if err := c.Login(username, password).Wait(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("imap login: %w", err)
	}

	return c, nil
}

func isAuthFailure(err error) bool {
	var imapErr *imap.Error
	if !errors.As(err, &imapErr) {
		return false
	}
	return imapErr.Code == imap.ResponseCodeAuthenticationFailed ||
		imapErr.Code == imap.ResponseCodeAuthorizationFailed
}

// Search returns the UIDs matching q, newest first, at most q.Limit of them.
func (cl *Client) Search(ctx context.Context, q Query) ([]uint32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := cl.c.UIDSearch(q.criteria(), nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("imap uid search: %w", err)
	}

	all := data.AllUIDs()
	uids := make([]uint32, len(all))
	for i, u := range all {
		uids[i] = uint32(u)
	}
	slices.Reverse(uids)

	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	if len(uids) > limit {
		uids = uids[:limit]
	}
	cl.log.Info("messages found", zap.Int("matched", len(all)), zap.Int("kept", len(uids)))
	return uids, nil
}

// Fetch downloads and decodes the given messages in batches, paced to stay
// within provider rate limits. Order follows uids. BODY.PEEK[] is used so
// fetching does not mark anything \Seen.
func (cl *Client) Fetch(ctx context.Context, uids []uint32) ([]domain.Message, error) {
	size := cl.s.BatchSize
	if size <= 0 {
		size = 50
	}

	out := make([]domain.Message, 0, len(uids))
	for batch := range slices.Chunk(uids, size) {
		if err := cl.lim.Wait(ctx); err != nil {
			return nil, err
		}
		msgs, err := cl.fetchBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		out = append(out, msgs...)
	}
	return out, nil
}

func (cl *Client) fetchBatch(ctx context.Context, batch []uint32) ([]domain.Message, error) {
	bodyAll := &imap.FetchItemBodySection{
		Specifier: imap.PartSpecifierNone,
		Peek:      true,
	}
	fetchOptions := &imap.FetchOptions{
		UID:          true,
		Envelope:     true,
		InternalDate: true,
		BodySection:  []*imap.FetchItemBodySection{bodyAll},
	}

	fetchCmd := cl.c.Fetch(imap.UIDSetNum(toUIDs(batch)...), fetchOptions)
	defer func() { _ = fetchCmd.Close() }()

	byUID := make(map[uint32]domain.Message, len(batch))
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}

		buf, err := msgData.Collect()
		if err != nil {
			return nil, fmt.Errorf("imap fetch collect: %w", err)
		}

		m := domain.Message{
			UID:          uint32(buf.UID),
			InternalDate: buf.InternalDate,
		}
		if buf.Envelope != nil {
			m.MessageID = buf.Envelope.MessageID
			m.Subject = buf.Envelope.Subject
			m.Date = buf.Envelope.Date
			m.From = joinAddrs(buf.Envelope.From)
			m.To = joinAddrs(buf.Envelope.To)
		}

		if raw := buf.FindBodySection(bodyAll); raw != nil {
			d, err := Decode(raw)
			if err != nil {
				cl.log.Warn("message decode failed", zap.Uint32("uid", m.UID), zap.Error(err))
			}
			fillFromDecoded(&m, d)
		}

		byUID[m.UID] = m
	}

	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("imap fetch close: %w", err)
	}

	out := make([]domain.Message, 0, len(batch))
	for _, uid := range batch {
		if m, ok := byUID[uid]; ok {
			out = append(out, m)
		} else {
			cl.log.Warn("message vanished before fetch", zap.Uint32("uid", uid))
		}
	}
	return out, nil
}

// fillFromDecoded copies what the envelope lacked, and the body.
func fillFromDecoded(m *domain.Message, d Decoded) {
	if m.MessageID == "" {
		m.MessageID = d.MessageID
	}
	if m.Subject == "" {
		m.Subject = d.Subject
	}
	if m.From == "" {
		m.From = d.From
	}
	if m.To == "" {
		m.To = d.To
	}
	if m.Date.IsZero() {
		m.Date = d.Date
	}
	m.Body = d.Body()
}

// MarkSeen sets the \Seen flag on the given messages.
func (cl *Client) MarkSeen(_ context.Context, uids []uint32) error {
	if len(uids) == 0 {
		return nil
	}
	storeFlags := &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}
	if err := cl.c.Store(imap.UIDSetNum(toUIDs(uids)...), storeFlags, nil).Close(); err != nil {
		return fmt.Errorf("imap store add seen: %w", err)
	}
	return nil
}

// Remove moves the given messages to the trash mailbox, or flags them
// \Deleted and expunges when no trash mailbox is configured.
func (cl *Client) Remove(_ context.Context, uids []uint32) error {
	if len(uids) == 0 {
		return nil
	}
	set := imap.UIDSetNum(toUIDs(uids)...)

	if cl.s.TrashMailbox != "" {
		if _, err := cl.c.Move(set, cl.s.TrashMailbox).Wait(); err != nil {
			return fmt.Errorf("imap move to %q: %w", cl.s.TrashMailbox, err)
		}
		cl.log.Info("processed messages moved to trash", zap.Int("count", len(uids)), zap.String("trash", cl.s.TrashMailbox))
		return nil
	}

	storeFlags := &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagDeleted},
	}
	if err := cl.c.Store(set, storeFlags, nil).Close(); err != nil {
		return fmt.Errorf("imap store add deleted: %w", err)
	}
	if err := cl.c.Expunge().Close(); err != nil {
		return fmt.Errorf("imap expunge: %w", err)
	}
	cl.log.Info("processed messages deleted", zap.Int("count", len(uids)))
	return nil
}

// ListMailboxes returns every mailbox name on the server (Gmail labels).
func (cl *Client) ListMailboxes(_ context.Context) ([]string, error) {
	data, err := cl.c.List("", "*", nil).Collect()
	if err != nil {
		return nil, fmt.Errorf("imap list: %w", err)
	}
	names := make([]string, 0, len(data))
	for _, d := range data {
		names = append(names, d.Mailbox)
	}
	slices.Sort(names)
	return names, nil
}

// Close logs out and closes the connection.
func (cl *Client) Close() error {
	if cl == nil {
		return nil
	}
	if cl.stop != nil {
		cl.stop()
	}
	LogoutAndClose(cl.c, cl.log)
	return nil
}

// LogoutAndClose logs out then closes the connection.
func LogoutAndClose(c *imapclient.Client, log *zap.Logger) {
	if c == nil {
		return
	}
	if err := c.Logout().Wait(); err != nil {
		log.Debug("imap logout", zap.Error(err))
	}
	_ = c.Close()
}

func toUIDs(in []uint32) []imap.UID {
	out := make([]imap.UID, len(in))
	for i, u := range in {
		out[i] = imap.UID(u)
	}
	return out
}

func joinAddrs(addrs []imap.Address) string {
	if len(addrs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(addrs))
	for i := range addrs {
		a := &addrs[i]
		addr := strings.TrimSpace(a.Addr())
		name := strings.TrimSpace(a.Name)
		switch {
		case addr != "" && name != "":
			parts = append(parts, name+" <"+addr+">")
		case addr != "":
			parts = append(parts, addr)
		case name != "":
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, ", ")
}
