// Package poll runs one export: search the mailbox, parse what matched and
// write every configured output.
package poll

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"jobalert-exporter/internal/config"
	"jobalert-exporter/internal/domain"
	"jobalert-exporter/internal/export"
	"jobalert-exporter/internal/mailbox"
	"jobalert-exporter/internal/parser"
	"jobalert-exporter/internal/parser/basic"
	"jobalert-exporter/internal/parser/linkedin"
	"jobalert-exporter/internal/record"
	"jobalert-exporter/internal/store"
)

// Mailbox is the part of *mailbox.Client the exporter uses.
type Mailbox interface {
	Search(ctx context.Context, q mailbox.Query) ([]uint32, error)
	Fetch(ctx context.Context, uids []uint32) ([]domain.Message, error)
	MarkSeen(ctx context.Context, uids []uint32) error
	Remove(ctx context.Context, uids []uint32) error
}

var _ Mailbox = (*mailbox.Client)(nil)

// ErrNoMailbox is returned when an Exporter has no mailbox to read.
var ErrNoMailbox = errors.New("poll: no mailbox configured")

// Exporter wires a mailbox to the parsers and outputs.
type Exporter struct {
	Box   Mailbox
	Cfg   config.Config
	Store *store.DB // nil disables persistence and the processed ledger
	Log   *zap.Logger
	Now   func() time.Time
}

// Summary reports one run.
type Summary struct {
	Messages int // messages parsed
	Records  int // records written to the CSV
	Added    int // alerts new to the store
	Removed  int // messages moved to trash or deleted

	CSVPath      string
	LinksPath    string
	FilteredPath string
}

func (e *Exporter) log() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log.Named("poll")
}

func (e *Exporter) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Exporter) outDir() string {
	if e.Cfg.Output.Dir == "" {
		return "."
	}
	return e.Cfg.Output.Dir
}

// RunSearch exports the job alerts matching the configured search.
func (e *Exporter) RunSearch(ctx context.Context) (Summary, error) {
	log := e.log()
	now := e.now()
	var sum Summary

	if e.Box == nil {
		return sum, ErrNoMailbox
	}
	if err := os.MkdirAll(e.outDir(), 0o755); err != nil {
		return sum, fmt.Errorf("create output dir: %w", err)
	}

	q := SearchQuery(e.Cfg.Email, now)
	uids, err := e.Box.Search(ctx, q)
	if err != nil {
		return sum, fmt.Errorf("search: %w", err)
	}
	if len(uids) == 0 {
		log.Info("no messages found", zap.String("from", q.From), zap.String("subject", q.Subject))
		return sum, nil
	}

	msgs, err := e.Box.Fetch(ctx, uids)
	if err != nil {
		return sum, fmt.Errorf("fetch: %w", err)
	}
	msgs = FilterMessages(msgs, e.Cfg.Email.SenderFilter, e.Cfg.Email.SubjectFilter)
	handled := uidsOf(msgs)

	msgs, err = e.skipProcessed(ctx, msgs)
	if err != nil {
		return sum, err
	}
	if len(msgs) == 0 {
		log.Info("no new messages")
		err := e.removeHandled(ctx, handled, &sum)
		return sum, err
	}

	p, err := linkedin.New(linkedin.Options{
		DumpMessages: e.Cfg.Output.WriteMessagesToFile,
		Dir:          e.outDir(),
		Logger:       e.Log,
		Now:          func() time.Time { return now },
	})
	if err != nil {
		return sum, fmt.Errorf("linkedin parser: %w", err)
	}
	defer func() { _ = p.Close() }()

	recs, perMessage, err := parseAll(p, msgs)
	if err != nil {
		return sum, err
	}
	if err := p.Close(); err != nil {
		return sum, fmt.Errorf("close message dump: %w", err)
	}
	sum.Messages = len(msgs)
	sum.Records = len(recs)

	alerts := make([]linkedin.Alert, 0, len(recs))
	for _, r := range recs {
		if a, ok := r.(linkedin.Alert); ok {
			alerts = append(alerts, a)
		}
	}

	sum.CSVPath = filepath.Join(e.outDir(), p.CSVOutputFilename())
	if e.Cfg.Output.UniqueLinks {
		sum.LinksPath = export.AddFileSuffix(sum.CSVPath, "urls", "txt")
	}

	// With the store on, messages from earlier runs today are skipped; keep
	// their rows and add ours.
	writeCSV, writeLinks := export.WriteCSV, export.WriteLines
	if e.Store != nil {
		writeCSV, writeLinks = export.AppendCSV, export.MergeLines
	}

	var added int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return writeCSV(gctx, sum.CSVPath, recs)
	})
	if sum.LinksPath != "" {
		g.Go(func() error {
			return writeLinks(gctx, sum.LinksPath, export.UniqueLinks(alerts))
		})
	}
	if e.Store != nil {
		g.Go(func() error {
			var err error
			added, err = e.Store.InsertAlerts(gctx, alerts)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return sum, fmt.Errorf("write outputs: %w", err)
	}
	sum.Added = added
	log.Info("alerts exported",
		zap.Int("messages", sum.Messages),
		zap.Int("records", sum.Records),
		zap.Int("added", sum.Added),
		zap.String("csv", sum.CSVPath),
	)

	if e.Cfg.Output.FilteredCSV {
		res, err := export.DedupeCSV(ctx, sum.CSVPath)
		if err != nil {
			return sum, fmt.Errorf("filter csv: %w", err)
		}
		sum.FilteredPath = res.Path
		log.Info("duplicate links removed", zap.Int("before", res.Before), zap.Int("after", res.After))
	}

	if e.Store != nil {
		for i, m := range msgs {
			if err := e.Store.MarkProcessed(ctx, m, perMessage[i]); err != nil {
				return sum, err
			}
		}
		if days := e.Cfg.Store.RetentionDays; days > 0 {
			n, err := e.Store.CleanupOldAlerts(ctx, now.AddDate(0, 0, -days))
			if err != nil {
				return sum, err
			}
			if n > 0 {
				log.Info("old alerts removed from store", zap.Int64("count", n), zap.Int("retention_days", days))
			}
		}
	}

	err = e.removeHandled(ctx, handled, &sum)
	return sum, err
}

// removeHandled deletes handled messages when configured to; otherwise, in
// unseen-only mode, it flags them \Seen so the next run skips them.
func (e *Exporter) removeHandled(ctx context.Context, uids []uint32, sum *Summary) error {
	if len(uids) == 0 {
		return nil
	}
	if !e.Cfg.Email.DeleteProcessed {
		if !e.Cfg.Email.UnseenOnly {
			return nil
		}
		if err := e.Box.MarkSeen(ctx, uids); err != nil {
			return fmt.Errorf("mark seen: %w", err)
		}
		return nil
	}
	if err := e.Box.Remove(ctx, uids); err != nil {
		return fmt.Errorf("remove processed: %w", err)
	}
	sum.Removed = len(uids)
	return nil
}

// RunList writes a header listing of every message in the search window,
// whoever sent it.
func (e *Exporter) RunList(ctx context.Context) (Summary, error) {
	var sum Summary

	if e.Box == nil {
		return sum, ErrNoMailbox
	}
	if err := os.MkdirAll(e.outDir(), 0o755); err != nil {
		return sum, fmt.Errorf("create output dir: %w", err)
	}

	uids, err := e.Box.Search(ctx, ListQuery(e.Cfg.Email, e.now()))
	if err != nil {
		return sum, fmt.Errorf("search: %w", err)
	}

	var msgs []domain.Message
	if len(uids) > 0 {
		msgs, err = e.Box.Fetch(ctx, uids)
		if err != nil {
			return sum, fmt.Errorf("fetch: %w", err)
		}
	}

	p := basic.Parser{}
	recs, _, err := parseAll(p, msgs)
	if err != nil {
		return sum, err
	}

	sum.Messages = len(msgs)
	sum.Records = len(recs)
	sum.CSVPath = filepath.Join(e.outDir(), p.CSVOutputFilename())
	if err := export.WriteCSV(ctx, sum.CSVPath, recs); err != nil {
		return sum, fmt.Errorf("write listing: %w", err)
	}
	e.log().Info("messages listed", zap.Int("messages", sum.Messages), zap.String("csv", sum.CSVPath))
	return sum, nil
}

func (e *Exporter) skipProcessed(ctx context.Context, msgs []domain.Message) ([]domain.Message, error) {
	if e.Store == nil {
		return msgs, nil
	}
	out := msgs[:0:0]
	for _, m := range msgs {
		done, err := e.Store.IsProcessed(ctx, m)
		if err != nil {
			return nil, err
		}
		if done {
			e.log().Debug("message already processed", zap.String("key", store.MessageKey(m)))
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// parseAll runs p over msgs in order; perMessage[i] counts msgs[i]'s records.
func parseAll(p parser.MessageParser, msgs []domain.Message) (recs []record.CSVRecord, perMessage []int, err error) {
	perMessage = make([]int, len(msgs))
	for i, m := range msgs {
		got, err := p.Parse(m)
		if err != nil {
			return nil, nil, fmt.Errorf("parse message %q: %w", m.Subject, err)
		}
		perMessage[i] = len(got)
		recs = append(recs, got...)
	}
	return recs, perMessage, nil
}

func uidsOf(msgs []domain.Message) []uint32 {
	out := make([]uint32, 0, len(msgs))
	for _, m := range msgs {
		if m.UID != 0 {
			out = append(out, m.UID)
		}
	}
	return out
}
