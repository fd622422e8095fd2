package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// Err folds the validation errors into one error, or nil.
func (v Validation) Err() error {
	if v.OK() {
		return nil
	}
	return fmt.Errorf("config validation failed:\n- %s", strings.Join(v.Errors, "\n- "))
}

// NormalizeAndValidate returns a normalized copy of cfg and what is wrong
// with it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	out.Email.IMAPHost = strings.TrimSpace(out.Email.IMAPHost)
	out.Email.Username = strings.TrimSpace(out.Email.Username)
	out.Email.Mailbox = strings.TrimSpace(out.Email.Mailbox)
	out.Email.TrashMailbox = strings.TrimSpace(out.Email.TrashMailbox)
	out.Email.SenderFilter = strings.TrimSpace(out.Email.SenderFilter)
	out.Email.SubjectFilter = strings.TrimSpace(out.Email.SubjectFilter)
	if out.Email.Mailbox == "" {
		out.Email.Mailbox = "INBOX"
	}
	if out.Output.Dir == "" {
		out.Output.Dir = "."
	}

	// ---- Validation rules ----

	if out.Email.IMAPHost == "" {
		res.addErr("email.imap_host is required")
	}
	if out.Email.IMAPPort < 0 || out.Email.IMAPPort > 65535 {
		res.addErr("email.imap_port must be 0..65535")
	}
	if out.Email.MaxResults <= 0 {
		res.addErr("email.max_results must be > 0")
	} else if out.Email.MaxResults > 500 {
		res.addWarn("email.max_results is high (%d); large exports may hit provider quotas.", out.Email.MaxResults)
	}
	if out.Email.BatchSize <= 0 {
		res.addErr("email.batch_size must be > 0")
	}
	if out.Email.BatchesPerSecond <= 0 {
		res.addErr("email.batches_per_second must be > 0")
	}
	if out.Email.NewerThanDays < 0 {
		res.addErr("email.newer_than_days must be >= 0")
	}
	if out.Email.Username == "" {
		res.addWarn("email.username is empty; mailbox commands will fail until it is set.")
	}
	if out.Email.SenderFilter == "" && out.Email.SubjectFilter == "" {
		res.addWarn("no sender_filter or subject_filter; every message will be parsed as a job alert.")
	}

	if out.Store.Enabled && strings.TrimSpace(out.Store.Path) == "" {
		res.addErr("store.path is required when store.enabled=true")
	}
	if out.Store.RetentionDays < 0 {
		res.addErr("store.retention_days must be >= 0")
	}

	if strings.TrimSpace(out.Schedule.Cron) == "" {
		res.addWarn("schedule.cron is empty; the watch command will refuse to start.")
	} else if _, err := cron.ParseStandard(out.Schedule.Cron); err != nil {
		res.addErr("schedule.cron is invalid: %v", err)
	}

	return out, res
}
