package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		DataDir  string `yaml:"data_dir"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Email EmailConfig `yaml:"email"`

	Output struct {
		Dir                 string `yaml:"dir"`
		WriteMessagesToFile bool   `yaml:"write_messages_to_file"`
		UniqueLinks         bool   `yaml:"unique_links"`
		FilteredCSV         bool   `yaml:"filtered_csv"`
	} `yaml:"output"`

	Store struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`

		// RetentionDays drops stored alerts older than this many days after
		// each run. 0 keeps everything.
		RetentionDays int `yaml:"retention_days"`
	} `yaml:"store"`

	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
}

type EmailConfig struct {
	IMAPHost string `yaml:"imap_host"`
	IMAPPort int    `yaml:"imap_port"`
	Username string `yaml:"username"`
	Mailbox  string `yaml:"mailbox"`

	// TrashMailbox receives processed messages when DeleteProcessed is set.
	// Empty means flag \Deleted and expunge.
	TrashMailbox string `yaml:"trash_mailbox"`

	SenderFilter  string `yaml:"sender_filter"`
	SubjectFilter string `yaml:"subject_filter"`
	NewerThanDays int    `yaml:"newer_than_days"`
	UnseenOnly    bool   `yaml:"unseen_only"`

	MaxResults       int     `yaml:"max_results"`
	BatchSize        int     `yaml:"batch_size"`
	BatchesPerSecond float64 `yaml:"batches_per_second"`

	DeleteProcessed bool `yaml:"delete_processed"`
}

// Default is the configuration written on first run and the base every
// loaded file is overlaid on.
func Default() Config {
	var cfg Config
	cfg.App.DataDir = "."
	cfg.App.LogLevel = "info"

	cfg.Email = EmailConfig{
		IMAPHost:         "imap.gmail.com",
		IMAPPort:         993,
		Mailbox:          "INBOX",
		TrashMailbox:     "[Gmail]/Trash",
		SenderFilter:     "jobalerts-noreply@linkedin.com",
		NewerThanDays:    1,
		MaxResults:       50,
		BatchSize:        50,
		BatchesPerSecond: 2,
	}

	cfg.Output.Dir = "."
	cfg.Output.UniqueLinks = true

	cfg.Store.Path = "alerts.db"
	cfg.Schedule.Cron = "0 7 * * *"
	return cfg
}

// Load reads the YAML file at path over Default.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
