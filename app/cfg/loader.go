package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./freshbox.db" description:"Path to the SQLite database file"`

	// Application configuration
	Port                string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey        string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for management endpoints (optional)"`
	WorkerCount         int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers"`
	SchedulerInterval   int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"60" description:"Scheduler tick interval in seconds"`
	ExpiryCheckInterval int    `long:"expiry-check-interval" env:"EXPIRY_CHECK_INTERVAL" default:"1440" description:"Expiry check repeat interval in minutes (minimum 15)"`
	ExpiringSoonDays    int    `long:"expiring-soon-days" env:"EXPIRING_SOON_DAYS" default:"3" description:"Day threshold for the expiring-soon lists"`
	CategoriesFile      string `long:"categories-file" env:"CATEGORIES_FILE" default:"./categories.yml" description:"YAML file with seeded default categories"`
	PrefsFile           string `long:"prefs-file" env:"PREFS_FILE" default:"./prefs.yml" description:"YAML file holding persisted preferences"`

	// Notification configuration
	SMTPHost     string `long:"smtp-host" env:"SMTP_HOST" description:"SMTP host for expiry notifications (optional)"`
	SMTPPort     int    `long:"smtp-port" env:"SMTP_PORT" default:"587" description:"SMTP port"`
	SMTPFrom     string `long:"smtp-from" env:"SMTP_FROM" description:"Sender address for expiry notifications"`
	SMTPTo       string `long:"smtp-to" env:"SMTP_TO" description:"Recipient address for expiry notifications"`
	SMTPPassword string `long:"smtp-password" env:"SMTP_PASSWORD" description:"SMTP password"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"" description:"Timezone for date comparisons (e.g., UTC, Asia/Seoul)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:              raw.DBPath,
		Port:                raw.Port,
		APIAccessKey:        raw.APIAccessKey,
		WorkerCount:         raw.WorkerCount,
		SchedulerInterval:   raw.SchedulerInterval,
		ExpiryCheckInterval: raw.ExpiryCheckInterval,
		ExpiringSoonDays:    raw.ExpiringSoonDays,
		CategoriesFile:      raw.CategoriesFile,
		PrefsFile:           raw.PrefsFile,
		SMTPHost:            raw.SMTPHost,
		SMTPPort:            raw.SMTPPort,
		SMTPFrom:            raw.SMTPFrom,
		SMTPTo:              raw.SMTPTo,
		SMTPPassword:        raw.SMTPPassword,
		Timezone:            raw.Timezone,
		Debug:               raw.Debug,
		Version:             GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
