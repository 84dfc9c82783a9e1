package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel  string       `json:"log_level" yaml:"log_level"`
	LogFormat string       `json:"log_format" yaml:"log_format"`
	Report    ReportConfig `json:"report" yaml:"report"`
	Paths     PathsConfig  `json:"paths" yaml:"paths"`
	Source    SourceConfig `json:"source" yaml:"source"`
	Email     EmailConfig  `json:"email" yaml:"email"`
	Ingest    IngestConfig `json:"ingest" yaml:"ingest"`
}

type ReportConfig struct {
	WeekEndDay int    `json:"week_end_day" yaml:"week_end_day"`
	WeeksNo    int    `json:"weeks_no" yaml:"weeks_no"`
	TopN       int    `json:"top_n" yaml:"top_n"`
	CurDate    string `json:"cur_date" yaml:"cur_date"`
}

type PathsConfig struct {
	DatabaseDir string `json:"database_dir" yaml:"database_dir"`
	ReportDir   string `json:"report_dir" yaml:"report_dir"`
}

type SourceConfig struct {
	Driver string `json:"driver" yaml:"driver"`
	DSN    string `json:"dsn" yaml:"dsn"`
}

type EmailConfig struct {
	SendEmail         bool     `json:"send_email" yaml:"send_email"`
	SMTPHost          string   `json:"smtp_host" yaml:"smtp_host"`
	SMTPPort          int      `json:"smtp_port" yaml:"smtp_port"`
	Username          string   `json:"username" yaml:"username"`
	Password          string   `json:"password" yaml:"password"`
	From              string   `json:"from" yaml:"from"`
	To                []string `json:"to" yaml:"to"`
	UseTLS            bool     `json:"use_tls" yaml:"use_tls"`
	UseAuthentication bool     `json:"use_authentication" yaml:"use_authentication"`
	SubjectTemplate   string   `json:"subject_template" yaml:"subject_template"`
}

type IngestConfig struct {
	BatchSize int         `json:"batch_size" yaml:"batch_size"`
	Kafka     KafkaConfig `json:"kafka" yaml:"kafka"`
}

type KafkaConfig struct {
	Brokers []string `json:"brokers" yaml:"brokers"`
	Topic   string   `json:"topic" yaml:"topic"`
	GroupID string   `json:"group_id" yaml:"group_id"`
}

const DefaultSubjectTemplate = "Weekly Attack Trends Report - {customer} - Week Ending {week_end}"

func DefaultConfig() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "json",
		Report: ReportConfig{
			WeekEndDay: 6,
			WeeksNo:    6,
			TopN:       10,
		},
		Paths: PathsConfig{
			DatabaseDir: "database_files",
			ReportDir:   "report_files",
		},
		Source: SourceConfig{Driver: "sqlite"},
		Email: EmailConfig{
			SendEmail:         false,
			SMTPPort:          587,
			UseTLS:            true,
			UseAuthentication: true,
			SubjectTemplate:   DefaultSubjectTemplate,
		},
		Ingest: IngestConfig{BatchSize: 200},
	}
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()

	trimmed := strings.TrimSpace(string(content))
	if len(trimmed) == 0 {
		return nil, errors.New("config file is empty")
	}
	var decodeErr error
	if looksLikeJSON(trimmed) {
		decodeErr = json.Unmarshal([]byte(trimmed), cfg)
	} else {
		decodeErr = yaml.Unmarshal([]byte(trimmed), cfg)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func looksLikeJSON(s string) bool {
	for _, ch := range s {
		if ch == '{' || ch == '[' {
			return true
		}
		if ch > ' ' {
			return false
		}
	}
	return false
}

func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
	}
	if cfg.Report.WeeksNo <= 0 {
		cfg.Report.WeeksNo = 6
	}
	if cfg.Paths.DatabaseDir == "" {
		cfg.Paths.DatabaseDir = "database_files"
	}
	if cfg.Paths.ReportDir == "" {
		cfg.Paths.ReportDir = "report_files"
	}
	if cfg.Source.Driver == "" {
		cfg.Source.Driver = "sqlite"
	}
	if cfg.Email.SMTPPort <= 0 {
		cfg.Email.SMTPPort = 587
	}
	if cfg.Email.SubjectTemplate == "" {
		cfg.Email.SubjectTemplate = DefaultSubjectTemplate
	}
	if cfg.Ingest.BatchSize <= 0 {
		cfg.Ingest.BatchSize = 200
	}
}

func Validate(cfg *Config) error {
	if cfg.Report.WeekEndDay < 0 || cfg.Report.WeekEndDay > 6 {
		return fmt.Errorf("report.week_end_day must be 0-6 (0=Monday, 6=Sunday), got %d", cfg.Report.WeekEndDay)
	}
	if cfg.Report.TopN < 0 {
		return errors.New("report.top_n must be >= 0")
	}
	if cfg.Report.CurDate != "" {
		if _, err := ParseDate(cfg.Report.CurDate); err != nil {
			return fmt.Errorf("report.cur_date: %w", err)
		}
	}
	switch strings.ToLower(cfg.Source.Driver) {
	case "sqlite":
	case "postgres", "postgresql":
		if strings.TrimSpace(cfg.Source.DSN) == "" {
			return errors.New("source.dsn required when source.driver is postgres")
		}
	default:
		return fmt.Errorf("unsupported source driver: %s", cfg.Source.Driver)
	}
	if cfg.Email.SendEmail {
		if cfg.Email.SMTPHost == "" {
			return errors.New("email.smtp_host required when email.send_email is true")
		}
		if cfg.Email.From == "" || len(cfg.Email.To) == 0 {
			return errors.New("email.from and email.to required when email.send_email is true")
		}
		if cfg.Email.UseAuthentication && cfg.Email.Username == "" {
			return errors.New("email.username required when email.use_authentication is true")
		}
	}
	return nil
}

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format: %q", value)
}

// ReferenceDate returns the report reference date: the cur_date override when
// set, otherwise now.
func (c *Config) ReferenceDate(now time.Time) time.Time {
	if c.Report.CurDate == "" {
		return now
	}
	t, err := ParseDate(c.Report.CurDate)
	if err != nil {
		return now
	}
	return t
}

func ResolvePath(path string) string {
	if path == "" {
		return path
	}
	if filepath.IsAbs(path) {
		return path
	}
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	return filepath.Join(cwd, path)
}
