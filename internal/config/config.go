// Package config loads the settings and repository-list documents and
// captures all environment-derived configuration once at process start.
// Nothing outside this package reads os.Getenv.
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
)

// ReportConfig is one "<kind>_report" block from the settings document.
type ReportConfig struct {
	Enabled       bool  `json:"enabled"`
	DaysBack      int   `json:"days_back"`
	IncludeIssues *bool `json:"include_issues"`
}

// IssuesEnabled reports whether issue collection is requested.
// An absent include_issues field defaults to true.
func (r *ReportConfig) IssuesEnabled() bool {
	return r.IncludeIssues == nil || *r.IncludeIssues
}

// Settings is the top-level settings document.
type Settings struct {
	DailyReport     *ReportConfig `json:"daily_report"`
	WeeklyReport    *ReportConfig `json:"weekly_report"`
	EmailRecipients []string      `json:"email_recipients"`
}

// Report returns the configuration block for the given report kind.
func (s *Settings) Report(kind string) (*ReportConfig, error) {
	var rc *ReportConfig
	switch kind {
	case "daily":
		rc = s.DailyReport
	case "weekly":
		rc = s.WeeklyReport
	default:
		return nil, fmt.Errorf("unknown report kind %q", kind)
	}
	if rc == nil {
		return nil, fmt.Errorf("settings document has no %s_report section", kind)
	}
	if rc.DaysBack <= 0 {
		return nil, fmt.Errorf("%s_report: days_back must be positive, got %d", kind, rc.DaysBack)
	}
	return rc, nil
}

// LoadSettings reads and decodes the settings document.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	return &s, nil
}

// LoadRepos reads the repository-list document: a non-empty JSON array of
// "owner/name" strings. Order is preserved and carried through to the report.
func LoadRepos(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read repository list: %w", err)
	}
	var repos []string
	if err := json.Unmarshal(data, &repos); err != nil {
		return nil, fmt.Errorf("failed to parse repository list %s: %w", path, err)
	}
	if len(repos) == 0 {
		return nil, fmt.Errorf("repository list %s is empty", path)
	}
	for _, r := range repos {
		owner, name, ok := strings.Cut(r, "/")
		if !ok || owner == "" || name == "" {
			return nil, fmt.Errorf("invalid repository %q, want owner/name", r)
		}
	}
	return repos, nil
}

// EmailConfig is the SMTP channel configuration.
type EmailConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	UseTLS    bool
	Recipient string // EMAIL_RECIPIENT, optional
}

// OneBotConfig is the chat-webhook channel configuration.
type OneBotConfig struct {
	URL    string
	UserID int64
}

// Env is the environment-derived configuration, built once at startup.
// A nil Email or OneBot means that channel is not (fully) configured.
type Env struct {
	Token  string
	Email  *EmailConfig
	OneBot *OneBotConfig
}

// LoadEnv captures the process environment. Incomplete channel configuration
// is logged and leaves that channel nil; only the token is checked by the
// caller, since a missing token is fatal while missing channels are not.
func LoadEnv(logger *log.Logger) *Env {
	return &Env{
		Token:  os.Getenv("GITHUB_TOKEN"),
		Email:  loadEmailConfig(logger),
		OneBot: loadOneBotConfig(logger),
	}
}

func loadEmailConfig(logger *log.Logger) *EmailConfig {
	for _, v := range []string{"EMAIL_USER", "EMAIL_PASSWORD", "SMTP_HOST", "SMTP_PORT"} {
		if os.Getenv(v) == "" {
			logger.Printf("email channel not configured, missing %s", v)
			return nil
		}
	}
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		logger.Printf("email channel not configured, invalid SMTP_PORT: %v", err)
		return nil
	}
	useTLS := true
	if v := os.Getenv("SMTP_USE_TLS"); v != "" {
		useTLS = strings.EqualFold(v, "true")
	}
	return &EmailConfig{
		Host:      os.Getenv("SMTP_HOST"),
		Port:      port,
		User:      os.Getenv("EMAIL_USER"),
		Password:  os.Getenv("EMAIL_PASSWORD"),
		UseTLS:    useTLS,
		Recipient: os.Getenv("EMAIL_RECIPIENT"),
	}
}

func loadOneBotConfig(logger *log.Logger) *OneBotConfig {
	url := os.Getenv("ONEBOT_URL")
	qq := os.Getenv("ONEBOT_QQ")
	if url == "" || qq == "" {
		logger.Println("onebot channel not configured, missing ONEBOT_URL or ONEBOT_QQ")
		return nil
	}
	userID, err := strconv.ParseInt(qq, 10, 64)
	if err != nil {
		logger.Printf("onebot channel not configured, invalid ONEBOT_QQ: %v", err)
		return nil
	}
	return &OneBotConfig{URL: url, UserID: userID}
}
