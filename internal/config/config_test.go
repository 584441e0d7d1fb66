package config

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSettings(t *testing.T) {
	path := writeFile(t, "settings.json", `{
		"daily_report": {"enabled": true, "days_back": 1, "include_issues": false},
		"weekly_report": {"enabled": false, "days_back": 7},
		"email_recipients": ["a@example.com", "b@example.com"]
	}`)

	s, err := LoadSettings(path)
	require.NoError(t, err)

	daily, err := s.Report("daily")
	require.NoError(t, err)
	assert.True(t, daily.Enabled)
	assert.Equal(t, 1, daily.DaysBack)
	assert.False(t, daily.IssuesEnabled())

	weekly, err := s.Report("weekly")
	require.NoError(t, err)
	assert.False(t, weekly.Enabled)
	// include_issues absent defaults to true.
	assert.True(t, weekly.IssuesEnabled())

	assert.Equal(t, []string{"a@example.com", "b@example.com"}, s.EmailRecipients)
}

func TestLoadSettings_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		kind    string
		errMsg  string
	}{
		{
			name:    "missing section",
			content: `{"daily_report": {"enabled": true, "days_back": 1}}`,
			kind:    "weekly",
			errMsg:  "no weekly_report section",
		},
		{
			name:    "unknown kind",
			content: `{"daily_report": {"enabled": true, "days_back": 1}}`,
			kind:    "monthly",
			errMsg:  "unknown report kind",
		},
		{
			name:    "non-positive days_back",
			content: `{"daily_report": {"enabled": true, "days_back": 0}}`,
			kind:    "daily",
			errMsg:  "days_back must be positive",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := LoadSettings(writeFile(t, "settings.json", tc.content))
			require.NoError(t, err)
			_, err = s.Report(tc.kind)
			assert.ErrorContains(t, err, tc.errMsg)
		})
	}
}

func TestLoadSettings_Unreadable(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "failed to read settings")

	_, err = LoadSettings(writeFile(t, "settings.json", "{not json"))
	assert.ErrorContains(t, err, "failed to parse settings")
}

func TestLoadRepos(t *testing.T) {
	repos, err := LoadRepos(writeFile(t, "repos.json", `["golang/go", "spf13/cobra"]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"golang/go", "spf13/cobra"}, repos)
}

func TestLoadRepos_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		errMsg  string
	}{
		{name: "empty list", content: `[]`, errMsg: "is empty"},
		{name: "not a list", content: `{"repo": "a/b"}`, errMsg: "failed to parse"},
		{name: "missing owner", content: `["/name"]`, errMsg: "invalid repository"},
		{name: "no slash", content: `["just-a-name"]`, errMsg: "invalid repository"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadRepos(writeFile(t, "repos.json", tc.content))
			assert.ErrorContains(t, err, tc.errMsg)
		})
	}
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestLoadEnv_FullConfiguration(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("EMAIL_USER", "bot@example.com")
	t.Setenv("EMAIL_PASSWORD", "secret")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "587")
	t.Setenv("SMTP_USE_TLS", "true")
	t.Setenv("EMAIL_RECIPIENT", "team@example.com")
	t.Setenv("ONEBOT_URL", "http://localhost:5700/send_private_msg")
	t.Setenv("ONEBOT_QQ", "123456789")

	env := LoadEnv(discardLogger())

	assert.Equal(t, "ghp_test", env.Token)
	require.NotNil(t, env.Email)
	assert.Equal(t, &EmailConfig{
		Host:      "smtp.example.com",
		Port:      587,
		User:      "bot@example.com",
		Password:  "secret",
		UseTLS:    true,
		Recipient: "team@example.com",
	}, env.Email)
	require.NotNil(t, env.OneBot)
	assert.Equal(t, &OneBotConfig{URL: "http://localhost:5700/send_private_msg", UserID: 123456789}, env.OneBot)
}

func TestLoadEnv_IncompleteChannels(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	// Email missing SMTP_PORT, OneBot missing ONEBOT_QQ.
	t.Setenv("EMAIL_USER", "bot@example.com")
	t.Setenv("EMAIL_PASSWORD", "secret")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "")
	t.Setenv("ONEBOT_URL", "http://localhost:5700/send_private_msg")
	t.Setenv("ONEBOT_QQ", "")

	env := LoadEnv(discardLogger())
	assert.Nil(t, env.Email)
	assert.Nil(t, env.OneBot)
}

func TestLoadEnv_InvalidValues(t *testing.T) {
	t.Setenv("EMAIL_USER", "bot@example.com")
	t.Setenv("EMAIL_PASSWORD", "secret")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "not-a-port")
	t.Setenv("ONEBOT_URL", "http://localhost:5700")
	t.Setenv("ONEBOT_QQ", "not-a-number")

	env := LoadEnv(discardLogger())
	assert.Nil(t, env.Email)
	assert.Nil(t, env.OneBot)
}

func TestLoadEnv_TLSDefaultsOn(t *testing.T) {
	t.Setenv("EMAIL_USER", "bot@example.com")
	t.Setenv("EMAIL_PASSWORD", "secret")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "25")
	t.Setenv("SMTP_USE_TLS", "")

	env := LoadEnv(discardLogger())
	require.NotNil(t, env.Email)
	assert.True(t, env.Email.UseTLS)

	t.Setenv("SMTP_USE_TLS", "false")
	env = LoadEnv(discardLogger())
	require.NotNil(t, env.Email)
	assert.False(t, env.Email.UseTLS)
}
