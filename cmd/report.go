// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/PoetryWindy/github-stats-bot/internal/config"
	"github.com/PoetryWindy/github-stats-bot/internal/domain"
	"github.com/PoetryWindy/github-stats-bot/internal/gateway"
	"github.com/PoetryWindy/github-stats-bot/internal/notify"
	"github.com/PoetryWindy/github-stats-bot/internal/report"
	"github.com/PoetryWindy/github-stats-bot/internal/usecase"
)

var reportCmd = &cobra.Command{
	Use:       "report <daily|weekly>",
	Short:     "Collects repository activity and sends the report",
	Long:      `Collects commit and issue activity for the configured repositories over the kind's lookback window, renders the report, and delivers it over the configured notification channels.`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"daily", "weekly"},
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		kind := args[0]

		// Get the verbose flag from the root command to set up the logger.
		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger := log.New(io.Discard, "", log.LstdFlags) // Default: discard all logs.
		if verbose {
			logger.SetOutput(os.Stderr) // If verbose, log to standard error.
		}

		settingsPath, _ := cmd.Flags().GetString("settings")
		reposPath, _ := cmd.Flags().GetString("repos")

		fmt.Printf("Generating %s report...\n", kind)

		// Pick up a local .env before capturing the environment.
		_ = godotenv.Load()

		env := config.LoadEnv(logger)
		if env.Token == "" {
			fmt.Fprintln(os.Stderr, "Error: GITHUB_TOKEN environment variable is not set.")
			os.Exit(1)
		}

		settings, err := config.LoadSettings(settingsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		rc, err := settings.Report(kind)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if !rc.Enabled {
			// A disabled kind is a clean skip, not a failure.
			fmt.Printf("%s report is disabled, nothing to do\n", kind)
			return
		}

		repos, err := config.LoadRepos(reposPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Reporting on %d repositories: %s\n", len(repos), strings.Join(repos, ", "))

		window := domain.NewWindow(time.Now(), rc.DaysBack)
		fmt.Printf("Window: %s UTC to %s UTC\n",
			window.Since.Format("2006-01-02 15:04"), window.Until.Format("2006-01-02 15:04"))

		githubGateway, err := gateway.NewGitHubGateway(env.Token, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}
		collector := usecase.NewCollector(githubGateway, logger)

		fmt.Println("Collecting stats...")
		statsList := collector.CollectAll(ctx, repos, window, rc.IssuesEnabled())

		content := report.Render(statsList, kind, window, rc.IssuesEnabled())

		fmt.Println("Sending notifications...")
		notifier := notify.NewNotifier(env, settings.EmailRecipients, logger)
		result := notifier.SendAll(notify.Subject(kind), content, nil)

		printChannelResult("Email", result.Email)
		printChannelResult("OneBot", result.OneBot)

		if !result.Delivered() {
			// Never lose the report: dump it to the console as a fallback.
			fmt.Println("Warning: no notification channel succeeded")
			rule := strings.Repeat("=", 50)
			fmt.Printf("\n%s\nReport:\n%s\n%s\n%s\n", rule, rule, content, rule)
		}

		fmt.Printf("%s report complete\n", kind)
	},
}

func printChannelResult(channel string, ok bool) {
	if ok {
		fmt.Printf("✓ %s sent\n", channel)
	} else {
		fmt.Printf("✗ %s failed or not configured\n", channel)
	}
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().String("settings", "config/settings.json", "Path to the settings document")
	reportCmd.Flags().String("repos", "config/repos.json", "Path to the repository list")
}
