// Package report renders collected repository stats into the plain-text
// report body delivered over the notification channels. Rendering is pure:
// no I/O, deterministic for fixed inputs except the generated-at footer.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/montanaflynn/stats"

	"github.com/PoetryWindy/github-stats-bot/internal/domain"
)

// now is the footer clock, swapped out in tests.
var now = time.Now

const windowLayout = "2006-01-02 15:04"

// Render formats the full report: header, aggregate totals, one detail block
// per repository in input order, and a generated-at footer.
func Render(statsList []domain.RepoStats, kind string, window domain.TimeWindow, includeIssues bool) string {
	summary := domain.Summarize(statsList)

	var b strings.Builder
	fmt.Fprintf(&b, "📊 GitHub %s Report\n", capitalize(kind))
	fmt.Fprintf(&b, "⏰ Window: %s UTC to %s UTC\n",
		window.Since.UTC().Format(windowLayout), window.Until.UTC().Format(windowLayout))
	fmt.Fprintf(&b, "📁 Repositories: %d\n", summary.Repos)

	b.WriteString("\n📈 Overall:\n")
	fmt.Fprintf(&b, "  • Commits: %s\n", comma(summary.TotalCommits))
	fmt.Fprintf(&b, "  • Additions: %s lines\n", comma(summary.Additions))
	fmt.Fprintf(&b, "  • Deletions: %s lines\n", comma(summary.Deletions))
	fmt.Fprintf(&b, "  • Net change: %s lines\n", signedComma(summary.Net()))
	if includeIssues {
		fmt.Fprintf(&b, "  • New issues: %s\n", comma(summary.NewIssues))
		fmt.Fprintf(&b, "  • Closed issues: %s\n", comma(summary.ClosedIssues))
		fmt.Fprintf(&b, "  • Comments: %s\n", comma(summary.Comments))
	}
	if len(statsList) > 1 {
		writeDistribution(&b, statsList)
	}

	b.WriteString("\n📋 Per repository:\n\n")
	for _, rs := range statsList {
		fmt.Fprintf(&b, "🔹 %s:\n", rs.Name)
		fmt.Fprintf(&b, "  • Commits: %s\n", comma(rs.Commits.TotalCommits))
		fmt.Fprintf(&b, "  • Additions: %s lines\n", comma(rs.Commits.Additions))
		fmt.Fprintf(&b, "  • Deletions: %s lines\n", comma(rs.Commits.Deletions))
		fmt.Fprintf(&b, "  • Net change: %s lines\n", signedComma(rs.Commits.Net()))
		if includeIssues && rs.Issues != nil {
			fmt.Fprintf(&b, "  • New issues: %s\n", comma(rs.Issues.NewIssues))
			fmt.Fprintf(&b, "  • Closed issues: %s\n", comma(rs.Issues.ClosedIssues))
			fmt.Fprintf(&b, "  • Comments: %s\n", comma(rs.Issues.Comments))
		}
		for _, fe := range rs.FetchErrors {
			fmt.Fprintf(&b, "  ⚠ data incomplete: %s\n", fe)
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n")
	fmt.Fprintf(&b, "Generated at %s UTC\n", now().UTC().Format("2006-01-02 15:04:05"))
	b.WriteString("Powered by GitHub Stats Bot")
	return b.String()
}

// writeDistribution adds cross-repository summary lines that only make sense
// with more than one repository in the run.
func writeDistribution(b *strings.Builder, statsList []domain.RepoStats) {
	perRepo := make([]float64, 0, len(statsList))
	busiest := statsList[0]
	for _, rs := range statsList {
		perRepo = append(perRepo, float64(rs.Commits.TotalCommits))
		if rs.Commits.TotalCommits > busiest.Commits.TotalCommits {
			busiest = rs
		}
	}
	if median, err := stats.Median(perRepo); err == nil {
		fmt.Fprintf(b, "  • Median commits per repo: %s\n", strconv.FormatFloat(median, 'f', -1, 64))
	}
	fmt.Fprintf(b, "  • Most active: %s (%s commits)\n", busiest.Name, comma(busiest.Commits.TotalCommits))
}

func comma(n int) string {
	return humanize.Comma(int64(n))
}

// signedComma always carries an explicit sign, including for zero.
func signedComma(n int) string {
	if n >= 0 {
		return "+" + humanize.Comma(int64(n))
	}
	return humanize.Comma(int64(n))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
