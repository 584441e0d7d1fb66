// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/PoetryWindy/github-stats-bot/internal/domain"
	"github.com/PoetryWindy/github-stats-bot/internal/gateway"
)

// Collector is the use case for gathering per-repository activity stats.
// Repositories are processed sequentially in the caller-supplied order; a
// failure in one repository degrades to a zero-filled entry and never aborts
// the batch.
type Collector struct {
	fetcher gateway.Fetcher
	logger  *log.Logger
}

// NewCollector creates a new Collector instance.
func NewCollector(fetcher gateway.Fetcher, logger *log.Logger) *Collector {
	return &Collector{
		fetcher: fetcher,
		logger:  logger,
	}
}

// CollectRepo gathers commit and, when requested, issue stats for a single
// repository. Fetch failures are logged, zero-filled, and recorded in the
// result's FetchErrors so downstream consumers can tell them from genuine
// zero activity. A panic during collection yields a zeroed entry too.
func (c *Collector) CollectRepo(ctx context.Context, repo string, window domain.TimeWindow, includeIssues bool) (rs domain.RepoStats) {
	rs = domain.RepoStats{Name: repo}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Printf("panic collecting %s: %v", repo, r)
			rs = domain.RepoStats{Name: repo, FetchErrors: []string{fmt.Sprintf("panic: %v", r)}}
			if includeIssues {
				rs.Issues = &domain.IssueStats{}
			}
		}
	}()

	commits, err := c.fetcher.FetchCommits(ctx, repo, window)
	if err != nil {
		c.logger.Printf("failed to fetch commits for %s: %v", repo, err)
		rs.FetchErrors = append(rs.FetchErrors, fmt.Sprintf("commits: %v", err))
	}
	rs.Commits = commits

	if includeIssues {
		issues, err := c.fetcher.FetchIssues(ctx, repo, window)
		if err != nil {
			c.logger.Printf("failed to fetch issues for %s: %v", repo, err)
			rs.FetchErrors = append(rs.FetchErrors, fmt.Sprintf("issues: %v", err))
		}
		rs.Issues = &issues
	}
	return rs
}

// CollectAll gathers stats for every repository in repos.
// The result always has exactly one entry per input repository, in input
// order, regardless of individual failures.
func (c *Collector) CollectAll(ctx context.Context, repos []string, window domain.TimeWindow, includeIssues bool) []domain.RepoStats {
	c.logger.Printf("collecting stats for %d repositories...", len(repos))
	statsList := make([]domain.RepoStats, 0, len(repos))
	for _, repo := range repos {
		statsList = append(statsList, c.CollectRepo(ctx, repo, window, includeIssues))
	}
	c.logger.Println("collection complete")
	return statsList
}
