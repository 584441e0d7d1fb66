// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/PoetryWindy/github-stats-bot/internal/domain"
)

// Fetcher defines the behavior of a gateway for fetching repository activity
// from GitHub. Both methods return zero-valued stats alongside the error on
// repository-level failure; the caller decides how to degrade.
type Fetcher interface {
	FetchCommits(ctx context.Context, repo string, window domain.TimeWindow) (domain.CommitStats, error)
	FetchIssues(ctx context.Context, repo string, window domain.TimeWindow) (domain.IssueStats, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
// Commit listings come from the REST API (per-commit line stats are only
// available there), issue listings from the GraphQL API, both through a
// shared rate-limit-aware oauth2 transport.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        *log.Logger
}

// repoIssuesQuery pages through a repository's issues touched since the
// window start. The issues connection excludes pull requests.
type repoIssuesQuery struct {
	Repository struct {
		Issues struct {
			PageInfo struct {
				HasNextPage bool
				EndCursor   githubv4.String
			}
			Nodes []struct {
				CreatedAt githubv4.DateTime
				ClosedAt  *githubv4.DateTime
				Comments  struct {
					TotalCount int
				}
			}
		} `graphql:"issues(first: 100, after: $cursor, filterBy: {since: $since}, states: [OPEN, CLOSED])"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(token string, logger *log.Logger) (Fetcher, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		logger:        logger,
	}, nil
}

func splitRepo(repo string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return "", "", fmt.Errorf("invalid repository name %q, want owner/name", repo)
	}
	return owner, name, nil
}

// FetchCommits counts non-merge commits in the window and accumulates their
// added/removed line counts. A commit whose detail lookup fails still counts
// toward TotalCommits; only its line counts are skipped.
func (g *GitHubGateway) FetchCommits(ctx context.Context, repo string, window domain.TimeWindow) (domain.CommitStats, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return domain.CommitStats{}, err
	}
	g.logger.Printf("fetching commits for %s...", repo)

	opts := &github.CommitsListOptions{
		Since:       window.Since,
		Until:       window.Until,
		ListOptions: github.ListOptions{PerPage: 100},
	}
	var stats domain.CommitStats
	for {
		commits, resp, err := g.restClient.Repositories.ListCommits(ctx, owner, name, opts)
		if err != nil {
			return domain.CommitStats{}, fmt.Errorf("failed to list commits for %s: %w", repo, err)
		}
		for _, commit := range commits {
			if len(commit.Parents) > 1 {
				continue // merge commit
			}
			stats.TotalCommits++

			detail, _, err := g.restClient.Repositories.GetCommit(ctx, owner, name, commit.GetSHA(), nil)
			if err != nil {
				g.logger.Printf("skipping line counts for %s@%s: %v", repo, commit.GetSHA(), err)
				continue
			}
			if cs := detail.GetStats(); cs != nil {
				stats.Additions += cs.GetAdditions()
				stats.Deletions += cs.GetDeletions()
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Println("  fetching next page of commits...")
	}
	g.logger.Printf("completed fetching commits for %s", repo)
	return stats, nil
}

// FetchIssues counts issues created in the window (accruing their comment
// totals) and, independently, issues closed in the window.
func (g *GitHubGateway) FetchIssues(ctx context.Context, repo string, window domain.TimeWindow) (domain.IssueStats, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return domain.IssueStats{}, err
	}
	g.logger.Printf("fetching issues for %s...", repo)

	variables := map[string]interface{}{
		"owner":  githubv4.String(owner),
		"name":   githubv4.String(name),
		"since":  githubv4.DateTime{Time: window.Since},
		"cursor": (*githubv4.String)(nil),
	}

	var stats domain.IssueStats
	for {
		var q repoIssuesQuery
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return domain.IssueStats{}, fmt.Errorf("failed to query issues for %s: %w", repo, err)
		}
		for _, issue := range q.Repository.Issues.Nodes {
			if window.Contains(issue.CreatedAt.Time) {
				stats.NewIssues++
				stats.Comments += issue.Comments.TotalCount
			}
			if issue.ClosedAt != nil && window.Contains(issue.ClosedAt.Time) {
				stats.ClosedIssues++
			}
		}
		if !q.Repository.Issues.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(q.Repository.Issues.PageInfo.EndCursor)
		g.logger.Println("  fetching next page of issues...")
	}
	g.logger.Printf("completed fetching issues for %s", repo)
	return stats, nil
}
