// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// TimeWindow is the UTC time range bounding all activity queries for one run.
// Both bounds are inclusive. Since is always strictly before Until.
type TimeWindow struct {
	Since time.Time `json:"since"`
	Until time.Time `json:"until"`
}

// NewWindow derives the reporting window from the current time: Until is now
// truncated to the start of the UTC day, Since is daysBack days earlier.
func NewWindow(now time.Time, daysBack int) TimeWindow {
	now = now.UTC()
	until := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return TimeWindow{
		Since: until.AddDate(0, 0, -daysBack),
		Until: until,
	}
}

// Contains reports whether t falls inside the window, bounds included.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Since) && !t.After(w.Until)
}

// CommitStats holds commit activity for one repository. Merge commits
// (more than one parent) are excluded from all three counts.
type CommitStats struct {
	TotalCommits int `json:"total_commits"`
	Additions    int `json:"additions"`
	Deletions    int `json:"deletions"`
}

// Net returns additions minus deletions. It may be negative.
func (c CommitStats) Net() int {
	return c.Additions - c.Deletions
}

// IssueStats holds issue activity for one repository. Comments are counted
// only for issues created inside the window; ClosedIssues is independent of
// creation time, so an issue opened and closed in the same window counts
// toward both NewIssues and ClosedIssues.
type IssueStats struct {
	NewIssues    int `json:"new_issues"`
	ClosedIssues int `json:"closed_issues"`
	Comments     int `json:"comments"`
}

// RepoStats is the per-repository result of one collection run.
// Issues is nil when issue collection was not requested.
//
// FetchErrors records sources that failed for this repository; their counts
// are zero-filled. An all-zero entry with an empty FetchErrors therefore
// means "no activity", while a non-empty FetchErrors means "data missing".
type RepoStats struct {
	Name        string      `json:"repo_name"`
	Commits     CommitStats `json:"commits"`
	Issues      *IssueStats `json:"issues,omitempty"`
	FetchErrors []string    `json:"fetch_errors,omitempty"`
}

// Summary is the aggregate over all repositories in a run.
type Summary struct {
	Repos        int
	TotalCommits int
	Additions    int
	Deletions    int
	NewIssues    int
	ClosedIssues int
	Comments     int
}

// Net returns the aggregate net line change.
func (s Summary) Net() int {
	return s.Additions - s.Deletions
}

// Summarize totals the given per-repository stats. Issue totals only
// accumulate from entries whose Issues field is present.
func Summarize(statsList []RepoStats) Summary {
	s := Summary{Repos: len(statsList)}
	for _, rs := range statsList {
		s.TotalCommits += rs.Commits.TotalCommits
		s.Additions += rs.Commits.Additions
		s.Deletions += rs.Commits.Deletions
		if rs.Issues != nil {
			s.NewIssues += rs.Issues.NewIssues
			s.ClosedIssues += rs.Issues.ClosedIssues
			s.Comments += rs.Issues.Comments
		}
	}
	return s
}
