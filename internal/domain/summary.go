package domain

// RepoSummary holds the tracked pull request counts for a single repository.
type RepoSummary struct {
	Name            string  `json:"name"`
	PullRequests    int     `json:"pull_requests"`
	Merged          int     `json:"merged"`
	ReviewersMean   float64 `json:"reviewers_mean"`
	ReviewersMedian float64 `json:"reviewers_median"`
}
