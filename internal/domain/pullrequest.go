// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidReference is returned when a pull request reference cannot be parsed.
var ErrInvalidReference = errors.New("invalid pull request reference")

// PullRequest is the normalized pull request record the synchronization works on.
// It is the core domain entity of this application.
type PullRequest struct {
	MergedAt           *time.Time
	URL                string
	AuthorLogin        string
	Title              string
	RepoName           string
	UpdatedAt          time.Time
	RequestedReviewers []string
	Assignees          []string
	AuthorType         string
	AuthorIsSiteAdmin  bool
	AuthorAssociation  string
}

// PullRequestRef identifies a pull request on GitHub.
type PullRequestRef struct {
	Owner  string
	Repo   string
	Number int
}

func (r PullRequestRef) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

// ParsePullRequestRef accepts an API URL (https://api.github.com/repos/o/r/pulls/1),
// a web URL (https://github.com/o/r/pull/1) or the shorthand o/r#1.
func ParsePullRequestRef(raw string) (PullRequestRef, error) {
	raw = strings.TrimSpace(raw)
	if owner, rest, ok := strings.Cut(raw, "/"); ok && !strings.Contains(raw, "://") {
		repo, num, ok := strings.Cut(rest, "#")
		if !ok || strings.Contains(repo, "/") {
			return PullRequestRef{}, fmt.Errorf("%w: %q", ErrInvalidReference, raw)
		}
		return newRef(raw, owner, repo, num)
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return PullRequestRef{}, fmt.Errorf("%w: %q", ErrInvalidReference, raw)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	// api: repos/{owner}/{repo}/pulls/{n}; web: {owner}/{repo}/pull/{n}
	if len(parts) == 5 && parts[0] == "repos" && parts[3] == "pulls" {
		return newRef(raw, parts[1], parts[2], parts[4])
	}
	if len(parts) >= 4 && parts[2] == "pull" {
		return newRef(raw, parts[0], parts[1], parts[3])
	}
	return PullRequestRef{}, fmt.Errorf("%w: %q", ErrInvalidReference, raw)
}

func newRef(raw, owner, repo, num string) (PullRequestRef, error) {
	n, err := strconv.Atoi(num)
	if err != nil || n <= 0 || owner == "" || repo == "" {
		return PullRequestRef{}, fmt.Errorf("%w: %q", ErrInvalidReference, raw)
	}
	return PullRequestRef{Owner: owner, Repo: repo, Number: n}, nil
}
