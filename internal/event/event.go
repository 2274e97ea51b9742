// Package event decodes the pull request payloads the tool is invoked with.
package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"

	"github.com/naka-gawa/pr-sheet-sync/internal/domain"
	"github.com/naka-gawa/pr-sheet-sync/internal/gateway"
)

// ErrEmptyPayload is returned when there is nothing to decode.
var ErrEmptyPayload = errors.New("empty pull request payload")

// flatPullRequest is the record a workflow step builds from the pull request event.
type flatPullRequest struct {
	MergedAt           timestamp `json:"merged_at"`
	HTMLURL            string    `json:"html_url"`
	UserLogin          string    `json:"user_login"`
	Title              string    `json:"title"`
	RepoName           string    `json:"repo_name"`
	UpdatedAt          timestamp `json:"updated_at"`
	RequestedReviewers loginList `json:"requested_reviewers"`
	Assignees          loginList `json:"assignees"`
	UserType           string    `json:"user_type"`
	UserSiteAdmin      bool      `json:"user_site_admin"`
	AuthorAssociation  string    `json:"author_association"`
}

// Parse decodes a flattened pull request record, a REST pull request object
// or a pull_request webhook event.
func Parse(data []byte) (domain.PullRequest, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return domain.PullRequest{}, ErrEmptyPayload
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return domain.PullRequest{}, fmt.Errorf("failed to decode pull request payload: %w", err)
	}

	if raw, ok := keys["pull_request"]; ok {
		return parseGitHub(raw)
	}
	if _, ok := keys["user"]; ok {
		return parseGitHub(data)
	}

	var flat flatPullRequest
	if err := json.Unmarshal(data, &flat); err != nil {
		return domain.PullRequest{}, fmt.Errorf("failed to decode flattened pull request: %w", err)
	}
	pr := domain.PullRequest{
		URL:                flat.HTMLURL,
		AuthorLogin:        flat.UserLogin,
		Title:              flat.Title,
		RepoName:           flat.RepoName,
		UpdatedAt:          flat.UpdatedAt.Time,
		RequestedReviewers: flat.RequestedReviewers,
		Assignees:          flat.Assignees,
		AuthorType:         flat.UserType,
		AuthorIsSiteAdmin:  flat.UserSiteAdmin,
		AuthorAssociation:  flat.AuthorAssociation,
	}
	if !flat.MergedAt.IsZero() {
		merged := flat.MergedAt.Time
		pr.MergedAt = &merged
	}
	return pr, nil
}

func parseGitHub(data []byte) (domain.PullRequest, error) {
	var pr github.PullRequest
	if err := json.Unmarshal(data, &pr); err != nil {
		return domain.PullRequest{}, fmt.Errorf("failed to decode GitHub pull request: %w", err)
	}
	return gateway.FromGitHub(&pr), nil
}

// timestamp is an RFC 3339 time. A value without a zone keeps its date part;
// null, empty and other malformed values decode to the zero time.
type timestamp struct {
	time.Time
}

func (t *timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil || s == "" {
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339, s); err == nil {
		t.Time = parsed
		return nil
	}
	date, _, _ := strings.Cut(s, "T")
	if parsed, err := time.Parse(time.DateOnly, date); err == nil {
		t.Time = parsed
	}
	return nil
}

// loginList accepts a comma separated string, a list of logins or a list of
// user objects. Anything else decodes to an empty list.
type loginList []string

func (l *loginList) UnmarshalJSON(b []byte) error {
	*l = nil
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		for _, login := range strings.Split(s, ",") {
			if login = strings.TrimSpace(login); login != "" {
				*l = append(*l, login)
			}
		}
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return nil
	}
	for _, item := range items {
		var user struct {
			Login string `json:"login"`
		}
		if err := json.Unmarshal(item, &user.Login); err != nil {
			if err := json.Unmarshal(item, &user); err != nil {
				continue
			}
		}
		*l = append(*l, user.Login)
	}
	return nil
}
