// Package gateway provides gateways to the GitHub and Google Sheets APIs,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/rs/zerolog"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/pr-sheet-sync/internal/domain"
)

// Supported GitHub APIs for fetching pull requests.
const (
	APIREST    = "rest"
	APIGraphQL = "graphql"
)

var (
	// ErrTokenRequired is returned when the GraphQL API is selected without a token.
	ErrTokenRequired = errors.New("the GraphQL API requires a GitHub token")
	// ErrUnknownAPI is returned for an API name other than rest or graphql.
	ErrUnknownAPI = errors.New("unknown GitHub API")
)

// Fetcher defines the behavior of a gateway for fetching pull requests from GitHub.
type Fetcher interface {
	FetchPullRequest(ctx context.Context, ref domain.PullRequestRef) (*domain.PullRequest, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	api           string
	logger        zerolog.Logger
}

// pullRequestQuery fetches the fields of a single pull request that end up in the sheet.
type pullRequestQuery struct {
	Repository struct {
		PullRequest struct {
			URL               string
			Title             string
			MergedAt          *githubv4.DateTime
			UpdatedAt         githubv4.DateTime
			AuthorAssociation string
			Author            struct {
				Typename string `graphql:"__typename"`
				Login    string
				User     struct {
					IsSiteAdmin bool
				} `graphql:"... on User"`
			}
			Repository struct {
				Name string
			}
			ReviewRequests struct {
				Nodes []struct {
					RequestedReviewer struct {
						User struct {
							Login string
						} `graphql:"... on User"`
					}
				}
			} `graphql:"reviewRequests(first: 100)"`
			Assignees struct {
				Nodes []struct {
					Login string
				}
			} `graphql:"assignees(first: 100)"`
		} `graphql:"pullRequest(number: $number)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// An empty token gives an unauthenticated REST client, enough for public repositories.
func NewGitHubGateway(token, api string, logger zerolog.Logger) (Fetcher, error) {
	switch api {
	case APIREST:
	case APIGraphQL:
		if token == "" {
			return nil, ErrTokenRequired
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAPI, api)
	}

	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	var transport http.RoundTripper = rateLimitWaiter
	if token != "" {
		transport = &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		}
	}
	httpClient := &http.Client{Transport: transport}
	logger.Debug().Bool("token_present", token != "").Str("api", api).Msg("GitHub client initialized")
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		api:           api,
		logger:        logger,
	}, nil
}

// FetchPullRequest fetches a single pull request with the configured API.
func (g *GitHubGateway) FetchPullRequest(ctx context.Context, ref domain.PullRequestRef) (*domain.PullRequest, error) {
	g.logger.Info().Str("ref", ref.String()).Str("api", g.api).Msg("fetching pull request details")
	if g.api == APIGraphQL {
		return g.fetchGraphQL(ctx, ref)
	}
	return g.fetchREST(ctx, ref)
}

func (g *GitHubGateway) fetchREST(ctx context.Context, ref domain.PullRequestRef) (*domain.PullRequest, error) {
	pr, _, err := g.restClient.PullRequests.Get(ctx, ref.Owner, ref.Repo, ref.Number)
	if err != nil {
		return nil, fmt.Errorf("failed to get pull request %s with REST API: %w", ref, err)
	}
	result := FromGitHub(pr)
	return &result, nil
}

func (g *GitHubGateway) fetchGraphQL(ctx context.Context, ref domain.PullRequestRef) (*domain.PullRequest, error) {
	variables := map[string]interface{}{
		"owner":  githubv4.String(ref.Owner),
		"name":   githubv4.String(ref.Repo),
		"number": githubv4.Int(ref.Number),
	}
	var q pullRequestQuery
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return nil, fmt.Errorf("failed to execute GraphQL query for pull request %s: %w", ref, err)
	}

	node := q.Repository.PullRequest
	pr := domain.PullRequest{
		URL:               node.URL,
		AuthorLogin:       node.Author.Login,
		Title:             node.Title,
		RepoName:          node.Repository.Name,
		UpdatedAt:         node.UpdatedAt.Time,
		AuthorType:        node.Author.Typename,
		AuthorIsSiteAdmin: node.Author.User.IsSiteAdmin,
		AuthorAssociation: node.AuthorAssociation,
	}
	if node.MergedAt != nil {
		merged := node.MergedAt.Time
		pr.MergedAt = &merged
	}
	for _, n := range node.ReviewRequests.Nodes {
		// Team review requests have no login and are left out, as in the REST API.
		if login := n.RequestedReviewer.User.Login; login != "" {
			pr.RequestedReviewers = append(pr.RequestedReviewers, login)
		}
	}
	for _, n := range node.Assignees.Nodes {
		pr.Assignees = append(pr.Assignees, n.Login)
	}
	return &pr, nil
}

// FromGitHub maps a REST or webhook pull request onto the domain record.
func FromGitHub(pr *github.PullRequest) domain.PullRequest {
	user := pr.GetUser()
	result := domain.PullRequest{
		URL:               pr.GetHTMLURL(),
		AuthorLogin:       user.GetLogin(),
		Title:             pr.GetTitle(),
		RepoName:          pr.GetBase().GetRepo().GetName(),
		UpdatedAt:         pr.GetUpdatedAt().Time,
		AuthorType:        user.GetType(),
		AuthorIsSiteAdmin: user.GetSiteAdmin(),
		AuthorAssociation: pr.GetAuthorAssociation(),
	}
	if pr.MergedAt != nil {
		merged := pr.MergedAt.Time
		result.MergedAt = &merged
	}
	for _, r := range pr.RequestedReviewers {
		result.RequestedReviewers = append(result.RequestedReviewers, r.GetLogin())
	}
	for _, a := range pr.Assignees {
		result.Assignees = append(result.Assignees, a.GetLogin())
	}
	return result
}
