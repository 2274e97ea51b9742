package domain

import "strings"

// IsEligible reports whether the pull request should be recorded at all.
func IsEligible(pr PullRequest) bool {
	return SkipReason(pr) == ""
}

// SkipReason returns why the pull request is not recorded, or an empty string
// if it is eligible. Association is matched by substring so that any
// MEMBER-qualified role is excluded too.
func SkipReason(pr PullRequest) string {
	switch {
	case pr.AuthorIsSiteAdmin:
		return "author is a site admin"
	case pr.AuthorType != "User":
		return "author type is " + quoteOrEmpty(pr.AuthorType)
	case strings.Contains(pr.AuthorAssociation, "MEMBER"):
		return "author is a member of the organization"
	}
	return ""
}

func quoteOrEmpty(s string) string {
	if s == "" {
		return "empty"
	}
	return `"` + s + `"`
}
