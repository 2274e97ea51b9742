package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
)

// RowWidth is the number of cells a pull request occupies in the sheet.
const RowWidth = 8

// Zero-based column indexes of a Row.
const (
	ColMergedDate = iota
	ColURL
	ColAuthorLogin
	ColTitle
	ColRepoName
	ColUpdatedDate
	ColReviewers
	ColAssignees
)

// KeyColumn is the column used to match rows.
const KeyColumn = ColURL

const dateLayout = "2006-01-02"

// ColumnNames names the row cells in sheet order.
var ColumnNames = [RowWidth]string{
	"mergedDate",
	"url",
	"authorLogin",
	"title",
	"repoName",
	"updatedDate",
	"reviewers",
	"assignees",
}

// Row is the spreadsheet projection of a pull request.
type Row [RowWidth]string

// NewRow projects a pull request into its row. Absent values always become
// empty strings so that rows compare textually.
func NewRow(pr PullRequest) Row {
	var merged string
	if pr.MergedAt != nil {
		merged = formatDate(*pr.MergedAt)
	}
	return Row{
		merged,
		pr.URL,
		pr.AuthorLogin,
		pr.Title,
		pr.RepoName,
		formatDate(pr.UpdatedAt),
		joinLogins(pr.RequestedReviewers),
		joinLogins(pr.Assignees),
	}
}

// RowFromCells normalizes cells read from the sheet. The Sheets API omits
// trailing empty cells, so short rows are padded; cells past the last column
// are ignored.
func RowFromCells(cells []string) Row {
	var row Row
	copy(row[:], cells)
	return row
}

// Cells returns the row as a slice, in column order.
func (r Row) Cells() []string {
	return append([]string(nil), r[:]...)
}

// Diff returns the indexes of the columns whose values differ from other.
func (r Row) Diff(other Row) []int {
	var cols []int
	for i := range r {
		if r[i] != other[i] {
			cols = append(cols, i)
		}
	}
	return cols
}

// Fingerprint returns the composite key of an ordered cell sequence. Two
// sequences share a fingerprint only if they have the same length and the
// same value in every position.
func Fingerprint(cells []string) string {
	if cells == nil {
		cells = []string{}
	}
	b, _ := json.Marshal(cells)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func joinLogins(logins []string) string {
	kept := make([]string, 0, len(logins))
	for _, l := range logins {
		if l = strings.TrimSpace(l); l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, ",")
}
