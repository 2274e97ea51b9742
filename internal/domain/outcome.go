package domain

// Action is what a synchronization pass did to the sheet.
type Action string

const (
	ActionSkipped   Action = "skipped"
	ActionAppended  Action = "appended"
	ActionUpdated   Action = "updated"
	ActionUnchanged Action = "unchanged"
)

// Outcome describes the result of synchronizing one pull request.
type Outcome struct {
	Action Action `json:"action"`
	// Row is the 1-based sheet row that matched; zero when appended or skipped.
	Row            int      `json:"row,omitempty"`
	ChangedColumns []string `json:"changed_columns,omitempty"`
	Reason         string   `json:"reason,omitempty"`
}
