package entity

// Guest is one row of the master registry. Loaded once per reconciliation
// run and read-only during matching; RowNo addresses commits back to it.
type Guest struct {
	Name  string `json:"name"`
	Norm  string `json:"norm"` // normalized form, computed at load time
	RowNo int    `json:"row_no"`
	Place string `json:"place"`
	Venue string `json:"venue"`
}

// StatusCommitted is the terminal commit status; rows carrying it are
// skipped unconditionally on re-runs.
const StatusCommitted = "COMMITTED"

// RowState is the reconciliation-owned tail of a ticket row.
type RowState struct {
	Suggested    string `json:"suggested"`
	Score        string `json:"score"`
	Approved     string `json:"approved"`
	CommitStatus string `json:"commit_status"`
}
