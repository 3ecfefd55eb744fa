// pkg/report/finding.go

package report

// Status represents the coarse health state of a finding
type Status string

const (
	// StatusNormal indicates the checked resource is healthy
	StatusNormal Status = "NORMAL"

	// StatusWarn indicates a condition worth operator attention
	StatusWarn Status = "WARN"

	// StatusFail indicates a fault that needs intervention
	StatusFail Status = "FAIL"
)

// Priority ranks operator urgency, independent of Status
type Priority string

const (
	// PriorityCritical is P1, immediate intervention
	PriorityCritical Priority = "P1 (Critical)"

	// PriorityHigh is P2, same-day attention
	PriorityHigh Priority = "P2 (High)"

	// PriorityMedium is P3, next maintenance window
	PriorityMedium Priority = "P3 (Medium)"

	// PriorityInfo is P4, informational only
	PriorityInfo Priority = "P4 (Info)"
)

// Finding is one classified diagnostic observation. Findings are value
// objects: checks build them, the monitor aggregates them, sinks read them.
type Finding struct {
	// Category is the grouping label shown in the report (e.g. "Network").
	Category string `json:"category"`

	// Item identifies the specific resource checked (e.g. "mlx5_0 - Port 1").
	Item string `json:"item"`

	// Status is the health classification.
	Status Status `json:"status"`

	// Priority is the operator urgency ranking.
	Priority Priority `json:"priority"`

	// Details is a free-text diagnostic message, possibly multi-line.
	Details string `json:"details"`
}

// IsIssue reports whether the finding gates HTML report generation.
func (f Finding) IsIssue() bool {
	return f.Status == StatusWarn || f.Status == StatusFail
}
