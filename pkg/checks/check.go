// pkg/checks/check.go

package checks

import (
	"github.com/hpc-sre/node-monitor/pkg/report"
)

// Check is a self-contained probe that inspects one aspect of the node
// and yields zero or more findings.
//
// Contract:
//   - A check whose tooling is absent (command-not-found exit code)
//     returns no findings: the check is inapplicable on this host.
//   - A tool that is present but fails is converted into a Fail finding
//     carrying the raw output, never into a returned error.
//   - Quantitative measurements compare against their threshold with >=:
//     a value equal to the threshold is already Warn.
//   - Execute must not let a panic escape. The monitor's isolation
//     wrapper is a safety net, not a substitute: a check that aborts
//     mid-loop silently drops findings for resources not yet examined.
type Check interface {
	// Category is the grouping label for this check's findings.
	Category() string

	// Item names the resource the check covers as a whole; the monitor
	// uses it when it must synthesize a failure on the check's behalf.
	Item() string

	// Execute runs the probe.
	Execute() []report.Finding
}

// identity carries the static category/item pair of a check and provides
// the finding constructors shared by all checks.
type identity struct {
	category string
	item     string
}

func (id identity) Category() string { return id.category }
func (id identity) Item() string     { return id.item }

// finding builds a finding under the check's own item.
func (id identity) finding(status report.Status, priority report.Priority, details string) report.Finding {
	return id.findingFor(id.item, status, priority, details)
}

// findingFor builds a finding for a specific sub-item, e.g. one port or
// one disk of a multi-resource check.
func (id identity) findingFor(item string, status report.Status, priority report.Priority, details string) report.Finding {
	return report.Finding{
		Category: id.category,
		Item:     item,
		Status:   status,
		Priority: priority,
		Details:  details,
	}
}
