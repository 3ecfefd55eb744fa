// pkg/checks/dmesg.go

package checks

import (
	"fmt"
	"strings"

	"github.com/hpc-sre/node-monitor/pkg/config"
	"github.com/hpc-sre/node-monitor/pkg/report"
	"github.com/hpc-sre/node-monitor/pkg/utils"
)

// DmesgCheck greps the kernel log for hardware error keywords.
type DmesgCheck struct {
	identity
	cfg    config.Config
	runner utils.Runner
}

// NewDmesgCheck creates the kernel log check.
func NewDmesgCheck(cfg config.Config, runner utils.Runner) *DmesgCheck {
	return &DmesgCheck{
		identity: identity{category: "Hardware and OS", item: "Kernel Logs (dmesg)"},
		cfg:      cfg,
		runner:   runner,
	}
}

// Execute scans dmesg output. Reading the kernel log may require elevated
// privileges; that case degrades to a Warn advising sudo.
func (c *DmesgCheck) Execute() []report.Finding {
	keys := strings.Join(c.cfg.HardwareErrorKeywords, "|")
	out, code := c.runner.Run(fmt.Sprintf("dmesg | grep -iE '(%s)'", keys))

	switch {
	case code == 0 && out != "":
		return []report.Finding{c.finding(report.StatusWarn, report.PriorityHigh,
			fmt.Sprintf("Possible hardware errors found:\n%s", out))}
	case strings.Contains(out, "Operation not permitted"):
		return []report.Finding{c.finding(report.StatusWarn, report.PriorityMedium,
			"Could not read kernel logs. Run with 'sudo'.")}
	default:
		return []report.Finding{c.finding(report.StatusNormal, report.PriorityInfo,
			"No recent critical errors found.")}
	}
}
