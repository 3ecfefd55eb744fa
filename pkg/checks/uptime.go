// pkg/checks/uptime.go

package checks

import (
	"fmt"
	"strings"
	"time"

	"github.com/hpc-sre/node-monitor/pkg/config"
	"github.com/hpc-sre/node-monitor/pkg/report"
	"github.com/hpc-sre/node-monitor/pkg/utils"
)

// UptimeCheck flags nodes that rebooted within the last 24 hours, which
// on a compute node usually means a crash or an unscheduled intervention.
type UptimeCheck struct {
	identity
	cfg    config.Config
	runner utils.Runner

	now func() time.Time
}

// NewUptimeCheck creates the uptime check.
func NewUptimeCheck(cfg config.Config, runner utils.Runner) *UptimeCheck {
	return &UptimeCheck{
		identity: identity{category: "OS Health", item: "Uptime"},
		cfg:      cfg,
		runner:   runner,
		now:      time.Now,
	}
}

// Execute parses the boot time reported by uptime -s.
func (c *UptimeCheck) Execute() []report.Finding {
	out, code := c.runner.Run("uptime -s")
	if code != 0 {
		return []report.Finding{c.finding(report.StatusFail, report.PriorityMedium,
			fmt.Sprintf("Could not get uptime. Output: %s", out))}
	}

	bootTime, err := time.ParseInLocation("2006-01-02 15:04:05", strings.TrimSpace(out), time.Local)
	if err != nil {
		return []report.Finding{c.finding(report.StatusFail, report.PriorityMedium,
			fmt.Sprintf("Could not parse boot time: %q", strings.TrimSpace(out)))}
	}

	uptime := c.now().Sub(bootTime).Truncate(time.Second)
	if uptime < 24*time.Hour {
		return []report.Finding{c.finding(report.StatusWarn, report.PriorityMedium,
			fmt.Sprintf("The server rebooted within the last 24 hours. Uptime: %s.", uptime))}
	}
	return []report.Finding{c.finding(report.StatusNormal, report.PriorityInfo,
		fmt.Sprintf("The server has been up for more than 24 hours. Uptime: %s.", uptime))}
}
