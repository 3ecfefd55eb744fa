// pkg/checks/load.go

package checks

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hpc-sre/node-monitor/pkg/config"
	"github.com/hpc-sre/node-monitor/pkg/report"
	"github.com/hpc-sre/node-monitor/pkg/utils"
)

// LoadAverageCheck compares the 1-minute load average against the number
// of CPU cores.
type LoadAverageCheck struct {
	identity
	cfg    config.Config
	runner utils.Runner

	loadavgPath string
}

// NewLoadAverageCheck creates the load average check.
func NewLoadAverageCheck(cfg config.Config, runner utils.Runner) *LoadAverageCheck {
	return &LoadAverageCheck{
		identity:    identity{category: "System Resources", item: "Load Average"},
		cfg:         cfg,
		runner:      runner,
		loadavgPath: "/proc/loadavg",
	}
}

// Execute reads /proc/loadavg and classifies the load-per-core ratio.
func (c *LoadAverageCheck) Execute() []report.Finding {
	data, err := os.ReadFile(c.loadavgPath)
	if err != nil {
		return []report.Finding{c.finding(report.StatusFail, report.PriorityHigh,
			fmt.Sprintf("Could not read %s: %v", c.loadavgPath, err))}
	}

	fields := strings.Fields(string(data))
	if len(fields) < 3 {
		return []report.Finding{c.finding(report.StatusFail, report.PriorityHigh,
			fmt.Sprintf("Unexpected loadavg format: %q", strings.TrimSpace(string(data))))}
	}
	load1Str, load5Str, load15Str := fields[0], fields[1], fields[2]

	load1, err := strconv.ParseFloat(load1Str, 64)
	if err != nil {
		return []report.Finding{c.finding(report.StatusFail, report.PriorityHigh,
			fmt.Sprintf("Could not parse 1-minute load %q: %v", load1Str, err))}
	}

	cores := 1
	if out, code := c.runner.Run("nproc"); code == 0 {
		if n, err := strconv.Atoi(strings.TrimSpace(out)); err == nil && n > 0 {
			cores = n
		}
	}

	details := fmt.Sprintf("Load (1m, 5m, 15m): %s, %s, %s (%d cores).",
		load1Str, load5Str, load15Str, cores)

	if load1/float64(cores) >= c.cfg.LoadRatioWarn {
		details += fmt.Sprintf(" The 1-minute load (%.2f) is high for the core count.", load1)
		return []report.Finding{c.finding(report.StatusWarn, report.PriorityHigh, details)}
	}
	return []report.Finding{c.finding(report.StatusNormal, report.PriorityInfo, details)}
}
