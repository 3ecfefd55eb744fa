// pkg/checks/smart.go

package checks

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/hpc-sre/node-monitor/pkg/config"
	"github.com/hpc-sre/node-monitor/pkg/report"
	"github.com/hpc-sre/node-monitor/pkg/utils"
)

// DiskHealthCheck runs S.M.A.R.T. self-assessments for the block devices
// the operator listed on the command line. A device may carry a driver
// hint as "/dev/sdX:type", passed through to smartctl's -d flag.
type DiskHealthCheck struct {
	identity
	cfg    config.Config
	runner utils.Runner
	disks  []string
}

// NewDiskHealthCheck creates the disk health check for the given devices.
func NewDiskHealthCheck(cfg config.Config, runner utils.Runner, disks []string) *DiskHealthCheck {
	return &DiskHealthCheck{
		identity: identity{category: "Disk Health (S.M.A.R.T.)", item: "Disk Health"},
		cfg:      cfg,
		runner:   runner,
		disks:    disks,
	}
}

// Execute checks each requested disk. This check only runs when the
// operator asked for it, so a missing smartctl is reported rather than
// silently skipped.
func (c *DiskHealthCheck) Execute() []report.Finding {
	if _, code := c.runner.Run("smartctl -V"); code != 0 {
		if code == utils.ExitTimeout {
			return []report.Finding{c.findingFor("smartctl tool",
				report.StatusFail, report.PriorityHigh,
				"The 'smartctl' command timed out.")}
		}
		return []report.Finding{c.findingFor("smartctl tool",
			report.StatusFail, report.PriorityMedium,
			"The 'smartctl' tool was not found.")}
	}

	var findings []report.Finding
	for _, disk := range c.disks {
		findings = append(findings, c.checkDisk(disk))
	}
	return findings
}

func (c *DiskHealthCheck) checkDisk(disk string) report.Finding {
	devPath, typeArg := disk, ""
	if p, t, ok := strings.Cut(disk, ":"); ok {
		devPath, typeArg = p, "-d "+t+" "
	}
	item := "Disk " + devPath

	out, code := c.runner.Run(fmt.Sprintf("smartctl -H %s%s", typeArg, devPath))
	if code == utils.ExitTimeout {
		return c.findingFor(item, report.StatusFail, report.PriorityHigh,
			"The S.M.A.R.T. query timed out.")
	}

	status, priority := report.StatusFail, report.PriorityHigh
	details := fmt.Sprintf("Could not determine the S.M.A.R.T. state. Output: %s", out)
	switch {
	case strings.Contains(out, "PASSED"):
		status, priority = report.StatusNormal, report.PriorityInfo
		details = "The S.M.A.R.T. self-assessment test passed."
	case strings.Contains(out, "FAILED"):
		status, priority = report.StatusFail, report.PriorityCritical
		details = "The S.M.A.R.T. test FAILED. Disk replacement is recommended."
	case strings.Contains(out, "Disabled"):
		status, priority = report.StatusWarn, report.PriorityMedium
		details = "S.M.A.R.T. support is disabled."
	}

	if status == report.StatusNormal {
		rotational, _ := c.runner.Run(fmt.Sprintf("cat /sys/block/%s/queue/rotational", path.Base(devPath)))
		if strings.TrimSpace(rotational) == "0" {
			if warnings := c.ssdAttributes(devPath, typeArg); len(warnings) > 0 {
				status, priority = report.StatusWarn, report.PriorityHigh
				details += " " + strings.Join(warnings, " ")
			}
		}
	}
	return c.findingFor(item, status, priority, details)
}

// ssdAttributes checks SSD-specific wear and temperature attributes.
func (c *DiskHealthCheck) ssdAttributes(devPath, typeArg string) []string {
	out, _ := c.runner.Run(fmt.Sprintf("smartctl -A %s%s", typeArg, devPath))

	var warnings []string
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		last := fields[len(fields)-1]
		switch {
		case strings.Contains(line, "Percentage Used"):
			if used, err := strconv.ParseFloat(strings.TrimSuffix(last, "%"), 64); err == nil &&
				used >= c.cfg.SSDUsedWarn {
				warnings = append(warnings, fmt.Sprintf("Wear (%.0f%%) exceeds the limit.", used))
			}
		case strings.Contains(line, "Temperature_Celsius"):
			if temp, err := strconv.Atoi(last); err == nil && temp >= c.cfg.SSDTempWarn {
				warnings = append(warnings, fmt.Sprintf("Temperature (%d°C) exceeds the limit.", temp))
			}
		}
	}
	return warnings
}
