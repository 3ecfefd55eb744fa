// pkg/checks/beegfs.go

package checks

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hpc-sre/node-monitor/pkg/config"
	"github.com/hpc-sre/node-monitor/pkg/report"
	"github.com/hpc-sre/node-monitor/pkg/utils"
)

// BeeGFSDiskCheck monitors the usage of BeeGFS mount points, per partition
// and aggregated across all of them. Nodes without BeeGFS mounts produce
// no findings.
type BeeGFSDiskCheck struct {
	identity
	cfg    config.Config
	runner utils.Runner
}

// NewBeeGFSDiskCheck creates the BeeGFS usage check.
func NewBeeGFSDiskCheck(cfg config.Config, runner utils.Runner) *BeeGFSDiskCheck {
	return &BeeGFSDiskCheck{
		identity: identity{category: "BeeGFS Disk Usage", item: "Partition Usage"},
		cfg:      cfg,
		runner:   runner,
	}
}

// Execute reports per-mount and aggregate usage.
func (c *BeeGFSDiskCheck) Execute() []report.Finding {
	mounts := c.findMounts()
	if len(mounts) == 0 {
		return nil
	}

	var findings []report.Finding
	var totalSizeKB, totalUsedKB int64

	for _, mount := range mounts {
		out, code := c.runner.Run("df -k " + mount)
		lines := strings.Split(out, "\n")
		if code != 0 || len(lines) < 2 {
			continue
		}

		parts := strings.Fields(lines[1])
		if len(parts) < 5 {
			continue
		}
		size, err1 := strconv.ParseInt(parts[1], 10, 64)
		used, err2 := strconv.ParseInt(parts[2], 10, 64)
		avail, err3 := strconv.ParseInt(parts[3], 10, 64)
		percent, err4 := strconv.ParseFloat(strings.TrimSuffix(parts[4], "%"), 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}

		totalSizeKB += size
		totalUsedKB += used

		details := fmt.Sprintf("Usage: %.1f%%. Total: %s, Used: %s, Available: %s.",
			percent, formatBytes(float64(size)), formatBytes(float64(used)), formatBytes(float64(avail)))
		findings = append(findings, c.findingFor("Partition "+mount,
			c.classify(percent), c.priorityFor(percent), details))
	}

	if totalSizeKB > 0 {
		usage := float64(totalUsedKB) / float64(totalSizeKB) * 100.0
		avail := totalSizeKB - totalUsedKB
		details := fmt.Sprintf("Total usage: %.1f%%. Total: %s, Used: %s, Available: %s.",
			usage, formatBytes(float64(totalSizeKB)), formatBytes(float64(totalUsedKB)), formatBytes(float64(avail)))
		findings = append(findings, c.findingFor("Aggregate Partition Usage",
			c.classify(usage), c.priorityFor(usage), details))
	}
	return findings
}

func (c *BeeGFSDiskCheck) classify(percent float64) report.Status {
	if percent >= c.cfg.BeeGFSUsageWarn {
		return report.StatusWarn
	}
	return report.StatusNormal
}

func (c *BeeGFSDiskCheck) priorityFor(percent float64) report.Priority {
	if percent >= c.cfg.BeeGFSUsageWarn {
		return report.PriorityHigh
	}
	return report.PriorityInfo
}

// findMounts lists the mount points under /BeeGFS, sorted and deduplicated.
func (c *BeeGFSDiskCheck) findMounts() []string {
	out, code := c.runner.Run("mount")
	if code != 0 {
		return nil
	}

	seen := make(map[string]struct{})
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, " on /BeeGFS") {
			continue
		}
		_, after, ok := strings.Cut(line, " on ")
		if !ok {
			continue
		}
		mountPoint, _, _ := strings.Cut(after, " ")
		if strings.HasPrefix(mountPoint, "/BeeGFS") {
			seen[mountPoint] = struct{}{}
		}
	}

	mounts := make([]string, 0, len(seen))
	for m := range seen {
		mounts = append(mounts, m)
	}
	sort.Strings(mounts)
	return mounts
}

// formatBytes renders a kilobyte count in the largest fitting unit.
func formatBytes(sizeKB float64) string {
	if sizeKB == 0 {
		return "0 KB"
	}
	units := []string{"KB", "MB", "GB", "TB", "PB", "EB", "ZB"}
	i, size := 0, sizeKB
	for size >= 1024 && i < len(units)-1 {
		size /= 1024.0
		i++
	}
	return fmt.Sprintf("%.1f %s", size, units[i])
}
