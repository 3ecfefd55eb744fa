// pkg/checks/memory.go

package checks

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hpc-sre/node-monitor/pkg/config"
	"github.com/hpc-sre/node-monitor/pkg/report"
)

// MemoryCheck measures real memory pressure, discounting buffers and
// reclaimable caches so a node under healthy page-cache load does not
// trip the alarm.
type MemoryCheck struct {
	identity
	cfg config.Config

	meminfoPath string
}

// NewMemoryCheck creates the memory utilization check.
func NewMemoryCheck(cfg config.Config) *MemoryCheck {
	return &MemoryCheck{
		identity:    identity{category: "System Resources", item: "Memory Usage"},
		cfg:         cfg,
		meminfoPath: "/proc/meminfo",
	}
}

// Execute parses /proc/meminfo and classifies the usage percentage.
func (c *MemoryCheck) Execute() []report.Finding {
	data, err := os.ReadFile(c.meminfoPath)
	if err != nil {
		return []report.Finding{c.finding(report.StatusFail, report.PriorityCritical,
			fmt.Sprintf("Could not read %s: %v", c.meminfoPath, err))}
	}

	info := make(map[string]int64)
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		value, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			continue
		}
		info[strings.TrimSuffix(fields[0], ":")] = value
	}

	total, ok := info["MemTotal"]
	if !ok {
		return []report.Finding{c.finding(report.StatusFail, report.PriorityCritical,
			fmt.Sprintf("Could not read %s: MemTotal missing", c.meminfoPath))}
	}

	used := total - info["MemFree"] - info["Buffers"] - info["Cached"] - info["SReclaimable"]
	usage := 0.0
	if total > 0 {
		usage = float64(used) / float64(total) * 100.0
	}

	if usage >= c.cfg.MemWarnPercent {
		return []report.Finding{c.finding(report.StatusWarn, report.PriorityHigh,
			fmt.Sprintf("Usage of %.1f%% exceeds the %.1f%% limit.", usage, c.cfg.MemWarnPercent))}
	}
	return []report.Finding{c.finding(report.StatusNormal, report.PriorityInfo,
		fmt.Sprintf("Usage of %.1f%%.", usage))}
}
