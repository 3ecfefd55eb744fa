// pkg/checks/cpu.go

package checks

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hpc-sre/node-monitor/pkg/config"
	"github.com/hpc-sre/node-monitor/pkg/report"
)

// CPUCheck samples overall CPU utilization from the kernel counters.
type CPUCheck struct {
	identity
	cfg config.Config

	statPath string
	interval time.Duration
}

// NewCPUCheck creates the CPU utilization check.
func NewCPUCheck(cfg config.Config) *CPUCheck {
	return &CPUCheck{
		identity: identity{category: "System Resources", item: "CPU Usage"},
		cfg:      cfg,
		statPath: "/proc/stat",
		interval: time.Second,
	}
}

type cpuSample struct {
	total int64
	idle  int64
}

// readCPUSample parses the aggregate "cpu" line of /proc/stat.
func readCPUSample(path string) (cpuSample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cpuSample{}, err
	}

	line, _, _ := strings.Cut(string(data), "\n")
	fields := strings.Fields(line)
	if len(fields) < 5 || fields[0] != "cpu" {
		return cpuSample{}, fmt.Errorf("unexpected stat format: %q", line)
	}

	// user nice system idle iowait irq softirq steal
	values := fields[1:]
	if len(values) > 8 {
		values = values[:8]
	}

	var s cpuSample
	for i, v := range values {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cpuSample{}, fmt.Errorf("unexpected stat value %q: %v", v, err)
		}
		s.total += n
		if i == 3 {
			s.idle = n
		}
	}
	return s, nil
}

// cpuUsage returns the busy percentage between two samples. A zero total
// delta (counters unavailable or clock anomaly) yields 0 rather than a
// division fault.
func cpuUsage(t1, t2 cpuSample) float64 {
	deltaTotal := t2.total - t1.total
	if deltaTotal <= 0 {
		return 0.0
	}
	deltaIdle := t2.idle - t1.idle
	return 100.0 * float64(deltaTotal-deltaIdle) / float64(deltaTotal)
}

// Execute samples the counters twice, one second apart.
func (c *CPUCheck) Execute() []report.Finding {
	t1, err := readCPUSample(c.statPath)
	if err != nil {
		return []report.Finding{c.finding(report.StatusFail, report.PriorityCritical,
			fmt.Sprintf("Could not read %s: %v", c.statPath, err))}
	}

	time.Sleep(c.interval)

	t2, err := readCPUSample(c.statPath)
	if err != nil {
		return []report.Finding{c.finding(report.StatusFail, report.PriorityCritical,
			fmt.Sprintf("Could not read %s (second sample): %v", c.statPath, err))}
	}

	return []report.Finding{c.classify(cpuUsage(t1, t2))}
}

func (c *CPUCheck) classify(usage float64) report.Finding {
	if usage >= c.cfg.CPUWarnPercent {
		return c.finding(report.StatusWarn, report.PriorityHigh,
			fmt.Sprintf("Usage of %.1f%% exceeds the %.1f%% limit.", usage, c.cfg.CPUWarnPercent))
	}
	return c.finding(report.StatusNormal, report.PriorityInfo,
		fmt.Sprintf("Usage of %.1f%%.", usage))
}
