// pkg/checks/network.go

package checks

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hpc-sre/node-monitor/pkg/config"
	"github.com/hpc-sre/node-monitor/pkg/report"
)

// NetworkErrorCheck scans /proc/net/dev for interfaces with error or
// dropped packet counters.
type NetworkErrorCheck struct {
	identity
	cfg config.Config

	netdevPath string
}

// NewNetworkErrorCheck creates the interface error counter check.
func NewNetworkErrorCheck(cfg config.Config) *NetworkErrorCheck {
	return &NetworkErrorCheck{
		identity:   identity{category: "Network Health", item: "Network Interface Errors"},
		cfg:        cfg,
		netdevPath: "/proc/net/dev",
	}
}

// Execute reports one Warn per interface with nonzero counters, or a
// single Normal finding when every interface is clean.
func (c *NetworkErrorCheck) Execute() []report.Finding {
	data, err := os.ReadFile(c.netdevPath)
	if err != nil {
		return []report.Finding{c.finding(report.StatusFail, report.PriorityMedium,
			fmt.Sprintf("Could not read %s: %v", c.netdevPath, err))}
	}

	lines := strings.Split(string(data), "\n")
	if len(lines) > 2 {
		lines = lines[2:] // two header lines
	}

	var findings []report.Finding
	for _, line := range lines {
		parts := strings.Fields(line)
		if len(parts) < 13 {
			continue
		}
		name := strings.TrimSuffix(parts[0], ":")
		if c.ignored(name) {
			continue
		}

		rxErrs, err1 := strconv.ParseInt(parts[3], 10, 64)
		rxDrop, err2 := strconv.ParseInt(parts[4], 10, 64)
		txErrs, err3 := strconv.ParseInt(parts[11], 10, 64)
		txDrop, err4 := strconv.ParseInt(parts[12], 10, 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}

		if rxErrs+txErrs > 0 || rxDrop+txDrop > 0 {
			details := fmt.Sprintf("Errors: %d (RX:%d, TX:%d), Dropped: %d (RX:%d, TX:%d)",
				rxErrs+txErrs, rxErrs, txErrs, rxDrop+txDrop, rxDrop, txDrop)
			findings = append(findings, c.findingFor("Interface "+name,
				report.StatusWarn, report.PriorityMedium, details))
		}
	}

	if len(findings) == 0 {
		findings = append(findings, c.finding(report.StatusNormal, report.PriorityInfo,
			"No errors or dropped packets found."))
	}
	return findings
}

func (c *NetworkErrorCheck) ignored(name string) bool {
	for _, prefix := range c.cfg.IgnoredInterfacePrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
