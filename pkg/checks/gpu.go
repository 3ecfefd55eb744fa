// pkg/checks/gpu.go

package checks

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hpc-sre/node-monitor/pkg/config"
	"github.com/hpc-sre/node-monitor/pkg/report"
	"github.com/hpc-sre/node-monitor/pkg/utils"
)

// GPUCheck queries nvidia-smi for the temperature, utilization and memory
// of every NVIDIA GPU on the node. Hosts without the tool produce no
// findings.
type GPUCheck struct {
	identity
	cfg    config.Config
	runner utils.Runner
}

// NewGPUCheck creates the GPU status check.
func NewGPUCheck(cfg config.Config, runner utils.Runner) *GPUCheck {
	return &GPUCheck{
		identity: identity{category: "GPU Resources", item: "GPU Status"},
		cfg:      cfg,
		runner:   runner,
	}
}

// Execute probes for the tool and classifies each GPU line.
func (c *GPUCheck) Execute() []report.Finding {
	if _, code := c.runner.Run("nvidia-smi -L"); code != 0 {
		if code == utils.ExitTimeout {
			// A killed probe means the tool is present but hung, not absent.
			return []report.Finding{c.finding(report.StatusFail, report.PriorityHigh,
				"The 'nvidia-smi' command timed out.")}
		}
		return nil
	}

	query := "index,name,temperature.gpu,utilization.gpu,memory.used,memory.total"
	out, code := c.runner.Run(
		fmt.Sprintf("nvidia-smi --query-gpu=%s --format=csv,noheader,nounits", query))
	if code == utils.ExitTimeout {
		return []report.Finding{c.finding(report.StatusFail, report.PriorityHigh,
			"The 'nvidia-smi' query timed out.")}
	}
	if code != 0 {
		return []report.Finding{c.finding(report.StatusFail, report.PriorityHigh,
			fmt.Sprintf("Failed to run nvidia-smi. Output: %s", out))}
	}

	var findings []report.Finding
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		f, ok := c.classifyLine(line)
		if !ok {
			findings = append(findings, c.finding(report.StatusFail, report.PriorityHigh,
				fmt.Sprintf("Failed to parse line: %q", line)))
			continue
		}
		findings = append(findings, f)
	}
	return findings
}

func (c *GPUCheck) classifyLine(line string) (report.Finding, bool) {
	parts := strings.Split(line, ",")
	if len(parts) != 6 {
		return report.Finding{}, false
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	temp, err1 := strconv.ParseFloat(parts[2], 64)
	util, err2 := strconv.ParseFloat(parts[3], 64)
	memUsed, err3 := strconv.ParseFloat(parts[4], 64)
	memTotal, err4 := strconv.ParseFloat(parts[5], 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return report.Finding{}, false
	}

	item := fmt.Sprintf("GPU %s: %s", parts[0], parts[1])

	var warnings []string
	if temp >= c.cfg.GPUTempWarn {
		warnings = append(warnings, fmt.Sprintf("Temp: %.0f°C (limit: %.0f°C)", temp, c.cfg.GPUTempWarn))
	}
	if util >= c.cfg.GPUUtilWarn {
		warnings = append(warnings, fmt.Sprintf("Usage: %.0f%% (limit: %.0f%%)", util, c.cfg.GPUUtilWarn))
	}

	if len(warnings) > 0 {
		return c.findingFor(item, report.StatusWarn, report.PriorityHigh,
			strings.Join(warnings, ", ")), true
	}

	memPercent := 0.0
	if memTotal > 0 {
		memPercent = memUsed / memTotal * 100
	}
	details := fmt.Sprintf("Temp: %.0f°C, Usage: %.0f%%, Memory: %.0f/%.0f MB (%.1f%%)",
		temp, util, memUsed, memTotal, memPercent)
	return c.findingFor(item, report.StatusNormal, report.PriorityInfo, details), true
}
