// pkg/checks/services.go

package checks

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hpc-sre/node-monitor/pkg/config"
	"github.com/hpc-sre/node-monitor/pkg/report"
	"github.com/hpc-sre/node-monitor/pkg/utils"
)

// ServicesCheck verifies essential systemd services, adjusting the service
// list to the node's role. Bright Cluster Manager head nodes get the BCM
// service set; on common nodes, services owned by Pacemaker are left to
// the cluster manager to avoid false alarms.
type ServicesCheck struct {
	identity
	cfg    config.Config
	runner utils.Runner
}

// NewServicesCheck creates the essential services check.
func NewServicesCheck(cfg config.Config, runner utils.Runner) *ServicesCheck {
	return &ServicesCheck{
		identity: identity{category: "Essential Services", item: "Service Status"},
		cfg:      cfg,
		runner:   runner,
	}
}

// Execute detects the node role, selects the applicable services and
// checks each one.
func (c *ServicesCheck) Execute() []report.Finding {
	var findings []report.Finding
	var services []string

	role := "Common Node"
	out, code := c.runner.Run("cmha status")
	if code == 0 && out != "" {
		firstLine, _, _ := strings.Cut(out, "\n")
		switch {
		case strings.Contains(firstLine, "running in active mode"):
			role = "BCM Active Master"
		case strings.Contains(firstLine, "running in passive mode"):
			role = "BCM Passive Master"
		default:
			role = "BCM Head Node (Unknown State)"
			findings = append(findings, c.findingFor("CMHA State",
				report.StatusWarn, report.PriorityHigh,
				fmt.Sprintf("The cmha service is in an unexpected state. Output: %s", firstLine)))
		}
	}

	if role == "Common Node" {
		services = append(services, c.cfg.CommonServices...)
		if _, pacemakerCode := c.runner.Run("systemctl is-active pacemaker"); pacemakerCode == 0 {
			managed := strings.Join(c.cfg.PacemakerManagedServices, ", ")
			findings = append(findings, c.findingFor("Pacemaker Management",
				report.StatusNormal, report.PriorityInfo,
				fmt.Sprintf("Pacemaker is active. Services (%s) are managed by the cluster and skipped here.", managed)))
			services = exclude(services, c.cfg.PacemakerManagedServices)
		}
	} else {
		findings = append(findings, c.findingFor("BCM Role Detection",
			report.StatusNormal, report.PriorityInfo,
			fmt.Sprintf("Node detected as %s. Checking the services specific to this role.", role)))
		services = append(services, c.cfg.CommonServices...)
		services = append(services, c.cfg.BCMHeadNodeServices...)
		if role == "BCM Active Master" {
			services = append(services, c.cfg.BCMActiveMasterServices...)
		}
	}

	for _, service := range sortedUnique(services) {
		out, _ := c.runner.Run("systemctl status " + service)
		if strings.Contains(out, "Loaded: not-found") || strings.Contains(out, "could not be found") {
			continue
		}

		item := "Service: " + service
		if strings.Contains(out, "Active: active (running)") {
			findings = append(findings, c.findingFor(item,
				report.StatusNormal, report.PriorityInfo,
				fmt.Sprintf("The %s service is active.", service)))
			continue
		}

		lines := strings.Split(out, "\n")
		if len(lines) > 5 {
			lines = lines[len(lines)-5:]
		}
		details := fmt.Sprintf("The %s service is inactive or failed.\nDetails:\n%s",
			service, strings.Join(lines, "\n"))
		findings = append(findings, c.findingFor(item,
			report.StatusFail, report.PriorityCritical, details))
	}
	return findings
}

func exclude(services, managed []string) []string {
	var kept []string
	for _, s := range services {
		skip := false
		for _, m := range managed {
			if s == m {
				skip = true
				break
			}
		}
		if !skip {
			kept = append(kept, s)
		}
	}
	return kept
}

func sortedUnique(services []string) []string {
	seen := make(map[string]struct{}, len(services))
	var out []string
	for _, s := range services {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
