// pkg/checks/infiniband.go

package checks

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/hpc-sre/node-monitor/pkg/config"
	"github.com/hpc-sre/node-monitor/pkg/report"
	"github.com/hpc-sre/node-monitor/pkg/utils"
)

// InfinibandCheck verifies, for every local adapter port, that the link is
// healthy and that the port is actually cabled to a switch peer. Link
// state comes from ibstat; connectivity comes from correlating iblinkinfo
// output with the local ports by Port GUID, since a port can be
// Active/LinkUp and still be dangling. Only the correlation reveals that.
type InfinibandCheck struct {
	identity
	cfg    config.Config
	runner utils.Runner

	// sysPath is the root of the per-port error counter files.
	sysPath string
}

// NewInfinibandCheck creates the InfiniBand health and topology check.
func NewInfinibandCheck(cfg config.Config, runner utils.Runner) *InfinibandCheck {
	return &InfinibandCheck{
		identity: identity{category: "High Performance Network", item: "InfiniBand Health"},
		cfg:      cfg,
		runner:   runner,
		sysPath:  "/sys/class/infiniband",
	}
}

// summaryItem names the topology overview finding.
const summaryItem = "InfiniBand Connection Summary"

// ibPort is one local adapter port, keyed by its GUID.
type ibPort struct {
	ca      string
	name    string // "Port 1"
	guid    string
	details map[string]string

	// healthy marks an InfiniBand port that is Active/LinkUp and
	// therefore eligible for topology correlation.
	healthy bool
	peer    *ibPeer
}

type ibPeer struct {
	lid  string
	port string
	name string
}

func (p *ibPort) item() string {
	return p.ca + " - " + p.name
}

// portNumber extracts "1" from "Port 1".
func (p *ibPort) portNumber() string {
	fields := strings.Fields(p.name)
	return fields[len(fields)-1]
}

var ibLinkPattern = regexp.MustCompile(`==>\s+(\d+)\s+(\d+)\[\s*\]\s+"([^"]+)"`)

// Execute runs the multi-stage InfiniBand verification.
func (c *InfinibandCheck) Execute() []report.Finding {
	if _, code := c.runner.Run("ibstat -V"); code != 0 {
		if code == utils.ExitTimeout {
			// A killed probe means the tool is present but hung, not absent.
			return []report.Finding{c.finding(report.StatusFail, report.PriorityHigh,
				"The 'ibstat' command timed out.")}
		}
		// No InfiniBand tooling on this host.
		return nil
	}

	out, code := c.runner.Run("ibstat")
	if code == utils.ExitTimeout {
		return []report.Finding{c.finding(report.StatusFail, report.PriorityHigh,
			"The 'ibstat' command timed out.")}
	}
	if code != 0 {
		return []report.Finding{c.finding(report.StatusFail, report.PriorityCritical,
			fmt.Sprintf("Failed to run 'ibstat'. Output: %s", out))}
	}

	ports := parseIbstat(out)
	findings, healthy := c.classifyPorts(ports)
	if len(healthy) == 0 {
		return findings
	}

	linkOut, code := c.runner.Run("iblinkinfo")
	if code == utils.ExitTimeout {
		findings = append(findings, c.finding(report.StatusFail, report.PriorityHigh,
			"The 'iblinkinfo' command timed out."))
		return findings
	}
	if code != 0 {
		findings = append(findings, c.finding(report.StatusWarn, report.PriorityMedium,
			"Could not run 'iblinkinfo' to verify connections."))
		return findings
	}
	correlatePeers(linkOut, healthy)

	connected := true
	for _, p := range healthy {
		if p.peer != nil {
			continue
		}
		connected = false
		findings = append(findings, c.findingFor(p.item(),
			report.StatusFail, report.PriorityCritical,
			"Port active but no connection detected (verified with iblinkinfo)."))
	}

	if connected {
		findings = append([]report.Finding{c.summary(healthy)}, findings...)
	}
	return findings
}

// classifyPorts evaluates link state per port, in the order the ports
// appear in the ibstat output, and returns the ports eligible for
// topology correlation.
func (c *InfinibandCheck) classifyPorts(ports []*ibPort) ([]report.Finding, []*ibPort) {
	var findings []report.Finding
	var healthy []*ibPort

	for _, p := range ports {
		state := p.details["State"]
		physState := p.details["Physical state"]
		rate := p.details["Rate"]
		linkUp := state == "Active" && physState == "LinkUp"

		switch p.details["Link layer"] {
		case "InfiniBand":
			if linkUp {
				p.healthy = true
				healthy = append(healthy, p)
				if errors := c.errorCounters(p); len(errors) > 0 {
					details := fmt.Sprintf("Link active but with errors. Rate: %s. Counters: %s.",
						rate, strings.Join(errors, ", "))
					findings = append(findings, c.findingFor(p.item(),
						report.StatusWarn, report.PriorityMedium, details))
				}
			} else {
				details := fmt.Sprintf("Port is down. State: %s (expected Active), Physical state: %s (expected LinkUp), Rate: %s",
					state, physState, rate)
				findings = append(findings, c.findingFor(p.item(),
					report.StatusFail, report.PriorityCritical, details))
			}
		case "Ethernet":
			if !linkUp {
				details := fmt.Sprintf("Ethernet-over-IB interface inactive. State: %s, Physical: %s, Rate: %s",
					state, physState, rate)
				findings = append(findings, c.findingFor(p.item(),
					report.StatusWarn, report.PriorityMedium, details))
			}
		}
	}
	return findings, healthy
}

// errorCounters reads the per-port error counter files and returns a
// formatted entry for each nonzero counter.
func (c *InfinibandCheck) errorCounters(p *ibPort) []string {
	counters := []string{
		"symbol_error", "link_error_recovery", "link_downed",
		"port_rcv_errors", "port_xmit_discards",
	}

	dir := filepath.Join(c.sysPath, p.ca, "ports", p.portNumber(), "counters")
	if _, err := os.Stat(dir); err != nil {
		return nil
	}

	var errors []string
	for _, name := range counters {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		val, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
		if err != nil || val <= 0 {
			continue
		}
		errors = append(errors, fmt.Sprintf("%s: %d", counterTitle(name), val))
	}
	return errors
}

// summary builds the topology overview, one line per connected port.
func (c *InfinibandCheck) summary(healthy []*ibPort) report.Finding {
	lines := make([]string, 0, len(healthy))
	for _, p := range healthy {
		lines = append(lines, fmt.Sprintf("  • %s/%s (LID: %s, Rate: %sGbps) -> %s (Port: %s)",
			p.ca, p.portNumber(),
			p.details["Base lid"], p.details["Rate"],
			p.peer.name, p.peer.port))
	}
	details := "All active InfiniBand ports are connected:\n" + strings.Join(lines, "\n")
	return c.findingFor(summaryItem, report.StatusNormal, report.PriorityInfo, details)
}

// parseIbstat splits ibstat output into per-adapter, per-port key/value
// blocks, preserving the order ports appear in.
func parseIbstat(out string) []*ibPort {
	var ports []*ibPort

	blocks := strings.Split(out, "CA '")
	if len(blocks) < 2 {
		return nil
	}
	for _, block := range blocks[1:] {
		lines := strings.Split(block, "\n")
		caName, _, _ := strings.Cut(lines[0], "'")

		var current *ibPort
		for _, line := range lines[1:] {
			clean := strings.TrimSpace(line)
			if strings.HasPrefix(clean, "Port ") && strings.HasSuffix(clean, ":") {
				current = &ibPort{
					ca:      caName,
					name:    strings.TrimSuffix(clean, ":"),
					details: make(map[string]string),
				}
				ports = append(ports, current)
				continue
			}
			if current == nil {
				continue
			}
			if key, value, ok := strings.Cut(line, ":"); ok {
				current.details[strings.TrimSpace(key)] = strings.TrimSpace(value)
			}
		}
	}

	for _, p := range ports {
		p.guid = p.details["Port GUID"]
	}
	return ports
}

// correlatePeers scans the topology output for lines that mention a local
// port GUID followed by a connection marker and records the remote LID,
// port and device name.
func correlatePeers(out string, ports []*ibPort) {
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "==>") {
			continue
		}
		for _, p := range ports {
			if p.guid == "" || !strings.Contains(line, p.guid) {
				continue
			}
			if m := ibLinkPattern.FindStringSubmatch(line); m != nil {
				p.peer = &ibPeer{
					lid:  m[1],
					port: m[2],
					name: strings.TrimSpace(m[3]),
				}
			}
			break
		}
	}
}

// counterTitle turns "symbol_error" into "Symbol Error".
func counterTitle(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
