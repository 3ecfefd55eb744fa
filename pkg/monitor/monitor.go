// pkg/monitor/monitor.go

package monitor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/hpc-sre/node-monitor/pkg/checks"
	"github.com/hpc-sre/node-monitor/pkg/config"
	"github.com/hpc-sre/node-monitor/pkg/report"
)

// Monitor owns the ordered check list and drives a single run end to end:
// execute every check with failure isolation, aggregate the findings,
// append them to the CSV log and, when anything is Warn or Fail (or the
// force flag is set), render the HTML report.
type Monitor struct {
	cfg    config.Config
	checks []checks.Check
	kb     *report.KnowledgeBase
	csv    *report.CsvSink
	html   *report.HTMLReport
	log    *slog.Logger

	hostname  string
	timestamp string
	scenario  string

	// ForceHTML renders the report regardless of findings.
	ForceHTML bool

	// OnCheckDone, when set, is called after each check completes; the
	// CLI uses it to advance its progress bar.
	OnCheckDone func(checks.Check)
}

// New creates a monitor for one run. The knowledge base is loaded here,
// once; a missing resource degrades to "no suggestions".
func New(cfg config.Config, checkList []checks.Check, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown-host"
	}

	kb := report.LoadKnowledgeBase(cfg.KnowledgeBaseFile)
	if kb.Len() == 0 {
		logger.Warn("knowledge base unavailable, report suggestions disabled",
			"file", cfg.KnowledgeBaseFile)
	}

	return &Monitor{
		cfg:       cfg,
		checks:    checkList,
		kb:        kb,
		csv:       report.NewCsvSink(cfg.CSVLogFile),
		html:      report.NewHTMLReport(cfg.TemplateFile, cfg.HTMLReportFile, kb),
		log:       logger,
		hostname:  hostname,
		timestamp: time.Now().Format("2006-01-02 15:04:05"),
		scenario:  scenarioFor(hostname),
	}
}

// Run executes the full cycle. It returns the path of the HTML report
// when one was generated, or the empty string when rendering was skipped.
// Finding severity never fails the run; only sink I/O does.
func (m *Monitor) Run() (string, error) {
	if err := os.MkdirAll(m.cfg.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	findings := m.runChecks()

	if err := m.csv.Append(m.timestamp, findings); err != nil {
		return "", fmt.Errorf("failed to write CSV log: %w", err)
	}
	m.log.Info("results logged", "file", m.cfg.CSVLogFile, "findings", len(findings))

	if !hasIssues(findings) && !m.ForceHTML {
		m.log.Info("no issues detected, HTML report not generated")
		return "", nil
	}

	if err := m.html.Render(m.hostname, m.timestamp, m.scenario, findings); err != nil {
		// Report generation is an enrichment; the CSV audit trail is
		// already on disk, so degrade instead of failing the run.
		m.log.Warn("HTML report skipped", "error", err)
		return "", nil
	}
	m.log.Info("HTML report generated", "file", m.cfg.HTMLReportFile)
	return m.cfg.HTMLReportFile, nil
}

// RunDemo renders the HTML report from a fixture finding set instead of
// executing real checks.
func (m *Monitor) RunDemo() (string, error) {
	data, err := os.ReadFile(m.cfg.TestDataFile)
	if err != nil {
		return "", fmt.Errorf("failed to read test data: %w", err)
	}

	var findings []report.Finding
	if err := json.Unmarshal(data, &findings); err != nil {
		return "", fmt.Errorf("failed to decode test data: %w", err)
	}

	if err := os.MkdirAll(m.cfg.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := m.html.Render(m.hostname, m.timestamp, m.scenario, findings); err != nil {
		return "", err
	}
	m.log.Info("demo report generated", "file", m.cfg.HTMLReportFile)
	return m.cfg.HTMLReportFile, nil
}

// runChecks executes every registered check strictly in sequence.
func (m *Monitor) runChecks() []report.Finding {
	var all []report.Finding
	for _, c := range m.checks {
		all = append(all, m.runIsolated(c)...)
		if m.OnCheckDone != nil {
			m.OnCheckDone(c)
		}
	}
	return all
}

// runIsolated wraps a single check so a panicking probe yields exactly
// one synthetic Fail finding instead of blanking out the rest of the run.
func (m *Monitor) runIsolated(c checks.Check) (findings []report.Finding) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("check panicked", "category", c.Category(), "item", c.Item(), "error", r)
			findings = []report.Finding{{
				Category: c.Category(),
				Item:     c.Item(),
				Status:   report.StatusFail,
				Priority: report.PriorityCritical,
				Details:  fmt.Sprintf("Unexpected error: %v", r),
			}}
		}
	}()
	return c.Execute()
}

func hasIssues(findings []report.Finding) bool {
	for _, f := range findings {
		if f.IsIssue() {
			return true
		}
	}
	return false
}

// scenarioFor maps the site-specific hostname prefix to the scenario
// label shown in the report header.
func scenarioFor(hostname string) string {
	h := strings.ToLower(hostname)
	switch {
	case strings.HasPrefix(h, "an"):
		return "ALAN"
	case strings.HasPrefix(h, "sv"):
		return "SILVA"
	case strings.HasPrefix(h, "av"):
		return "ALVES"
	}
	return "Undefined"
}
