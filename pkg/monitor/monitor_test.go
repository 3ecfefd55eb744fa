// pkg/monitor/monitor_test.go

package monitor

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpc-sre/node-monitor/pkg/checks"
	"github.com/hpc-sre/node-monitor/pkg/config"
	"github.com/hpc-sre/node-monitor/pkg/report"
)

// stubCheck returns canned findings, or panics when panicMsg is set.
type stubCheck struct {
	category string
	item     string
	findings []report.Finding
	panicMsg string
}

func (s *stubCheck) Category() string { return s.category }
func (s *stubCheck) Item() string     { return s.item }

func (s *stubCheck) Execute() []report.Finding {
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	return s.findings
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.SetOutputDir(t.TempDir())
	cfg.TemplateFile = filepath.Join("..", "..", "templates", "report_template.html")
	cfg.KnowledgeBaseFile = filepath.Join("..", "..", "data", "knowledge_base.json")
	return cfg
}

func normalFinding(category, item string) report.Finding {
	return report.Finding{Category: category, Item: item,
		Status: report.StatusNormal, Priority: report.PriorityInfo, Details: "ok"}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestRunAllNormalSkipsHTML(t *testing.T) {
	cfg := testConfig(t)
	m := New(cfg, []checks.Check{
		&stubCheck{category: "System Resources", item: "CPU Usage",
			findings: []report.Finding{normalFinding("System Resources", "CPU Usage")}},
	}, nil)

	path, err := m.Run()
	require.NoError(t, err)
	assert.Empty(t, path)

	_, err = os.Stat(cfg.HTMLReportFile)
	assert.True(t, os.IsNotExist(err))

	// The CSV audit trail is written regardless.
	rows := readCSV(t, cfg.CSVLogFile)
	require.Len(t, rows, 2)
	assert.Equal(t, "CPU Usage", rows[1][2])
}

func TestRunIssueGeneratesHTML(t *testing.T) {
	cfg := testConfig(t)
	m := New(cfg, []checks.Check{
		&stubCheck{category: "System Resources", item: "Memory Usage",
			findings: []report.Finding{{
				Category: "System Resources", Item: "Memory Usage",
				Status: report.StatusWarn, Priority: report.PriorityHigh,
				Details: "Usage of 91.0% exceeds the 85.0% limit.",
			}}},
	}, nil)

	path, err := m.Run()
	require.NoError(t, err)
	assert.Equal(t, cfg.HTMLReportFile, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Memory Usage")
}

func TestRunForceHTML(t *testing.T) {
	cfg := testConfig(t)
	m := New(cfg, []checks.Check{
		&stubCheck{category: "System Resources", item: "CPU Usage",
			findings: []report.Finding{normalFinding("System Resources", "CPU Usage")}},
	}, nil)
	m.ForceHTML = true

	path, err := m.Run()
	require.NoError(t, err)
	assert.Equal(t, cfg.HTMLReportFile, path)
}

func TestRunIsolatesPanickingCheck(t *testing.T) {
	cfg := testConfig(t)
	m := New(cfg, []checks.Check{
		&stubCheck{category: "System Resources", item: "CPU Usage",
			findings: []report.Finding{normalFinding("System Resources", "CPU Usage")}},
		&stubCheck{category: "Storage", item: "Disk Health", panicMsg: "probe exploded"},
		&stubCheck{category: "System Resources", item: "Memory Usage",
			findings: []report.Finding{normalFinding("System Resources", "Memory Usage")}},
	}, nil)

	_, err := m.Run()
	require.NoError(t, err)

	rows := readCSV(t, cfg.CSVLogFile)
	require.Len(t, rows, 4)
	assert.Equal(t, "Disk Health", rows[2][2])
	assert.Equal(t, "FAIL", rows[2][3])
	assert.Contains(t, rows[2][5], "Unexpected error: probe exploded")
	// The check after the panic still ran.
	assert.Equal(t, "Memory Usage", rows[3][2])
}

func TestRunMissingTemplateDegrades(t *testing.T) {
	cfg := testConfig(t)
	cfg.TemplateFile = filepath.Join(t.TempDir(), "missing.html")
	m := New(cfg, []checks.Check{
		&stubCheck{category: "Storage", item: "Disk Health",
			findings: []report.Finding{{
				Category: "Storage", Item: "Disk Health",
				Status: report.StatusFail, Priority: report.PriorityCritical,
				Details: "SMART health check FAILED",
			}}},
	}, nil)

	path, err := m.Run()
	require.NoError(t, err)
	assert.Empty(t, path)

	// Findings are still on the audit trail.
	rows := readCSV(t, cfg.CSVLogFile)
	assert.Len(t, rows, 2)
}

func TestRunDemo(t *testing.T) {
	cfg := testConfig(t)
	cfg.TestDataFile = filepath.Join("..", "..", "data", "test_data.json")
	m := New(cfg, nil, nil)

	path, err := m.RunDemo()
	require.NoError(t, err)
	assert.Equal(t, cfg.HTMLReportFile, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestOnCheckDone(t *testing.T) {
	cfg := testConfig(t)
	m := New(cfg, []checks.Check{
		&stubCheck{category: "A", item: "one",
			findings: []report.Finding{normalFinding("A", "one")}},
		&stubCheck{category: "A", item: "two",
			findings: []report.Finding{normalFinding("A", "two")}},
	}, nil)

	var done []string
	m.OnCheckDone = func(c checks.Check) { done = append(done, c.Item()) }

	_, err := m.Run()
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, done)
}

func TestScenarioFor(t *testing.T) {
	assert.Equal(t, "ALAN", scenarioFor("an-node01"))
	assert.Equal(t, "SILVA", scenarioFor("SV-login02"))
	assert.Equal(t, "ALVES", scenarioFor("av-gpu03"))
	assert.Equal(t, "Undefined", scenarioFor("compute17"))
}
