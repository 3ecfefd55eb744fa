// pkg/config/config.go

package config

import (
	"path/filepath"
	"time"
)

// Config groups the thresholds, service lists and file locations for a
// monitoring run. It is built once at startup and passed read-only to
// every check; nothing mutates it after that.
type Config struct {
	// Warn thresholds. A measurement equal to the threshold is already
	// in the Warn state (>= comparison).
	CPUWarnPercent    float64
	MemWarnPercent    float64
	LoadRatioWarn     float64
	SSDUsedWarn       float64
	SSDTempWarn       int
	GPUTempWarn       float64
	GPUUtilWarn       float64
	BeeGFSUsageWarn   float64

	// Services expected on every node.
	CommonServices []string
	// Services expected only on a BCM head node.
	BCMHeadNodeServices []string
	// Services expected only on the active BCM master.
	BCMActiveMasterServices []string
	// Services owned by Pacemaker on cluster nodes; excluded from the
	// systemd check when Pacemaker is active.
	PacemakerManagedServices []string

	// Interface name prefixes skipped by the network error check.
	IgnoredInterfacePrefixes []string

	// Keywords grepped out of the kernel log.
	HardwareErrorKeywords []string

	OutputDir         string
	CSVLogFile        string
	HTMLReportFile    string
	KnowledgeBaseFile string
	TemplateFile      string
	TestDataFile      string

	// Per external command deadline.
	CommandTimeout time.Duration
}

// Default returns the stock configuration.
func Default() Config {
	cfg := Config{
		CPUWarnPercent:  85.0,
		MemWarnPercent:  85.0,
		LoadRatioWarn:   1.5,
		SSDUsedWarn:     85.0,
		SSDTempWarn:     70,
		GPUTempWarn:     85.0,
		GPUUtilWarn:     90.0,
		BeeGFSUsageWarn: 90.0,

		CommonServices: []string{
			"chronyd", "nfs-server", "cmdaemon", "mysql", "mariadb",
		},
		BCMHeadNodeServices: []string{
			"dhcpd", "named", "cmd", "corosync", "pacemaker", "pcsd",
		},
		BCMActiveMasterServices: []string{
			"grafana-server", "influxdb", "beegfs-mon",
		},
		PacemakerManagedServices: []string{
			"beegfs-storage", "beegfs-meta",
		},
		IgnoredInterfacePrefixes: []string{"lo", "virbr"},
		HardwareErrorKeywords: []string{
			"error", "fail", "critical", "fatal", "segfault",
		},

		KnowledgeBaseFile: filepath.Join("data", "knowledge_base.json"),
		TemplateFile:      filepath.Join("templates", "report_template.html"),
		TestDataFile:      filepath.Join("data", "test_data.json"),

		CommandTimeout: 60 * time.Second,
	}
	cfg.SetOutputDir("report")
	return cfg
}

// SetOutputDir points the CSV log and HTML report under dir.
func (c *Config) SetOutputDir(dir string) {
	c.OutputDir = dir
	c.CSVLogFile = filepath.Join(dir, "hpc_monitoring_log.csv")
	c.HTMLReportFile = filepath.Join(dir, "hpc_status_report.html")
}
