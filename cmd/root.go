// cmd/root.go

package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/hpc-sre/node-monitor/pkg/checks"
	"github.com/hpc-sre/node-monitor/pkg/config"
	"github.com/hpc-sre/node-monitor/pkg/monitor"
	"github.com/hpc-sre/node-monitor/pkg/utils"
)

var (
	forceHTML  bool
	testHTML   bool
	smartDisks []string
	outputDir  string
	timeout    int

	rootCmd = &cobra.Command{
		Use:   "node-monitor",
		Short: "HPC cluster node health monitor",
		Long: `A health check tool for HPC cluster nodes. It verifies system resources,
GPUs, InfiniBand fabric connectivity, essential services, BeeGFS storage and
disk health, logs every finding to a CSV audit trail and generates an HTML
report when something needs attention.`,
		RunE: runMonitor,
	}
)

// Execute executes the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().BoolVar(&forceHTML, "force-html", false, "Generate the HTML report even when no issues are found")
	rootCmd.Flags().BoolVar(&testHTML, "test-html", false, "Generate a sample report from fixture data without running checks")
	rootCmd.Flags().StringSliceVar(&smartDisks, "smart-disks", nil, "Comma-separated block devices to check with smartctl (e.g. /dev/sda,/dev/nvme0n1)")
	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for the CSV log and HTML report (default \"report\")")
	rootCmd.Flags().IntVarP(&timeout, "timeout", "t", 60, "Timeout in seconds for individual external commands")
}

// runMonitor wires the configuration, check list and monitor together and
// runs the full cycle.
func runMonitor(cmd *cobra.Command, args []string) error {
	if !utils.RunningAsRoot() {
		fmt.Println("WARNING: This tool should be run with root/sudo privileges for complete results.")
		fmt.Println("Some checks may fail or provide incomplete information.")
	}

	cfg := config.Default()
	if outputDir != "" {
		cfg.SetOutputDir(outputDir)
	}
	cfg.CommandTimeout = time.Duration(timeout) * time.Second

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	runner := utils.NewShellRunner(cfg.CommandTimeout)

	checkList := buildChecks(cfg, runner)
	m := monitor.New(cfg, checkList, logger)
	m.ForceHTML = forceHTML

	if testHTML {
		fmt.Println("Test mode: generating a sample HTML report...")
		reportPath, err := m.RunDemo()
		if err != nil {
			return err
		}
		fmt.Printf("Report saved to: %s\n", reportPath)
		return nil
	}

	fmt.Println("Starting HPC node health check...")
	startTime := time.Now()

	bar := progressbar.NewOptions(len(checkList),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetDescription("[cyan]Running health checks[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	m.OnCheckDone = func(checks.Check) {
		bar.Add(1)
	}

	reportPath, err := m.Run()
	if err != nil {
		return err
	}

	bar.Clear()
	fmt.Printf("Health check completed in %s!\n", time.Since(startTime).Truncate(time.Millisecond))

	if reportPath != "" {
		finalPath, err := compressReportIfNeeded(reportPath)
		if err != nil {
			fmt.Printf("Warning: %v\n", err)
		}
		fmt.Printf("Report saved to: %s\n", finalPath)
	}
	return nil
}

// buildChecks assembles the ordered check list for a run.
func buildChecks(cfg config.Config, runner utils.Runner) []checks.Check {
	list := []checks.Check{
		checks.NewCPUCheck(cfg),
		checks.NewMemoryCheck(cfg),
		checks.NewLoadAverageCheck(cfg, runner),
		checks.NewGPUCheck(cfg, runner),
		checks.NewServicesCheck(cfg, runner),
		checks.NewDmesgCheck(cfg, runner),
		checks.NewNetworkErrorCheck(cfg),
		checks.NewInfinibandCheck(cfg, runner),
		checks.NewBeeGFSDiskCheck(cfg, runner),
		checks.NewUptimeCheck(cfg, runner),
	}
	if len(smartDisks) > 0 {
		list = append(list, checks.NewDiskHealthCheck(cfg, runner, smartDisks))
	}
	return list
}

// compressReportIfNeeded compresses the report based on environment variables
func compressReportIfNeeded(reportPath string) (string, error) {
	compress := os.Getenv("COMPRESS_REPORT")
	password := os.Getenv("REPORT_PASSWORD")

	if compress != "true" && compress != "1" {
		return reportPath, nil
	}

	if password == "" {
		password = "hpcadmin123"
	}

	compressedPath, err := utils.CompressWithPassword(reportPath, password)
	if err != nil {
		return reportPath, fmt.Errorf("failed to compress report: %v", err)
	}

	if os.Getenv("REMOVE_UNCOMPRESSED") == "true" {
		os.Remove(reportPath)
	}

	fmt.Printf("Report compressed with password: %s\n", password)
	return compressedPath, nil
}
