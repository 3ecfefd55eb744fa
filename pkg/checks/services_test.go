// pkg/checks/services_test.go

package checks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpc-sre/node-monitor/pkg/config"
	"github.com/hpc-sre/node-monitor/pkg/report"
)

const failedStatus = `● chronyd.service - NTP client/server
     Loaded: loaded (/usr/lib/systemd/system/chronyd.service; enabled)
     Active: failed (Result: exit-code) since Mon 2026-08-31 08:00:00
    Process: 1234 ExecStart=/usr/sbin/chronyd (code=exited, status=1/FAILURE)
   Main PID: 1234 (code=exited, status=1/FAILURE)
Aug 31 08:00:00 node01 systemd[1]: chronyd.service: Failed with result 'exit-code'.
`

func newServicesConfig() config.Config {
	cfg := config.Default()
	cfg.CommonServices = []string{"chronyd", "beegfs-storage"}
	cfg.PacemakerManagedServices = []string{"beegfs-storage"}
	return cfg
}

func findByItem(t *testing.T, findings []report.Finding, item string) report.Finding {
	t.Helper()
	for _, f := range findings {
		if f.Item == item {
			return f
		}
	}
	t.Fatalf("no finding with item %q", item)
	return report.Finding{}
}

func TestServicesCheckCommonNodeWithPacemaker(t *testing.T) {
	c := NewServicesCheck(newServicesConfig(), &fakeRunner{responses: map[string]fakeResponse{
		"systemctl is-active pacemaker":  {out: "active\n", code: 0},
		"systemctl status chronyd":       {out: "Active: active (running)", code: 0},
		"systemctl status beegfs-storage": {out: "Active: failed", code: 3},
	}})

	findings := c.Execute()
	// Pacemaker note plus chronyd; beegfs-storage is cluster-managed and skipped.
	require.Len(t, findings, 2)

	note := findByItem(t, findings, "Pacemaker Management")
	assert.Equal(t, report.StatusNormal, note.Status)
	assert.Contains(t, note.Details, "beegfs-storage")

	chronyd := findByItem(t, findings, "Service: chronyd")
	assert.Equal(t, report.StatusNormal, chronyd.Status)
}

func TestServicesCheckFailedService(t *testing.T) {
	cfg := newServicesConfig()
	cfg.CommonServices = []string{"chronyd"}

	c := NewServicesCheck(cfg, &fakeRunner{responses: map[string]fakeResponse{
		"systemctl status chronyd": {out: failedStatus, code: 3},
	}})

	findings := c.Execute()
	require.Len(t, findings, 1)
	assert.Equal(t, "Service: chronyd", findings[0].Item)
	assert.Equal(t, report.StatusFail, findings[0].Status)
	assert.Equal(t, report.PriorityCritical, findings[0].Priority)
	assert.Contains(t, findings[0].Details, "inactive or failed")
	assert.Contains(t, findings[0].Details, "Failed with result")
}

func TestServicesCheckNotInstalledSkipped(t *testing.T) {
	cfg := newServicesConfig()
	cfg.CommonServices = []string{"mysql"}

	c := NewServicesCheck(cfg, &fakeRunner{responses: map[string]fakeResponse{
		"systemctl status mysql": {out: "Unit mysql.service could not be found.", code: 4},
	}})

	assert.Empty(t, c.Execute())
}

func TestServicesCheckActiveMaster(t *testing.T) {
	cfg := newServicesConfig()
	cfg.CommonServices = []string{"chronyd"}
	cfg.BCMHeadNodeServices = []string{"pacemaker"}
	cfg.BCMActiveMasterServices = []string{"influxdb"}

	c := NewServicesCheck(cfg, &fakeRunner{responses: map[string]fakeResponse{
		"cmha status":                {out: "CMHA is running in active mode\n", code: 0},
		"systemctl status chronyd":   {out: "Active: active (running)", code: 0},
		"systemctl status pacemaker": {out: "Active: active (running)", code: 0},
		"systemctl status influxdb":  {out: "Active: active (running)", code: 0},
	}})

	findings := c.Execute()
	require.Len(t, findings, 4)
	assert.Contains(t, findByItem(t, findings, "BCM Role Detection").Details, "BCM Active Master")
	findByItem(t, findings, "Service: influxdb")
}

func TestServicesCheckPassiveMasterSkipsActiveOnly(t *testing.T) {
	cfg := newServicesConfig()
	cfg.CommonServices = nil
	cfg.BCMHeadNodeServices = []string{"pcsd"}
	cfg.BCMActiveMasterServices = []string{"influxdb"}

	c := NewServicesCheck(cfg, &fakeRunner{responses: map[string]fakeResponse{
		"cmha status":           {out: "CMHA is running in passive mode\n", code: 0},
		"systemctl status pcsd": {out: "Active: active (running)", code: 0},
	}})

	findings := c.Execute()
	require.Len(t, findings, 2)
	for _, f := range findings {
		assert.NotEqual(t, "Service: influxdb", f.Item)
	}
}

func TestServicesCheckUnknownCMHAState(t *testing.T) {
	cfg := newServicesConfig()
	cfg.CommonServices = nil
	cfg.BCMHeadNodeServices = nil

	c := NewServicesCheck(cfg, &fakeRunner{responses: map[string]fakeResponse{
		"cmha status": {out: "CMHA state unclear\n", code: 0},
	}})

	findings := c.Execute()
	state := findByItem(t, findings, "CMHA State")
	assert.Equal(t, report.StatusWarn, state.Status)
	assert.Equal(t, report.PriorityHigh, state.Priority)
}
