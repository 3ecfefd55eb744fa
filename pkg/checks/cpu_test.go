// pkg/checks/cpu_test.go

package checks

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpc-sre/node-monitor/pkg/config"
	"github.com/hpc-sre/node-monitor/pkg/report"
)

func TestCPUUsage(t *testing.T) {
	tests := []struct {
		name string
		t1   cpuSample
		t2   cpuSample
		want float64
	}{
		{
			name: "fifty percent busy",
			t1:   cpuSample{total: 1000, idle: 700},
			t2:   cpuSample{total: 1100, idle: 750},
			want: 50.0,
		},
		{
			name: "zero total delta yields zero",
			t1:   cpuSample{total: 1000, idle: 700},
			t2:   cpuSample{total: 1000, idle: 700},
			want: 0.0,
		},
		{
			name: "counters went backwards yields zero",
			t1:   cpuSample{total: 1000, idle: 700},
			t2:   cpuSample{total: 900, idle: 600},
			want: 0.0,
		},
		{
			name: "fully idle",
			t1:   cpuSample{total: 1000, idle: 500},
			t2:   cpuSample{total: 1100, idle: 600},
			want: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, cpuUsage(tt.t1, tt.t2), 1e-9)
		})
	}
}

func TestReadCPUSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stat")
	require.NoError(t, os.WriteFile(path,
		[]byte("cpu  100 0 200 300 50 10 20 5 0 0\ncpu0 1 2 3 4 5 6 7 8\n"), 0644))

	s, err := readCPUSample(path)
	require.NoError(t, err)
	assert.Equal(t, int64(685), s.total) // first eight fields
	assert.Equal(t, int64(300), s.idle)
}

func TestReadCPUSampleErrors(t *testing.T) {
	_, err := readCPUSample(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "stat")
	require.NoError(t, os.WriteFile(path, []byte("intr 12345\n"), 0644))
	_, err = readCPUSample(path)
	assert.Error(t, err)
}

func TestCPUCheckThresholdBoundary(t *testing.T) {
	cfg := config.Default()
	cfg.CPUWarnPercent = 85.0
	c := NewCPUCheck(cfg)

	// A value equal to the threshold is already Warn.
	f := c.classify(85.0)
	assert.Equal(t, report.StatusWarn, f.Status)
	assert.Equal(t, report.PriorityHigh, f.Priority)

	f = c.classify(84.999)
	assert.Equal(t, report.StatusNormal, f.Status)
	assert.Equal(t, report.PriorityInfo, f.Priority)
}

func TestCPUCheckExecute(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stat")
	require.NoError(t, os.WriteFile(path,
		[]byte("cpu  100 0 200 300 50 10 20 5\n"), 0644))

	c := NewCPUCheck(config.Default())
	c.statPath = path
	c.interval = 0

	findings := c.Execute()
	require.Len(t, findings, 1)
	// Two identical samples: zero delta, defined as 0% usage.
	assert.Equal(t, report.StatusNormal, findings[0].Status)
	assert.Equal(t, "System Resources", findings[0].Category)
	assert.Equal(t, "CPU Usage", findings[0].Item)
}

func TestCPUCheckExecuteReadFailure(t *testing.T) {
	c := NewCPUCheck(config.Default())
	c.statPath = filepath.Join(t.TempDir(), "missing")
	c.interval = 0

	findings := c.Execute()
	require.Len(t, findings, 1)
	assert.Equal(t, report.StatusFail, findings[0].Status)
	assert.Equal(t, report.PriorityCritical, findings[0].Priority)
}
