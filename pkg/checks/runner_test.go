// pkg/checks/runner_test.go

package checks

import "github.com/hpc-sre/node-monitor/pkg/utils"

// fakeRunner serves canned command output keyed by the exact command
// string. Unknown commands report command-not-found.
type fakeRunner struct {
	responses map[string]fakeResponse
}

type fakeResponse struct {
	out  string
	code int
}

func (f *fakeRunner) Run(command string) (string, int) {
	if resp, ok := f.responses[command]; ok {
		return resp.out, resp.code
	}
	return "", utils.ExitNotFound
}
