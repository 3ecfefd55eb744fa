// pkg/utils/command_test.go

package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShellRunner(t *testing.T) {
	r := NewShellRunner(DefaultCommandTimeout)

	out, code := r.Run("echo hello")
	assert.Equal(t, 0, code)
	assert.Equal(t, "hello", out)

	_, code = r.Run("exit 3")
	assert.Equal(t, 3, code)

	_, code = r.Run("definitely-not-a-command-xyz")
	assert.Equal(t, ExitNotFound, code)
}

func TestShellRunnerTimeout(t *testing.T) {
	r := NewShellRunner(100 * time.Millisecond)

	_, code := r.Run("sleep 2")
	assert.Equal(t, ExitTimeout, code)
}

func TestShellRunnerForcesCLocale(t *testing.T) {
	r := NewShellRunner(DefaultCommandTimeout)

	out, code := r.Run("printenv LC_ALL")
	assert.Equal(t, 0, code)
	assert.Equal(t, "C", out)
}
