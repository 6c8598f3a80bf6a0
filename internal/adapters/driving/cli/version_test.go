package cli

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withVersion(t *testing.T, v string) {
	t.Helper()
	original := version
	SetVersion(v)
	t.Cleanup(func() { version = original })
}

func TestVersionCmd(t *testing.T) {
	setupTestServices(t)
	withVersion(t, "1.4.0")

	output, err := runCommand(t, "version")

	require.NoError(t, err)
	assert.Contains(t, output, "daylog version 1.4.0 ("+runtime.Version())
	assert.Contains(t, output, runtime.GOOS+"/"+runtime.GOARCH)
}

func TestVersionCmd_Short(t *testing.T) {
	setupTestServices(t)
	withVersion(t, "dev")

	output, err := runCommand(t, "version", "--short")

	require.NoError(t, err)
	assert.Equal(t, "dev\n", output)
}

func TestVersionCmd_RejectsArgs(t *testing.T) {
	setupTestServices(t)

	_, err := runCommand(t, "version", "extra")

	assert.Error(t, err)
}
