package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ollyhq/olly-cli/internal/domain"
)

func TestBaseRootCmd(t *testing.T) {
	cmd := baseRootCmd()
	assert.Equal(t, "olly", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.Equal(t, rootLongDescription, cmd.Long)
}

func TestRootCmd_HelpOutput(t *testing.T) {
	output := &bytes.Buffer{}
	rootCmd.SetOut(output)
	rootCmd.SetErr(&bytes.Buffer{})

	rootCmd.SetArgs([]string{"--help"})
	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, output.String(), "Usage:")
	assert.Contains(t, output.String(), "sourcemaps")
	assert.Contains(t, output.String(), "upload")
	assert.Contains(t, output.String(), "version")
}

func TestInit(t *testing.T) {
	assert.NotNil(t, ui)
	assert.NotNil(t, fsAdapter)
	assert.NotNil(t, reportStore)
	assert.NotNil(t, processor)
	assert.NotNil(t, newUploader)
}

func TestSurfaceError(t *testing.T) {
	userErr := &domain.UserError{Op: "scan", Path: "dist", Msg: "directory does not exist"}
	assert.Same(t, error(userErr), surfaceError(userErr))

	wrapped := fmt.Errorf("process: %w", userErr)
	assert.Equal(t, wrapped, surfaceError(wrapped))

	surfaced := surfaceError(errors.New("connection reset"))
	assert.NotContains(t, surfaced.Error(), "connection reset")
	assert.Contains(t, surfaced.Error(), "unexpected failure")
}

func TestExecute_ProcessLevel_Failure(t *testing.T) {
	if os.Getenv("TEST_EXECUTE_SUBPROCESS_FAIL") == "1" {
		rootCmd.SetOut(os.Stdout)
		rootCmd.SetErr(os.Stderr)
		rootCmd.SetArgs([]string{"sourcemaps", "inject"})

		Execute() // missing --directory, should exit 1
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestExecute_ProcessLevel_Failure")
	cmd.Env = append(os.Environ(), "TEST_EXECUTE_SUBPROCESS_FAIL=1")
	output, err := cmd.CombinedOutput()

	require.Error(t, err)

	var exitErr *exec.ExitError
	if assert.ErrorAs(t, err, &exitErr) {
		assert.Equal(t, 1, exitErr.ExitCode())
	}

	assert.Contains(t, string(output), "directory")
}
