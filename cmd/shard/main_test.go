package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunWithNoArgsPrintsUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"shard"}, &stdout, &stderr)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "USAGE")
}

func TestRunHelpPrintsUsageToStdout(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"shard", "help"}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "COMMANDS")
}

func TestRunUnknownCommandIsARuntimeError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"shard", "frobnicate"}, &stdout, &stderr)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "Unknown command")
}

func TestRunVerifyWithoutBundleIsARuntimeError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"shard", "verify"}, &stdout, &stderr)
	assert.Equal(t, 2, code)
}
