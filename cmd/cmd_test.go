package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katrohit/nutrifolio/internal/auth"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	const userID = "3f2504e0-4f89-41d3-9a0c-0305e82c3301"
	t.Setenv("JWT_SIGNING_KEY", "cli-test-key")

	out, err := executeCommand(t, "token", userID, "--ttl", "1h")
	require.NoError(t, err)

	claims, err := auth.ValidateJWTToken(strings.TrimSpace(out), "cli-test-key")
	require.NoError(t, err)
	assert.Equal(t, userID, claims.Subject)
}

func TestTokenCommandRejectsBadInput(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "cli-test-key")

	_, err := executeCommand(t, "token", "42")
	assert.ErrorContains(t, err, "user id must be a UUID")

	t.Setenv("JWT_SIGNING_KEY", "")
	_, err = executeCommand(t, "token", "3f2504e0-4f89-41d3-9a0c-0305e82c3301")
	assert.ErrorContains(t, err, "JWT_SIGNING_KEY is not set")
}
