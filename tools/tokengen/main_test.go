package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/atinyakov/TripSync/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, run([]string{"-secret", "s3cret", "-user", "u1", "-ttl", "1h"}, &out))

	sub, err := auth.NewJWTAuth("s3cret").Subject(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "u1", sub)
}

func TestRun_SecretFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")
	var out bytes.Buffer

	require.NoError(t, run([]string{"-user", "u2"}, &out))

	sub, err := auth.NewJWTAuth("env-secret").Subject(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "u2", sub)
}

func TestRun_MissingArgs(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	assert.ErrorContains(t, run([]string{"-user", "u1"}, &bytes.Buffer{}), "secret is required")
	assert.ErrorContains(t, run([]string{"-secret", "x"}, &bytes.Buffer{}), "user is required")
}
