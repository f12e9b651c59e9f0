package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildVersion(t *testing.T) {
	v := buildVersion()
	assert.NotEmpty(t, v)
	assert.NotEqual(t, "(devel)", v)
}

func TestNewLogger(t *testing.T) {
	t.Cleanup(func() { debugLog = false })

	debugLog = false
	assert.False(t, newLogger().Enabled(context.Background(), slog.LevelDebug))
	debugLog = true
	assert.True(t, newLogger().Enabled(context.Background(), slog.LevelDebug))
}
