package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/pageza/foodgram/backend/config"
)

func TestNewRespectsLevel(t *testing.T) {
	log, err := New(&config.Config{Environment: config.Production, LogLevel: "warn"})
	require.NoError(t, err)

	assert.False(t, log.Desugar().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Desugar().Core().Enabled(zapcore.WarnLevel))
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(&config.Config{Environment: config.Development, LogLevel: "loud"})
	assert.Error(t, err)
}
