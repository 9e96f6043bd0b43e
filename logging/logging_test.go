package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"loan-simulator/config"
)

func TestNew_Levels(t *testing.T) {
	logger, err := New(config.LogConfig{Level: "warn"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	dev, err := New(config.LogConfig{Level: "debug", Development: true})
	require.NoError(t, err)
	assert.True(t, dev.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "chatty"})
	assert.Error(t, err)
}
