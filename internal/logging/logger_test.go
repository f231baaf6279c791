package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBuildsBothModes(t *testing.T) {
	t.Parallel()

	for _, development := range []bool{true, false} {
		logger, err := New(development)
		require.NoError(t, err)
		require.NotNil(t, logger)
		logger.Info("logger ready")
		_ = logger.Sync()
	}
}

func TestGlobalLoggerIsSafeBeforeInit(t *testing.T) {
	t.Parallel()

	require.NotNil(t, L)
	assert.NotPanics(t, func() {
		L.Info("pre-init logging is a no-op")
	})
}

func TestInitLoggerReplacesGlobal(t *testing.T) {
	before := L
	InitLogger()
	require.NotNil(t, L)
	assert.NotSame(t, before, L)
}
