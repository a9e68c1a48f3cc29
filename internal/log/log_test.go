package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog(t *testing.T) {
	testLog := Logger("test")
	testLog.Info("this is test")

	abcLog := Logger("abc")
	abcLog.Info("this is abc")

	testLog.Debug("this is test debug")
	testLog.Info("this is test info")
	testLog.Warn("this is test warn")
	testLog.Error("this is test error")
}

func TestSetLogLevel(t *testing.T) {
	defer SetLogLevel("info")

	require.NoError(t, SetLogLevel("debug"))
	assert.Equal(t, "debug", GetLogLevel())

	require.NoError(t, SetLogLevel("WARN"))
	assert.Equal(t, "warn", GetLogLevel())

	require.NoError(t, SetLogLevel(""))
	assert.Equal(t, "info", GetLogLevel())

	err := SetLogLevel("verbose")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verbose")
	assert.Equal(t, "info", GetLogLevel())
}
