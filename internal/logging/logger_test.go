package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewLoggerIsCachedPerComponent(t *testing.T) {
	a := NewLogger("cache-test")
	b := NewLogger("cache-test")
	assert.Same(t, a, b)
	assert.Equal(t, "cache-test", a.Data["component"])
}

func TestLevelFromEnvironment(t *testing.T) {
	t.Setenv(EnvLevel, "debug")
	assert.Equal(t, logrus.DebugLevel, parseLevel("warn"))

	t.Setenv(EnvLevel, "")
	assert.Equal(t, logrus.WarnLevel, parseLevel("warn"))
	assert.Equal(t, logrus.InfoLevel, parseLevel(""))
	assert.Equal(t, logrus.InfoLevel, parseLevel("nonsense"))
}

func TestFormatter(t *testing.T) {
	t.Setenv(EnvFormat, "")
	_, ok := formatter("json").(*logrus.JSONFormatter)
	assert.True(t, ok)
	_, ok = formatter("TEXT").(*logrus.TextFormatter)
	assert.True(t, ok)

	t.Setenv(EnvFormat, "json")
	_, ok = formatter("text").(*logrus.JSONFormatter)
	assert.True(t, ok)
}

func TestSetOutputAndConfigure(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Setenv(EnvLevel, "")
	t.Setenv(EnvFormat, "")

	log := NewLoggerWithConfig("output-test", Config{Level: "info", Format: "json"})
	log.Debug("hidden")
	assert.Empty(t, buf.String())

	Configure(Config{Level: "debug", Format: "json"})
	log.WithField("key", "value").Debug("shown")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"component":"output-test"`)
	assert.Contains(t, buf.String(), `"key":"value"`)
}

func TestConfigureAppliesToLaterLoggers(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Setenv(EnvLevel, "")
	t.Setenv(EnvFormat, "")
	t.Cleanup(func() { Configure(Config{}) })

	Configure(Config{Level: "debug", Format: "json"})
	log := NewLogger("late-test")
	assert.Equal(t, logrus.DebugLevel, log.Logger.GetLevel())

	log.Debug("late")
	assert.Contains(t, buf.String(), `"component":"late-test"`)
}
