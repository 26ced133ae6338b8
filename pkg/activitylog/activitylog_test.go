package activitylog_test

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"shop/pkg/activitylog"
)

var linePattern = regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z\] `)

func TestLoggerAppendsTimestampedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.log")

	logger, err := activitylog.New(path)
	assert.NoError(t, err)

	logger.Logf("Product created (id=%d, name=%s)", 1, "Laptop")
	logger.Logf("Order created (id=%d, userId=%d, totalPrice=%.2f)", 42, 7, 50.0)
	assert.NoError(t, logger.Close())

	raw, err := os.ReadFile(path)
	assert.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	assert.Len(t, lines, 2)
	for _, line := range lines {
		assert.Regexp(t, linePattern, line)
	}
	assert.Contains(t, lines[0], "Product created (id=1, name=Laptop)")
	assert.Contains(t, lines[1], "Order created (id=42, userId=7, totalPrice=50.00)")
}

func TestLoggerAppendsAcrossReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.log")

	logger, err := activitylog.New(path)
	assert.NoError(t, err)
	logger.Logf("first")
	assert.NoError(t, logger.Close())

	logger, err = activitylog.New(path)
	assert.NoError(t, err)
	logger.Logf("second")
	assert.NoError(t, logger.Close())

	raw, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Contains(t, string(raw), "first")
	assert.Contains(t, string(raw), "second")
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *activitylog.Logger
	logger.Logf("ignored")
	assert.NoError(t, logger.Close())
}

func TestLogfAfterCloseIsDropped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.log")
	logger, err := activitylog.New(path)
	assert.NoError(t, err)
	assert.NoError(t, logger.Close())

	logger.Logf("too late")

	raw, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Empty(t, raw)
}
