package logger

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewLevels(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, New(Options{Level: "debug"}).GetLevel())
	assert.Equal(t, logrus.InfoLevel, New(Options{}).GetLevel())
	assert.Equal(t, logrus.InfoLevel, New(Options{Level: "loud"}).GetLevel())
}

func TestNewFormatter(t *testing.T) {
	_, isText := New(Options{Format: "text"}).Formatter.(*logrus.TextFormatter)
	assert.True(t, isText)

	_, isJSON := New(Options{Format: "json"}).Formatter.(*logrus.JSONFormatter)
	assert.True(t, isJSON)
}

func TestNewWithFile(t *testing.T) {
	log := New(Options{File: filepath.Join(t.TempDir(), "shop.log")})
	log.Info("written to file")
	assert.NotNil(t, log.Out)
}
