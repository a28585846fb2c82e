package logging

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	assert.Error(t, Config{}.Validate())
	assert.Error(t, Config{LoggerName: "main", LoggerType: "file"}.Validate())
	assert.NoError(t, Config{LoggerName: "main", LoggerType: "stdout"}.Validate())
}

func TestDebugGating(t *testing.T) {
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	defer log.SetOutput(os.Stderr)

	SetDebug(false)
	Debugf("hidden %d", 1)
	assert.Empty(t, buf.String())

	SetDebug(true)
	defer SetDebug(false)
	Debugf("shown %d", 2)
	assert.Contains(t, buf.String(), "[DEBUG]: shown 2")
}

func TestFileWriter(t *testing.T) {
	dir := t.TempDir()
	closer, err := InitGlobalLogger(Config{LoggerName: "analytics", LoggerType: "file", FileDir: dir})
	require.NoError(t, err)
	defer func() {
		log.SetOutput(os.Stderr)
		closer.Close()
	}()

	Infof("hello %s", "file")

	data, err := os.ReadFile(filepath.Join(dir, "analytics.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO]: hello file")
}
