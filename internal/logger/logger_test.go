package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log, closer, err := New(Config{Level: "info", Out: &buf})
	require.NoError(t, err)
	defer closer.Close()

	log.Info().Str("trader_id", "t1").Msg("memory received")
	log.Debug().Msg("hidden")

	assert.Contains(t, buf.String(), `"trader_id":"t1"`)
	assert.Contains(t, buf.String(), "memory received")
	assert.NotContains(t, buf.String(), "hidden")
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		name string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"unknown", zerolog.InfoLevel},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseLevel(tc.name))
		})
	}
}

func TestNewLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cortexmem.log")
	log, closer, err := New(Config{Level: "debug", File: path})
	require.NoError(t, err)

	log.Debug().Msg("to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}
