package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	t.Setenv("CONCILIA_TEST_DIR", "/tmp/concilia")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "plain path", input: "/var/lib/db.sqlite", want: "/var/lib/db.sqlite"},
		{name: "tilde prefix", input: "~/data/db.sqlite", want: filepath.Join(home, "data/db.sqlite")},
		{name: "bare tilde", input: "~", want: home},
		{name: "env var", input: "$CONCILIA_TEST_DIR/db.sqlite", want: "/tmp/concilia/db.sqlite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.input))
		})
	}
}

func TestDefaultPaths(t *testing.T) {
	assert.NotContains(t, DefaultDatabasePath(), "$HOME")
	assert.NotContains(t, DefaultConfigDir(), "$HOME")
	assert.Contains(t, DefaultDatabasePath(), "concilia")
}
