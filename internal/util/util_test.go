package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdent(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple identifier", input: "id", expected: "`id`"},
		{name: "surrounding spaces", input: "  user_id ", expected: "`user_id`"},
		{name: "empty string", input: "", expected: ""},
		{name: "star", input: "*", expected: "*"},
		{name: "already quoted", input: "`nid`", expected: "`nid`"},
		{name: "embedded backtick", input: "a`b", expected: "`a``b`"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Ident(tt.input))
		})
	}
}

func TestIdentAll(t *testing.T) {
	assert.Equal(t, []string{"`id`", "`name`"}, IdentAll([]string{"id", "name"}))
	assert.Empty(t, IdentAll(nil))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"id", "ins_ts", "user_id"}, SplitList(" id, ins_ts,,user_id ,"))
	assert.Nil(t, SplitList(""))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", FormatNumber(0))
	assert.Equal(t, "999", FormatNumber(999))
	assert.Equal(t, "1,000", FormatNumber(1000))
	assert.Equal(t, "12,345,678", FormatNumber(12345678))
}

func TestRate(t *testing.T) {
	assert.InDelta(t, 50.0, Rate(100, 2*time.Second), 0.0001)
	assert.InDelta(t, 100000.0, Rate(100, 0), 0.0001)
}

func TestSafeRemoveDir(t *testing.T) {
	t.Run("removes directory tree", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "export")
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "a.csv.gz"), []byte("x"), 0o644))

		require.NoError(t, SafeRemoveDir(dir))

		_, err := os.Stat(dir)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("refuses root", func(t *testing.T) {
		assert.Error(t, SafeRemoveDir("/"))
	})

	t.Run("refuses working directory", func(t *testing.T) {
		assert.Error(t, SafeRemoveDir("."))
	})

	t.Run("refuses regular file", func(t *testing.T) {
		f := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(f, nil, 0o644))
		assert.Error(t, SafeRemoveDir(f))
	})

	t.Run("missing directory", func(t *testing.T) {
		assert.Error(t, SafeRemoveDir(filepath.Join(t.TempDir(), "missing")))
	})
}
