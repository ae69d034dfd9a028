package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbsDir(t *testing.T) {
	t.Parallel()

	t.Run("absolute stays absolute", func(t *testing.T) {
		t.Parallel()
		got, err := AbsDir("/tmp/a/../b/")
		require.NoError(t, err)
		assert.Equal(t, "/tmp/b", got)
	})

	t.Run("relative resolves against cwd", func(t *testing.T) {
		t.Parallel()
		cwd, err := os.Getwd()
		require.NoError(t, err)
		got, err := AbsDir("sub")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(cwd, "sub"), got)
	})

	t.Run("empty is invalid", func(t *testing.T) {
		t.Parallel()
		_, err := AbsDir("")
		assert.ErrorIs(t, err, ErrInvalidPath)
	})
}

func TestSplitEntry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantDir  string
		wantName string
		wantErr  bool
	}{
		{"file", "/data/photos/a.jpg", "/data/photos", "a.jpg", false},
		{"trailing_slash", "/data/photos/", "/data", "photos", false},
		{"dotdot_cleaned", "/data/photos/../x", "/data", "x", false},
		{"top_level", "/etc", "/", "etc", false},
		{"root", "/", "", "", true},
		{"empty", "", "", "", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir, name, err := SplitEntry(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPath)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDir, dir)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestSplitAndJoinRoundtrip(t *testing.T) {
	t.Parallel()

	for _, p := range []string{"/a/b/c", "/a", "/x/y.json"} {
		dir, name, err := SplitEntry(p)
		require.NoError(t, err)
		assert.Equal(t, p, JoinEntry(dir, name))
	}
}

func TestValidateKey(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateKey("color"))
	assert.NoError(t, ValidateKey("with.dots and spaces"))
	assert.ErrorIs(t, ValidateKey(""), ErrInvalidKey)
	assert.ErrorIs(t, ValidateKey("a\x00b"), ErrInvalidKey)
	assert.ErrorIs(t, ValidateKey("\xff"), ErrInvalidKey)
}

func TestValidateValue(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateValue(""))
	assert.NoError(t, ValidateValue("plain"))
	assert.NoError(t, ValidateValue("\u00e9t\u00e9 \U0001F600"))
	assert.ErrorIs(t, ValidateValue("\xff\xfe"), ErrInvalidValue)
	assert.ErrorIs(t, ValidateValue("trunc\xc3"), ErrInvalidValue)
}
