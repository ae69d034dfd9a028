package sidecar

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xattrsync/internal/common"
	"xattrsync/internal/meta"
)

const testDir = "/photos"

func testStore(t *testing.T) (*Store, billy.Filesystem) {
	t.Helper()
	fs := memfs.New()
	require.NoError(t, fs.MkdirAll(testDir, 0755))
	return NewStore(fs, ""), fs
}

func writeRaw(t *testing.T, fs billy.Filesystem, path, content string) {
	t.Helper()
	f, err := fs.Create(path)
	require.NoError(t, err)
	_, err = f.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func readRaw(t *testing.T, fs billy.Filesystem, path string) []byte {
	t.Helper()
	f, err := fs.Open(path)
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	return data
}

func TestNewStoreDefaults(t *testing.T) {
	t.Parallel()

	s := NewStore(nil, "")
	assert.Equal(t, DefaultName, s.Name())
	assert.Equal(t, "/data/.xattr.json", s.Path("/data"))

	s = NewStore(memfs.New(), ".meta.json")
	assert.Equal(t, "/data/.meta.json", s.Path("/data"))
}

func TestIsSidecarEntry(t *testing.T) {
	t.Parallel()

	s := NewStore(memfs.New(), "")
	tests := []struct {
		entry string
		want  bool
	}{
		{".xattr.json", true},
		{".xattr.json.3f1c.tmp", true},
		{".xattr.json.bak", false},
		{"xattr.json", false},
		{"photo.jpg", false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.entry, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, s.IsSidecarEntry(tt.entry))
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("missing sidecar is empty record", func(t *testing.T) {
		t.Parallel()
		s, _ := testStore(t)
		rec, err := s.Load(testDir)
		require.NoError(t, err)
		assert.NotNil(t, rec)
		assert.Empty(t, rec)
	})

	t.Run("reads stored record", func(t *testing.T) {
		t.Parallel()
		s, fs := testStore(t)
		writeRaw(t, fs, s.Path(testDir), `{"a.jpg": {"rating": "5"}, "b": {"x": "1", "y": "2"}}`)

		rec, err := s.Load(testDir)
		require.NoError(t, err)
		assert.Equal(t, meta.Record{
			"a.jpg": {"rating": "5"},
			"b":     {"x": "1", "y": "2"},
		}, rec)
	})

	t.Run("empty entries are dropped", func(t *testing.T) {
		t.Parallel()
		s, fs := testStore(t)
		writeRaw(t, fs, s.Path(testDir), `{"a": {}, "b": null, "c": {"k": "v"}}`)

		rec, err := s.Load(testDir)
		require.NoError(t, err)
		assert.Equal(t, meta.Record{"c": {"k": "v"}}, rec)
	})

	malformed := map[string]string{
		"truncated":        `{"a": {"k": "v"`,
		"not an object":    `["a"]`,
		"non-string value": `{"a": {"k": 1}}`,
		"nested object":    `{"a": {"k": {"x": "y"}}}`,
	}
	for name, content := range malformed {
		content := content
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			s, fs := testStore(t)
			writeRaw(t, fs, s.Path(testDir), content)

			_, err := s.Load(testDir)
			assert.ErrorIs(t, err, common.ErrMalformedSidecar)
		})
	}
}

func TestSave(t *testing.T) {
	t.Parallel()

	t.Run("writes indented json", func(t *testing.T) {
		t.Parallel()
		s, fs := testStore(t)
		rec := meta.Record{"a": {"k": "v"}}
		require.NoError(t, s.Save(testDir, rec))

		data := readRaw(t, fs, s.Path(testDir))
		assert.Equal(t, "{\n  \"a\": {\n    \"k\": \"v\"\n  }\n}\n", string(data))

		var decoded meta.Record
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, rec, decoded)
	})

	t.Run("overwrites previous content", func(t *testing.T) {
		t.Parallel()
		s, _ := testStore(t)
		require.NoError(t, s.Save(testDir, meta.Record{"a": {"k": "v"}}))
		require.NoError(t, s.Save(testDir, meta.Record{"b": {"k": "w"}}))

		rec, err := s.Load(testDir)
		require.NoError(t, err)
		assert.Equal(t, meta.Record{"b": {"k": "w"}}, rec)
	})

	t.Run("leaves no temporaries behind", func(t *testing.T) {
		t.Parallel()
		s, fs := testStore(t)
		require.NoError(t, s.Save(testDir, meta.Record{"a": {"k": "v"}}))

		entries, err := fs.ReadDir(testDir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, DefaultName, entries[0].Name())
	})

	t.Run("empty record removes sidecar", func(t *testing.T) {
		t.Parallel()
		s, _ := testStore(t)
		require.NoError(t, s.Save(testDir, meta.Record{"a": {"k": "v"}}))
		exists, err := s.Exists(testDir)
		require.NoError(t, err)
		require.True(t, exists)

		require.NoError(t, s.Save(testDir, meta.Record{}))
		exists, err = s.Exists(testDir)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("empty record without sidecar is a no-op", func(t *testing.T) {
		t.Parallel()
		s, _ := testStore(t)
		assert.NoError(t, s.Save(testDir, nil))
	})
}

func TestStoreSaveRefusesLossyContent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rec     meta.Record
		wantErr error
	}{
		{"value", meta.Record{"a": {"sum": "\xff\xfe"}}, common.ErrInvalidValue},
		{"key", meta.Record{"a": {"\xc3": "v"}}, common.ErrInvalidKey},
		{"entry name", meta.Record{"\xff": {"k": "v"}}, common.ErrInvalidPath},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, fs := testStore(t)
			require.NoError(t, s.Save(testDir, meta.Record{"a": {"k": "old"}}))
			before := readRaw(t, fs, s.Path(testDir))

			err := s.Save(testDir, tt.rec)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, readRaw(t, fs, s.Path(testDir)), "existing sidecar must be left untouched")

			entries, err := fs.ReadDir(testDir)
			require.NoError(t, err)
			assert.Len(t, entries, 1)
		})
	}
}

func TestStoreOnHostFilesystem(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := NewStore(nil, "")
	require.NoError(t, s.Save(dir, meta.Record{"f": {"k": "v"}}))
	assert.FileExists(t, filepath.Join(dir, DefaultName))

	rec, err := s.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, meta.Record{"f": {"k": "v"}}, rec)

	require.NoError(t, s.Save(dir, meta.Record{}))
	_, err = os.Stat(filepath.Join(dir, DefaultName))
	assert.True(t, os.IsNotExist(err))
}
