package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSave(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	path, err := store.Save("timetable-20260105.csv", []byte("Period,Monday\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "timetable-20260105.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Period,Monday\n", string(data))
}

func TestLocalStorageSaveNestedPath(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	path, err := store.Save(filepath.Join("2026", "timetable.pdf"), []byte("%PDF"))
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestNewLocalStorageCreatesBaseDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	_, err := NewLocalStorage(dir)
	require.NoError(t, err)
	assert.DirExists(t, dir)
}
