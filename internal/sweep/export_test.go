package sweep

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sciborgs1155/aion/internal/fsutil"
	"github.com/sciborgs1155/aion/internal/testutil"
)

func TestExportCSVMemory(t *testing.T) {
	testutil.QuietLogs(t)
	fsys := fsutil.NewMemoryFileSystem()
	dir := t.TempDir()

	path, err := ExportCSV(fsys, dir, "x 1..3 / y 4", sampleOutcomes())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "x_1..3_y_4.csv"), path)

	data, err := fsys.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 2+len(sampleOutcomes()))
	assert.True(t, strings.HasPrefix(lines[0], "# aion "))
}

func TestExportCSVDisk(t *testing.T) {
	testutil.QuietLogs(t)
	dir := filepath.Join(t.TempDir(), "exports")

	path, err := ExportCSV(fsutil.OSFileSystem{}, dir, "sweep", sampleOutcomes())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "x,y,status")
}

func TestExportCSVStaysInDir(t *testing.T) {
	testutil.QuietLogs(t)
	fsys := fsutil.NewMemoryFileSystem()
	dir := t.TempDir()

	// separators are sanitized away, so traversal labels land inside dir
	path, err := ExportCSV(fsys, dir, "../../etc/passwd", nil)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
}
