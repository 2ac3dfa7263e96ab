package sweep

import (
	"fmt"
	"path/filepath"

	"github.com/sciborgs1155/aion/internal/fsutil"
	"github.com/sciborgs1155/aion/internal/monitoring"
)

// ExportCSV writes outcomes to <dir>/<label>.csv through fsys and returns
// the written path. The label is sanitized into a file name and the result
// must stay inside dir.
func ExportCSV(fsys fsutil.FileSystem, dir, label string, outcomes []Outcome) (string, error) {
	path := filepath.Join(dir, fsutil.SanitizeFilename(label)+".csv")
	if err := fsutil.WithinDir(path, dir); err != nil {
		return "", fmt.Errorf("invalid export path: %w", err)
	}
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	f, err := fsys.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteCSV(f, outcomes); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}

	monitoring.Logf("[sweep] wrote %d rows to %s", len(outcomes), path)
	return path, nil
}
