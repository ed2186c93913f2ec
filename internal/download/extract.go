package download

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"launcher/internal/fileutil"
)

// ErrExtract marks archive unpack failures.
var ErrExtract = errors.New("archive extract failed")

// Extract unpacks the zip at archive into the directory containing it and
// then deletes the archive, whether or not unpacking succeeded. It returns
// the number of regular files written. Entries that would land outside the
// destination are rejected.
func Extract(archive string) (written int, err error) {
	dest := filepath.Dir(archive)
	defer func() {
		if removeErr := fileutil.RemoveIfExists(archive); removeErr != nil && err == nil {
			err = fmt.Errorf("%w: remove archive: %w", ErrExtract, removeErr)
		}
	}()

	reader, err := zip.OpenReader(archive)
	if err != nil {
		return 0, fmt.Errorf("%w: open %s: %w", ErrExtract, filepath.Base(archive), err)
	}
	defer reader.Close()

	for _, entry := range reader.File {
		target, err := entryTarget(dest, entry.Name)
		if err != nil {
			return written, err
		}
		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return written, fmt.Errorf("%w: create %s: %w", ErrExtract, entry.Name, err)
			}
			continue
		}
		if err := extractFile(entry, target); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func entryTarget(dest, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || filepath.VolumeName(cleaned) != "" {
		return "", fmt.Errorf("%w: entry %q is absolute", ErrExtract, name)
	}
	target := filepath.Join(dest, cleaned)
	if target != filepath.Clean(dest) && !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: entry %q escapes %s", ErrExtract, name, dest)
	}
	return target, nil
}

func extractFile(entry *zip.File, target string) error {
	rc, err := entry.Open()
	if err != nil {
		return fmt.Errorf("%w: open entry %s: %w", ErrExtract, entry.Name, err)
	}
	defer rc.Close()

	mode := entry.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	if err := fileutil.WriteStream(target, rc, mode); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrExtract, entry.Name, err)
	}
	return nil
}
