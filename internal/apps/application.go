package apps

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"launcher/internal/fileutil"
)

// Application is the capability set every managed tool supplies. The
// derived operations in this file are built only on these accessors and
// are never reimplemented per tool.
type Application interface {
	Name() string
	Enabled() bool
	// Path is the install directory. Empty means unset.
	Path() string
	// ExecutableName is relative to Path. Empty means unset.
	ExecutableName() string
	// DownloadURL points to a zip archive. Empty means the tool cannot be
	// downloaded.
	DownloadURL() string
}

// Fetcher retrieves url into dest, creating parent directories.
type Fetcher interface {
	Fetch(ctx context.Context, url, dest string) error
}

// PathExists reports whether the install directory is set and present.
func PathExists(app Application) bool {
	return fileutil.PathExists(app.Path())
}

// ExecutablePath joins the install path and executable name without
// checking that the result exists.
func ExecutablePath(app Application) (string, error) {
	path := strings.TrimSpace(app.Path())
	if path == "" {
		return "", wrap(ErrPathNotFound, app.Name(), "resolve executable", nil)
	}
	name := strings.TrimSpace(app.ExecutableName())
	if name == "" {
		return "", wrap(ErrExecutableNameNotFound, app.Name(), "resolve executable", nil)
	}
	return filepath.Join(path, filepath.FromSlash(name)), nil
}

// ExecutableExists reports whether the resolved executable is a file on disk.
func ExecutableExists(app Application) bool {
	exe, err := ExecutablePath(app)
	if err != nil {
		return false
	}
	return fileutil.FileExists(exe)
}

// CanDownload is true only for an enabled tool with a download source that
// is not installed yet, so an existing install is never overwritten.
func CanDownload(app Application) bool {
	return app.Enabled() && strings.TrimSpace(app.DownloadURL()) != "" && !PathExists(app)
}

// Download fetches the tool's archive to a uniquely named zip inside its
// install directory and returns the archive path. It performs no I/O when
// CanDownload is false. Transport failures are not retried.
func Download(ctx context.Context, app Application, fetcher Fetcher) (string, error) {
	if !CanDownload(app) {
		return "", wrap(ErrDownloadDisabled, app.Name(), "download", nil)
	}
	path := strings.TrimSpace(app.Path())
	if path == "" {
		return "", wrap(ErrPathNotFound, app.Name(), "download", nil)
	}
	url := strings.TrimSpace(app.DownloadURL())
	if url == "" {
		return "", wrap(ErrDownloadURLNotFound, app.Name(), "download", nil)
	}
	if fetcher == nil {
		return "", wrap(ErrDownloadFailed, app.Name(), "download", errNoFetcher)
	}

	archive := filepath.Join(path, uuid.NewString()+".zip")
	if err := fetcher.Fetch(ctx, url, archive); err != nil {
		// The install directory did not exist before this call. Dropping it
		// again (only if empty) keeps the next run eligible to download.
		_ = os.Remove(path)
		return "", wrap(ErrDownloadFailed, app.Name(), "fetch "+url, err)
	}
	return archive, nil
}
