package apps

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPathNotFound           = errors.New("path not found")
	ErrExecutableNameNotFound = errors.New("executable name not found")
	ErrDownloadDisabled       = errors.New("download disabled")
	ErrDownloadURLNotFound    = errors.New("download url not found")
	ErrDownloadFailed         = errors.New("download failed")
	ErrAppNotFound            = errors.New("app not found")
	ErrAppLaunch              = errors.New("app launch error")
	ErrAppWait                = errors.New("app wait error")

	errNoFetcher = errors.New("no fetcher configured")
)

// LaunchError reports that the OS refused to start an executable that was
// present on disk. It matches ErrAppLaunch under errors.Is.
type LaunchError struct {
	App    string
	Detail string
	Err    error
}

func (e *LaunchError) Error() string {
	detail := strings.TrimSpace(e.Detail)
	if detail == "" && e.Err != nil {
		detail = e.Err.Error()
	}
	if e.App == "" {
		return fmt.Sprintf("%s: %s", ErrAppLaunch, detail)
	}
	return fmt.Sprintf("%s: %s: %s", ErrAppLaunch, e.App, detail)
}

func (e *LaunchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrAppLaunch}
	}
	return []error{ErrAppLaunch, e.Err}
}

// wrap tags err with marker while keeping the underlying cause reachable.
func wrap(marker error, name, operation string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s: %s", marker, name, operation)
	}
	return fmt.Errorf("%w: %s: %s: %w", marker, name, operation, err)
}
