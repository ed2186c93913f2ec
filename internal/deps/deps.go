package deps

import (
	"errors"
	"fmt"

	"launcher/internal/apps"
)

// Status reports what the launcher would do with one application.
type Status struct {
	Name         string
	DisplayName  string
	Enabled      bool
	Installed    bool
	Executable   string
	Available    bool
	Downloadable bool
	Detail       string
}

// CheckApplications evaluates each application's install state. It only
// reads the filesystem.
func CheckApplications(list []apps.Application) []Status {
	results := make([]Status, 0, len(list))
	for _, app := range list {
		status := Status{
			Name:         app.Name(),
			DisplayName:  apps.DisplayName(app.Name()),
			Enabled:      app.Enabled(),
			Installed:    apps.PathExists(app),
			Available:    apps.ExecutableExists(app),
			Downloadable: apps.CanDownload(app),
		}
		exe, err := apps.ExecutablePath(app)
		if err == nil {
			status.Executable = exe
		}

		switch {
		case !status.Enabled:
			status.Detail = "disabled"
		case status.Available:
			status.Detail = "ready"
		case status.Downloadable:
			status.Detail = "will download on next run"
		case errors.Is(err, apps.ErrPathNotFound):
			status.Detail = "install path not configured"
		case errors.Is(err, apps.ErrExecutableNameNotFound):
			status.Detail = "executable name not configured"
		case status.Installed:
			status.Detail = fmt.Sprintf("executable %q not found in install path", app.ExecutableName())
		default:
			status.Detail = "not installed and no download source"
		}
		results = append(results, status)
	}
	return results
}

// Ready counts enabled applications that can be launched now.
func Ready(statuses []Status) int {
	n := 0
	for _, s := range statuses {
		if s.Enabled && s.Available {
			n++
		}
	}
	return n
}
