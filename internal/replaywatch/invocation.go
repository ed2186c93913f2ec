package replaywatch

import "path/filepath"

// Invocation is one renderer command built from a replay. The output name
// is the replay's file name.
type Invocation struct {
	Executable string
	OutputName string
	Settings   string
	ReplayPath string
}

// NewInvocation builds the command for replayPath.
func NewInvocation(executable, settings, replayPath string) Invocation {
	return Invocation{
		Executable: executable,
		OutputName: filepath.Base(replayPath),
		Settings:   settings,
		ReplayPath: replayPath,
	}
}

// Args returns the renderer arguments. --quickstart makes danser render
// and exit without showing its UI.
func (i Invocation) Args() []string {
	return []string{
		"--out=" + i.OutputName,
		"--settings=" + i.Settings,
		"--replay=" + i.ReplayPath,
		"--quickstart",
	}
}
