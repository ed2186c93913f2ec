package apps_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"launcher/internal/apps"
	"launcher/internal/config"
	"launcher/internal/testsupport"
)

type spyFetcher struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *spyFetcher) Fetch(_ context.Context, url, dest string) error {
	f.mu.Lock()
	f.calls = append(f.calls, url+" -> "+dest)
	f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, []byte("zip"), 0o644)
}

func (f *spyFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestCanDownloadTruthTable(t *testing.T) {
	installed := t.TempDir()
	absent := filepath.Join(t.TempDir(), "missing")

	cases := []struct {
		name    string
		enabled bool
		url     string
		path    string
		want    bool
	}{
		{"all conditions hold", true, "https://example.com/a.zip", absent, true},
		{"disabled", false, "https://example.com/a.zip", absent, false},
		{"no source", true, "", absent, false},
		{"whitespace source", true, "   ", absent, false},
		{"already installed", true, "https://example.com/a.zip", installed, false},
		{"path unset", true, "https://example.com/a.zip", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tool := apps.NewTool("tool", config.App{Enabled: tc.enabled, DownloadURL: tc.url, Path: tc.path})
			if got := apps.CanDownload(tool); got != tc.want {
				t.Fatalf("CanDownload = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDownloadDisabledPerformsNoIO(t *testing.T) {
	dir := t.TempDir()
	installed := filepath.Join(dir, "installed")
	if err := os.MkdirAll(installed, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	for _, tool := range []*apps.Tool{
		apps.NewTool("disabled", config.App{Enabled: false, DownloadURL: "https://example.com/a.zip", Path: filepath.Join(dir, "disabled")}),
		apps.NewTool("nosource", config.App{Enabled: true, Path: filepath.Join(dir, "nosource")}),
		apps.NewTool("installed", config.App{Enabled: true, DownloadURL: "https://example.com/a.zip", Path: installed}),
	} {
		fetcher := &spyFetcher{}
		archive, err := apps.Download(context.Background(), tool, fetcher)
		if !errors.Is(err, apps.ErrDownloadDisabled) {
			t.Fatalf("%s: expected ErrDownloadDisabled, got %v", tool.Name(), err)
		}
		if archive != "" {
			t.Fatalf("%s: expected no archive path, got %q", tool.Name(), archive)
		}
		if fetcher.count() != 0 {
			t.Fatalf("%s: expected no fetch, got %d", tool.Name(), fetcher.count())
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "installed" {
		t.Fatalf("expected no files created, found %v", entries)
	}
	if inner, _ := os.ReadDir(installed); len(inner) != 0 {
		t.Fatalf("expected existing install untouched, found %v", inner)
	}
}

func TestDownloadPathUnset(t *testing.T) {
	tool := apps.NewTool("nopath", config.App{Enabled: true, DownloadURL: "https://example.com/a.zip"})
	fetcher := &spyFetcher{}
	if _, err := apps.Download(context.Background(), tool, fetcher); !errors.Is(err, apps.ErrPathNotFound) {
		t.Fatalf("expected ErrPathNotFound, got %v", err)
	}
	if fetcher.count() != 0 {
		t.Fatal("expected no fetch without a path")
	}
}

func TestDownloadWritesUniqueArchiveInsidePath(t *testing.T) {
	installRoot := filepath.Join(t.TempDir(), "rewind")
	tool := apps.NewTool("rewind", config.App{Enabled: true, DownloadURL: "https://example.com/rewind.zip", Path: installRoot})

	fetcher := &spyFetcher{}
	archive, err := apps.Download(context.Background(), tool, fetcher)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if filepath.Dir(archive) != installRoot {
		t.Fatalf("expected archive inside %s, got %s", installRoot, archive)
	}
	if !strings.HasSuffix(archive, ".zip") || len(filepath.Base(archive)) != len("00000000-0000-0000-0000-000000000000.zip") {
		t.Fatalf("expected <uuid>.zip name, got %s", filepath.Base(archive))
	}
	if _, err := os.Stat(archive); err != nil {
		t.Fatalf("expected archive on disk: %v", err)
	}
	if fetcher.count() != 1 {
		t.Fatalf("expected one fetch, got %d", fetcher.count())
	}
	if apps.CanDownload(tool) {
		t.Fatal("expected CanDownload false once the install path exists")
	}
}

func TestDownloadFailureCollapsesToDownloadFailed(t *testing.T) {
	cause := errors.New("connection refused")
	tool := apps.NewTool("otd", config.App{Enabled: true, DownloadURL: "https://example.com/otd.zip", Path: filepath.Join(t.TempDir(), "otd")})
	fetcher := &spyFetcher{err: cause}

	_, err := apps.Download(context.Background(), tool, fetcher)
	if !errors.Is(err, apps.ErrDownloadFailed) {
		t.Fatalf("expected ErrDownloadFailed, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause preserved, got %v", err)
	}
	if fetcher.count() != 1 {
		t.Fatalf("expected exactly one attempt, got %d", fetcher.count())
	}
}

func TestExecutablePath(t *testing.T) {
	if _, err := apps.ExecutablePath(apps.NewTool("a", config.App{ExecutableName: "a.exe"})); !errors.Is(err, apps.ErrPathNotFound) {
		t.Fatalf("expected ErrPathNotFound, got %v", err)
	}
	if _, err := apps.ExecutablePath(apps.NewTool("a", config.App{Path: "/opt/a"})); !errors.Is(err, apps.ErrExecutableNameNotFound) {
		t.Fatalf("expected ErrExecutableNameNotFound, got %v", err)
	}
	got, err := apps.ExecutablePath(apps.NewTool("a", config.App{Path: "/opt/a", ExecutableName: "tool/app.exe"}))
	if err != nil {
		t.Fatalf("ExecutablePath: %v", err)
	}
	if got != filepath.Join("/opt/a", "tool", "app.exe") {
		t.Fatalf("unexpected path %q", got)
	}
}

func TestExecutableExists(t *testing.T) {
	dir := t.TempDir()
	tool := apps.NewTool("a", config.App{Path: dir, ExecutableName: "bin/a.exe"})
	if apps.ExecutableExists(tool) {
		t.Fatal("expected missing executable")
	}
	testsupport.WriteExecutable(t, filepath.Join(dir, "bin", "a.exe"), "exit 0")
	if !apps.ExecutableExists(tool) {
		t.Fatal("expected executable to exist")
	}
	if apps.ExecutableExists(apps.NewTool("a", config.App{Path: dir, ExecutableName: "bin"})) {
		t.Fatal("a directory is not an executable")
	}
}

func TestSpawnDisabledNeverStarts(t *testing.T) {
	testsupport.SkipWithoutShell(t)
	dir := t.TempDir()
	marker := filepath.Join(dir, "ran")
	testsupport.WriteExecutable(t, filepath.Join(dir, "app.sh"), "touch "+marker)

	tool := apps.NewTool("disabled", config.App{Enabled: false, Path: dir, ExecutableName: "app.sh"})
	proc, err := apps.Spawn(tool)
	if !errors.Is(err, apps.ErrAppNotFound) {
		t.Fatalf("expected ErrAppNotFound, got %v", err)
	}
	if proc != nil {
		t.Fatal("expected no process handle")
	}
	if _, err := os.Stat(marker); !os.IsNotExist(err) {
		t.Fatal("disabled app must not run")
	}
}

func TestSpawnMissingExecutable(t *testing.T) {
	tool := apps.NewTool("missing", config.App{Enabled: true, Path: t.TempDir(), ExecutableName: "nope.exe"})
	if _, err := apps.Spawn(tool); !errors.Is(err, apps.ErrAppNotFound) {
		t.Fatalf("expected ErrAppNotFound, got %v", err)
	}
}

func TestSpawnAndWaitReportsExitCode(t *testing.T) {
	testsupport.SkipWithoutShell(t)
	dir := t.TempDir()
	testsupport.WriteExecutable(t, filepath.Join(dir, "app.sh"), "pwd > cwd.txt\nexit 3")

	tool := apps.NewTool("stub", config.App{Enabled: true, Path: dir, ExecutableName: "app.sh"})
	proc, err := apps.Spawn(tool)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if proc.PID() <= 0 {
		t.Fatalf("expected pid, got %d", proc.PID())
	}
	code, err := proc.Wait()
	if err != nil {
		t.Fatalf("non-zero exit must not be an error: %v", err)
	}
	if code != 3 {
		t.Fatalf("expected exit code 3, got %d", code)
	}
	cwd, err := os.ReadFile(filepath.Join(dir, "cwd.txt"))
	if err != nil {
		t.Fatalf("expected process to run in its install dir: %v", err)
	}
	if resolved, _ := filepath.EvalSymlinks(dir); strings.TrimSpace(string(cwd)) != resolved && strings.TrimSpace(string(cwd)) != dir {
		t.Fatalf("unexpected working dir %q", cwd)
	}
}

func TestSpawnLaunchError(t *testing.T) {
	testsupport.SkipWithoutShell(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "app.bin"), []byte("not executable"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tool := apps.NewTool("broken", config.App{Enabled: true, Path: dir, ExecutableName: "app.bin"})
	_, err := apps.Spawn(tool)
	if !errors.Is(err, apps.ErrAppLaunch) {
		t.Fatalf("expected ErrAppLaunch, got %v", err)
	}
	var launchErr *apps.LaunchError
	if !errors.As(err, &launchErr) || launchErr.Detail == "" {
		t.Fatalf("expected LaunchError with detail, got %#v", err)
	}
}

type dirCreatingFailFetcher struct{}

func (dirCreatingFailFetcher) Fetch(_ context.Context, _ string, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return errors.New("reset by peer")
}

func TestFailedDownloadStaysRetryable(t *testing.T) {
	tool := apps.NewTool("danser", config.App{Enabled: true, DownloadURL: "https://example.com/d.zip", Path: filepath.Join(t.TempDir(), "danser")})
	if _, err := apps.Download(context.Background(), tool, dirCreatingFailFetcher{}); !errors.Is(err, apps.ErrDownloadFailed) {
		t.Fatalf("expected ErrDownloadFailed, got %v", err)
	}
	if apps.PathExists(tool) {
		t.Fatal("expected empty install dir removed after failed download")
	}
	if !apps.CanDownload(tool) {
		t.Fatal("expected the next run to retry the download")
	}
}
