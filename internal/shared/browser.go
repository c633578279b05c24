package shared

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// launchers maps a GOOS value to the command that opens a URL in the default browser.
var launchers = map[string][]string{
	"darwin":  {"open"},
	"linux":   {"xdg-open"},
	"windows": {"cmd", "/c", "start"},
}

// Browser navigates to URLs by launching the system browser.
//
// It satisfies the navigator dependency of the authorization flow.
type Browser struct{}

// Navigate opens url in the default system browser.
func (Browser) Navigate(ctx context.Context, url string) error {
	return OpenBrowser(ctx, url)
}

// OpenBrowser opens the default system browser to the specified URL.
//
// Supports macOS, Linux, and Windows platforms.
func OpenBrowser(ctx context.Context, url string) error {
	rt := getRuntime()
	launcher, ok := launchers[rt]
	if !ok {
		return fmt.Errorf("unsupported platform: %s", rt)
	}

	args := append(append([]string{}, launcher[1:]...), url)
	cmd := exec.CommandContext(ctx, launcher[0], args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}
