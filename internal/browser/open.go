// Package browser hands files and URLs to the desktop's default viewer.
package browser

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Command returns the command that opens target on goos without starting it.
func Command(goos, target string) (*exec.Cmd, error) {
	switch goos {
	case "darwin":
		return exec.Command("open", target), nil
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", target), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", target), nil
	default:
		return nil, fmt.Errorf("unsupported OS: %s", goos)
	}
}

// Open opens target (a URL or file path) with the default viewer.
func Open(target string) error {
	cmd, err := Command(runtime.GOOS, target)
	if err != nil {
		return err
	}
	return cmd.Start()
}

// OpenFile opens a local file such as a downloaded ticket.
func OpenFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("browser.OpenFile: %w", err)
	}
	return Open(abs)
}
