// Package browser opens gallery items in the system browser.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// Opener launches the platform's URL handler.
type Opener struct {
	goos  string
	start func(*exec.Cmd) error
}

// New creates an Opener for the running platform.
func New() *Opener {
	return &Opener{
		goos:  runtime.GOOS,
		start: func(cmd *exec.Cmd) error { return cmd.Start() },
	}
}

// Open opens rawURL in the default browser. Only absolute http(s) URLs
// are passed to the system, so item links such as "#" are rejected.
func (o *Opener) Open(rawURL string) error {
	cmd, err := command(o.goos, rawURL)
	if err != nil {
		return err
	}
	return o.start(cmd)
}

// command validates rawURL and builds the launcher for goos.
func command(goos, rawURL string) (*exec.Cmd, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme: %q (only http and https allowed)", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("invalid URL: missing host")
	}

	switch goos {
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", rawURL), nil // #nosec G204 -- URL validated above
	case "darwin":
		return exec.Command("open", rawURL), nil // #nosec G204 -- URL validated above
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL), nil // #nosec G204 -- URL validated above
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}
