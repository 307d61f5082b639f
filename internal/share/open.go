package share

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/Veraticus/the-ledger-must-balance/internal/export"
)

// OpenSharer opens the file with the desktop's default application.
type OpenSharer struct {
	lookPath func(string) (string, error)
	run      func(ctx context.Context, name string, args ...string) error
	getenv   func(string) string
	goos     string
}

var _ export.Sharer = (*OpenSharer)(nil)

// NewOpenSharer returns a sharer for the current platform.
func NewOpenSharer() *OpenSharer {
	return &OpenSharer{
		lookPath: exec.LookPath,
		run: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run() // #nosec G204
		},
		getenv: os.Getenv,
		goos:   runtime.GOOS,
	}
}

// Name implements export.Sharer.
func (o *OpenSharer) Name() string { return "open" }

func (o *OpenSharer) command(path string) (string, []string, bool) {
	switch o.goos {
	case "darwin":
		return "open", []string{path}, true
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}, true
	case "linux", "freebsd", "openbsd", "netbsd":
		if o.getenv("DISPLAY") == "" && o.getenv("WAYLAND_DISPLAY") == "" {
			return "", nil, false
		}
		return "xdg-open", []string{path}, true
	default:
		return "", nil, false
	}
}

// Share implements export.Sharer. Headless sessions and missing openers
// report export.ErrShareUnavailable.
func (o *OpenSharer) Share(ctx context.Context, path string) (string, error) {
	name, args, ok := o.command(path)
	if !ok {
		return "", fmt.Errorf("%w: no desktop session", export.ErrShareUnavailable)
	}
	bin, err := o.lookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s not found", export.ErrShareUnavailable, name)
	}
	if err := o.run(ctx, bin, args...); err != nil {
		return "", fmt.Errorf("%s failed: %w", name, err)
	}
	return "", nil
}
