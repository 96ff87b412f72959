//go:build !windows

package displaypath

import "path/filepath"

// resolve follows symlinks the way realpath(3) does. Paths that cannot
// be resolved (typically because they do not exist yet) fall back to
// their absolute form.
func resolve(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if target, err := filepath.EvalSymlinks(abs); err == nil {
		return target
	}
	return abs
}
