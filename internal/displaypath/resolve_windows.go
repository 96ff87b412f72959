//go:build windows

package displaypath

import "path/filepath"

// resolve returns the full path, like _fullpath. Links are left alone.
func resolve(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
