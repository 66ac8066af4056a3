//go:build !windows

package kobo

import (
	"os"
	"os/user"
	"path/filepath"
)

// DefaultRoots returns the directories under which removable volumes are
// usually mounted on this platform.
func DefaultRoots() []string {
	roots := []string{"/Volumes"}

	name := os.Getenv("USER")
	if u, err := user.Current(); err == nil && u.Username != "" {
		name = u.Username
	}
	if name != "" {
		roots = append(roots,
			filepath.Join("/media", name),
			filepath.Join("/run/media", name),
		)
	}
	return append(roots, "/mnt")
}
