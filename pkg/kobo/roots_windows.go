//go:build windows

package kobo

// DefaultRoots returns the drive roots D: through Z:. Each drive is a
// volume, which Locate checks directly.
func DefaultRoots() []string {
	var roots []string
	for c := 'D'; c <= 'Z'; c++ {
		roots = append(roots, string(c)+`:\`)
	}
	return roots
}
