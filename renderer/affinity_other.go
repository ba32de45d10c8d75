//go:build !linux

package renderer

// Worker pinning is only implemented for linux.
func pinThread(cpu int) error {
	return nil
}
