//go:build !windows && !linux

package keystate

// NewSystem reports ErrUnsupported on platforms without a key query.
func NewSystem(string) (Checker, error) {
	return nil, ErrUnsupported
}
