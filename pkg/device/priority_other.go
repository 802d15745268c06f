//go:build !linux

package device

func RaisePriority() error {
	return nil
}
