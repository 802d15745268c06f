package license

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

func ReadFile(path string) (Credential, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	cred := Credential(strings.TrimSpace(string(b)))
	if cred == "" {
		return "", fmt.Errorf("%w: %s is empty", ErrInvalidCredential, path)
	}
	return cred, nil
}

func WriteFile(path string, cred Credential) error {
	return os.WriteFile(path, []byte(string(cred)+"\n"), 0o600)
}

// WatchFile calls fn with the credential in path each time the file is
// written, until ctx is done. Bursts of writes are debounced.
func WatchFile(ctx context.Context, path string, fn func(Credential, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("license watcher: %w", err)
	}
	defer watcher.Close()

	path = filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("license watcher: watch %s: %w", filepath.Dir(path), err)
	}

	const debounce = 50 * time.Millisecond
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			timer.Reset(debounce)

		case <-timer.C:
			fn(ReadFile(path))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fn("", fmt.Errorf("license watcher: %w", err))
		}
	}
}
