package async

import (
	"testing"
	"time"
)

func TestJob(t *testing.T) {
	done := Job(func() {
		time.Sleep(100 * time.Millisecond)
	})

	select {
	case <-done:
		// Test passed
	case <-time.After(500 * time.Millisecond):
		t.Fatal("TestJob timed out")
	}
}
