package device

import "golang.org/x/sys/unix"

const realtimeNice = -11

// RaisePriority raises the nice value of the calling OS thread. Callers
// lock the goroutine to its thread first. Unprivileged processes get EACCES.
func RaisePriority() error {
	return unix.Setpriority(unix.PRIO_PROCESS, unix.Gettid(), realtimeNice)
}
