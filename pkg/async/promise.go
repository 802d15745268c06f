package async

// Result carries a value or the error that prevented it.
type Result[T any] struct {
	Value T
	Err   error
}

// Promise runs f in a new goroutine. The channel is buffered so an
// abandoned promise does not leak its goroutine.
func Promise[R any](f func() R) <-chan R {
	out := make(chan R, 1)
	go func() {
		out <- f()
	}()
	return out
}

// Try is Promise for functions that can fail.
func Try[T any](f func() (T, error)) <-chan Result[T] {
	return Promise(func() Result[T] {
		v, err := f()
		return Result[T]{Value: v, Err: err}
	})
}

// Resolved returns a promise that is already settled.
func Resolved[T any](v T, err error) <-chan Result[T] {
	out := make(chan Result[T], 1)
	out <- Result[T]{Value: v, Err: err}
	return out
}
