package async

import "context"

// Await blocks until a value arrives or ctx is done.
func Await[R any](ctx context.Context, a <-chan R) (R, error) {
	select {
	case r := <-a:
		return r, nil
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// AwaitResult unwraps a Result promise.
func AwaitResult[T any](ctx context.Context, a <-chan Result[T]) (T, error) {
	r, err := Await(ctx, a)
	if err != nil {
		return r.Value, err
	}
	return r.Value, r.Err
}
