/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package optional

import "context"

// Supplier produces a value, possibly blocking on I/O.
type Supplier[T any] func(ctx context.Context) (T, error)

// Result is the outcome delivered by a Future.
type Result[T any] struct {
	Value T
	Err   error
}

// Future is a pending Result. It delivers exactly one Result.
type Future[T any] <-chan Result[T]

// Resolved returns a Future that is already completed with value.
func Resolved[T any](value T) Future[T] {
	ch := make(chan Result[T], 1)
	ch <- Result[T]{Value: value}
	return ch
}

// Go starts supplier on its own goroutine and returns its Future.
func Go[T any](ctx context.Context, supplier Supplier[T]) Future[T] {
	ch := make(chan Result[T], 1)
	go func() {
		value, err := supplier(ctx)
		ch <- Result[T]{Value: value, Err: err}
	}()
	return ch
}

// AsyncOption tunes OfAsync and OfFuture.
type AsyncOption func(*asyncOptions)

type asyncOptions struct {
	emptyOnError bool
}

// EmptyOnError turns a supplier failure into an empty Optional instead of
// returning the error. Context cancellation is still returned.
func EmptyOnError() AsyncOption {
	return func(o *asyncOptions) { o.emptyOnError = true }
}

// OfAsync runs supplier and wraps its result: a falsy result yields Empty,
// anything else a present Optional.
func OfAsync[T any](ctx context.Context, supplier Supplier[T], opts ...AsyncOption) (Optional[T], error) {
	if supplier == nil {
		return Empty[T](), ErrIllegalArgument
	}
	return OfFuture(ctx, Go(ctx, supplier), opts...)
}

// OfFuture awaits future and wraps its result like OfAsync.
func OfFuture[T any](ctx context.Context, future Future[T], opts ...AsyncOption) (Optional[T], error) {
	if future == nil {
		return Empty[T](), ErrIllegalArgument
	}
	var o asyncOptions
	for _, opt := range opts {
		opt(&o)
	}

	select {
	case <-ctx.Done():
		return Empty[T](), ctx.Err()
	case res, ok := <-future:
		if !ok {
			return Empty[T](), ErrIllegalArgument
		}
		if res.Err != nil {
			if o.emptyOnError {
				return Empty[T](), nil
			}
			return Empty[T](), res.Err
		}
		if !Truthy(res.Value) {
			return Empty[T](), nil
		}
		return Of(res.Value)
	}
}

func await[T any](ctx context.Context, future Future[T]) (T, error) {
	var zero T
	if future == nil {
		return zero, ErrIllegalArgument
	}
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res, ok := <-future:
		if !ok {
			return zero, ErrIllegalArgument
		}
		return res.Value, res.Err
	}
}
