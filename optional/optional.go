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

import (
	"context"
	"fmt"
)

// Optional holds either a present value or nothing. The zero value is the
// empty Optional; no constructor ever produces a present nil.
//
// IsPresent only checks for nil, while every accessor that consumes the value
// (Get, OrElse*, Map, FlatMap, Filter) uses Truthy, so a wrapped 0, "" or
// false behaves like an empty Optional for those accessors.
type Optional[T any] struct {
	value   T
	present bool
}

// Empty returns the empty Optional for T.
func Empty[T any]() Optional[T] {
	return Optional[T]{}
}

// Of wraps a non-nil value. It returns ErrIllegalArgument for nil.
func Of[T any](value T) (Optional[T], error) {
	if isNil(value) {
		return Empty[T](), ErrIllegalArgument
	}
	return Optional[T]{value: value, present: true}, nil
}

// MustOf is like Of but panics on nil.
func MustOf[T any](value T) Optional[T] {
	o, err := Of(value)
	if err != nil {
		panic(err)
	}
	return o
}

// OfNullable wraps value, or returns Empty when value is nil.
func OfNullable[T any](value T) Optional[T] {
	if isNil(value) {
		return Empty[T]()
	}
	return Optional[T]{value: value, present: true}
}

// IsPresent reports whether a non-nil value is held.
func (o Optional[T]) IsPresent() bool {
	return o.present
}

// IsEmpty is the negation of IsPresent.
func (o Optional[T]) IsEmpty() bool {
	return !o.IsPresent()
}

func (o Optional[T]) usable() bool {
	return o.present && Truthy(o.value)
}

// Get returns the held value, or ErrNoSuchElement when it is falsy.
func (o Optional[T]) Get() (T, error) {
	if !o.usable() {
		var zero T
		return zero, ErrNoSuchElement
	}
	return o.value, nil
}

// OrElse returns the held value, or other when it is falsy.
func (o Optional[T]) OrElse(other T) T {
	if o.usable() {
		return o.value
	}
	return other
}

// OrElseGet returns the held value, or the result of supplier when it is falsy.
func (o Optional[T]) OrElseGet(supplier func() T) T {
	if o.usable() {
		return o.value
	}
	return supplier()
}

// OrElseAsync returns the held value, or awaits other when it is falsy.
func (o Optional[T]) OrElseAsync(ctx context.Context, other Future[T]) (T, error) {
	if o.usable() {
		return o.value, nil
	}
	return await(ctx, other)
}

// OrElseGetAsync returns the held value, or runs supplier and awaits its
// result when the held value is falsy.
func (o Optional[T]) OrElseGetAsync(ctx context.Context, supplier Supplier[T]) (T, error) {
	if o.usable() {
		return o.value, nil
	}
	if supplier == nil {
		var zero T
		return zero, ErrIllegalArgument
	}
	return await(ctx, Go(ctx, supplier))
}

// OrElseThrow returns the held value, or err when it is falsy.
func (o Optional[T]) OrElseThrow(err error) (T, error) {
	if o.usable() {
		return o.value, nil
	}
	var zero T
	return zero, err
}

// OrElseThrowFunc returns the held value, or the error built by supplier when
// it is falsy.
func (o Optional[T]) OrElseThrowFunc(supplier func() error) (T, error) {
	if o.usable() {
		return o.value, nil
	}
	var zero T
	return zero, supplier()
}

// OrZero returns the held value, or the zero value of T when it is falsy.
func (o Optional[T]) OrZero() T {
	var zero T
	return o.OrElse(zero)
}

// Filter returns o when its value is truthy and satisfies predicate, and
// Empty otherwise.
func (o Optional[T]) Filter(predicate func(T) bool) Optional[T] {
	if !o.usable() || !predicate(o.value) {
		return Empty[T]()
	}
	return o
}

func (o Optional[T]) String() string {
	if !o.present {
		return "Optional.empty"
	}
	return fmt.Sprintf("Optional[%v]", o.value)
}

// Map applies fn to a truthy value and wraps the result with OfNullable.
func Map[T, M any](o Optional[T], fn func(T) M) Optional[M] {
	if !o.usable() {
		return Empty[M]()
	}
	return OfNullable(fn(o.value))
}

// FlatMap applies fn to a truthy value and returns its Optional as is.
func FlatMap[T, M any](o Optional[T], fn func(T) Optional[M]) Optional[M] {
	if !o.usable() {
		return Empty[M]()
	}
	return fn(o.value)
}
